package publish

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GaugePublisher exposes readings as metalrates_price{product,leg}. Unknown
// legs have their series removed instead of being set to zero.
type GaugePublisher struct {
	prices *prometheus.GaugeVec
}

// NewGaugePublisher registers the price gauge with reg.
func NewGaugePublisher(reg prometheus.Registerer) *GaugePublisher {
	return &GaugePublisher{
		prices: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "metalrates_price",
				Help: "Latest published price per product and leg, in MYR per gram",
			},
			[]string{"product", "leg"},
		),
	}
}

// Publish implements Publisher.
func (g *GaugePublisher) Publish(readings []Reading) {
	for _, r := range readings {
		labels := prometheus.Labels{"product": string(r.Product), "leg": string(r.Leg)}
		if !r.Known() {
			g.prices.Delete(labels)
			continue
		}
		g.prices.With(labels).Set(r.Value.Decimal.InexactFloat64())
	}
}
