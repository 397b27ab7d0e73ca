package extract

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ProductKey identifies a tracked commodity tier.
type ProductKey string

// Leg is one side of a quote.
type Leg string

const (
	// LegBuy is the price at which the customer acquires the metal.
	LegBuy Leg = "buy"
	// LegSell is the price at which the customer disposes of it back to the bank.
	LegSell Leg = "sell"
)

// Legs lists both legs in publishing order.
var Legs = []Leg{LegBuy, LegSell}

// Quote holds the two legs for one product. Either leg may be missing.
type Quote struct {
	Buy  decimal.NullDecimal `json:"buy"`
	Sell decimal.NullDecimal `json:"sell"`
}

// NewQuote returns a complete quote.
func NewQuote(buy, sell decimal.Decimal) Quote {
	return Quote{Buy: decimal.NewNullDecimal(buy), Sell: decimal.NewNullDecimal(sell)}
}

// Complete reports whether both legs are present.
func (q Quote) Complete() bool {
	return q.Buy.Valid && q.Sell.Valid
}

// Empty reports whether neither leg is present.
func (q Quote) Empty() bool {
	return !q.Buy.Valid && !q.Sell.Valid
}

// Get returns the value of leg l.
func (q Quote) Get(l Leg) decimal.NullDecimal {
	if l == LegSell {
		return q.Sell
	}
	return q.Buy
}

// Set stores v in leg l.
func (q *Quote) Set(l Leg, v decimal.Decimal) {
	if l == LegSell {
		q.Sell = decimal.NewNullDecimal(v)
		return
	}
	q.Buy = decimal.NewNullDecimal(v)
}

// fill copies legs from other that q does not have yet.
// It reports whether any leg was taken.
func (q *Quote) fill(other Quote) bool {
	took := false
	if !q.Buy.Valid && other.Buy.Valid {
		q.Buy = other.Buy
		took = true
	}
	if !q.Sell.Valid && other.Sell.Valid {
		q.Sell = other.Sell
		took = true
	}
	return took
}

// Table maps products to their quotes for a single extraction.
type Table map[ProductKey]Quote

// Add merges q into the entry for key without replacing legs already present.
// It reports whether the table changed.
func (t Table) Add(key ProductKey, q Quote) bool {
	cur := t[key]
	if !cur.fill(q) {
		return false
	}
	t[key] = cur
	return true
}

// Merge adds every entry of other. Legs already in t win.
func (t Table) Merge(other Table) bool {
	changed := false
	for key, q := range other {
		if t.Add(key, q) {
			changed = true
		}
	}
	return changed
}

// Prune drops entries with neither leg. Entries with a single leg are kept.
func (t Table) Prune() {
	for key, q := range t {
		if q.Empty() {
			delete(t, key)
		}
	}
}

// Clone returns a copy that shares no map with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Keys returns the products present in t, sorted.
func (t Table) Keys() []ProductKey {
	keys := make([]ProductKey, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
