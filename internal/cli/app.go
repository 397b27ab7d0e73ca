package cli

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"metalrates/internal/api"
	"metalrates/internal/config"
	"metalrates/internal/coordinator"
	"metalrates/internal/fetcher"
	"metalrates/internal/maybank"
	"metalrates/internal/publish"
)

// App is the wired poller: fetcher, coordinator, publishers and HTTP handler.
type App struct {
	Coordinator *coordinator.Coordinator
	Board       *publish.Board
	Gauges      *publish.GaugePublisher
	Handler     http.Handler
}

// Deps are the process-level collaborators; tests swap them out.
type Deps struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Transport  http.RoundTripper
}

// DefaultDeps uses the global Prometheus registry and real transports.
func DefaultDeps() Deps {
	return Deps{
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	}
}

// NewApp wires every component from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger, deps Deps) (*App, error) {
	schedule, err := cfg.Schedule()
	if err != nil {
		return nil, err
	}

	source := fetcher.NewHTTPFetcher(fetcher.Options{
		URL: cfg.SourceURL,
		Guard: fetcher.Guard{
			HostSuffix:   cfg.ExpectedHostSuffix,
			PathFragment: cfg.ExpectedPathFragment,
		},
		Timeout:   cfg.RequestTimeout,
		Headers:   maybank.Headers(cfg.SourceURL),
		Transport: deps.Transport,
		Logger:    logger,
	})

	coord := coordinator.New(coordinator.Options{
		Source:   source,
		Chain:    maybank.Chain(cfg.SearchWindow),
		Schedule: schedule,
		Products: maybank.Products,
		Unit:     maybank.Unit,
		Logger:   logger,
	})

	board := publish.NewBoard()
	return &App{
		Coordinator: coord,
		Board:       board,
		Gauges:      publish.NewGaugePublisher(deps.Registerer),
		Handler:     api.NewMux(coord, board, deps.Gatherer, logger),
	}, nil
}

// NewLogger builds the process logger from the log_level and log_format settings.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
