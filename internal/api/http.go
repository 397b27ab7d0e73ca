package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"metalrates/internal/coordinator"
	"metalrates/internal/extract"
	"metalrates/internal/fetcher"
	"metalrates/internal/publish"
)

// Refresher is the part of the coordinator the HTTP surface needs.
type Refresher interface {
	Refresh(ctx context.Context) (coordinator.Snapshot, error)
	Snapshot() coordinator.Snapshot
}

// ReadingsResponse is the body of GET /readings.
type ReadingsResponse struct {
	Source      string            `json:"source"`
	OK          bool              `json:"ok"`
	Diagnostic  string            `json:"diagnostic,omitempty"`
	Strategies  []string          `json:"strategies,omitempty"`
	LastSuccess time.Time         `json:"last_success,omitzero"`
	Readings    []publish.Reading `json:"readings"`
}

// RefreshResponse is the body of POST /refresh.
type RefreshResponse struct {
	Status   string               `json:"status"`
	Error    string               `json:"error,omitempty"`
	Type     fetcher.ErrorType    `json:"type,omitempty"`
	Snapshot coordinator.Snapshot `json:"snapshot"`
}

// NewMux constructs the HTTP mux, wiring readings, refresh, metrics and health endpoints.
func NewMux(coord Refresher, board *publish.Board, gatherer prometheus.Gatherer, logger *slog.Logger) *http.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	mux := http.NewServeMux()

	// Metrics endpoint.
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Health / readiness / liveness.
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !coord.Snapshot().HasData() {
			http.Error(w, "no successful refresh yet", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})

	mux.HandleFunc("GET /readings", handleReadings(coord, board, logger))
	mux.HandleFunc("GET /readings/{product}/{leg}", handleReading(board, logger))
	mux.HandleFunc("POST /refresh", handleRefresh(coord, logger))

	return mux
}

func handleReadings(coord Refresher, board *publish.Board, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := coord.Snapshot()
		readings := board.Readings()
		if readings == nil {
			readings = []publish.Reading{}
		}
		writeJSON(w, http.StatusOK, ReadingsResponse{
			Source:      snap.Source,
			OK:          snap.OK,
			Diagnostic:  snap.Diagnostic,
			Strategies:  snap.Strategies,
			LastSuccess: snap.LastSuccess,
			Readings:    readings,
		}, logger)
	}
}

// handleReading serves a single product leg, for consumers that track one price.
func handleReading(board *publish.Board, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product := extract.ProductKey(r.PathValue("product"))
		leg := extract.Leg(r.PathValue("leg"))
		reading, ok := board.Get(product, leg)
		if !ok {
			http.Error(w, "no such reading", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, reading, logger)
	}
}

func handleRefresh(coord Refresher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The cycle is shared with other callers; one client going away must not cancel it.
		snap, err := coord.Refresh(context.WithoutCancel(r.Context()))
		if err != nil {
			logger.Warn("manual refresh failed", "error", err)
			writeJSON(w, http.StatusBadGateway, RefreshResponse{
				Status:   "failed",
				Error:    err.Error(),
				Type:     fetcher.TypeOf(err),
				Snapshot: snap,
			}, logger)
			return
		}
		writeJSON(w, http.StatusOK, RefreshResponse{Status: "refreshed", Snapshot: snap}, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response failed", "error", err)
	}
}
