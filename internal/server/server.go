// Package server exposes health, metrics and the latest run report over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"MarketScreener/internal/metrics"
	"MarketScreener/internal/scanner"
)

// ReportSource supplies the last finished run.
type ReportSource interface {
	LastReport() (scanner.RunReport, bool)
}

type api struct {
	reports ReportSource
}

// NewRouter builds the monitor routes.
func NewRouter(reports ReportSource, m *metrics.Metrics) http.Handler {
	a := &api{reports: reports}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/api/v1/runs/latest", a.handleLatest)
	r.Get("/api/v1/runs/latest/groups/{group}", a.handleLatestGroup)
	return r
}

func (a *api) handleLatest(w http.ResponseWriter, _ *http.Request) {
	report, ok := a.reports.LastReport()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run yet"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *api) handleLatestGroup(w http.ResponseWriter, r *http.Request) {
	report, ok := a.reports.LastReport()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run yet"})
		return
	}
	name := chi.URLParam(r, "group")
	for _, g := range report.Groups {
		if g.Group == name {
			writeJSON(w, http.StatusOK, g)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown group " + name})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("monitor server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
