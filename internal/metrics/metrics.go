// Package metrics holds the Prometheus collectors of the screener.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a ticker.
const (
	OutcomeRecord  = "record"
	OutcomeSkipped = "skipped"
)

// Metrics groups the screener collectors on their own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	TickersProcessed *prometheus.CounterVec
	TickersSkipped   *prometheus.CounterVec
	ScanDuration     *prometheus.HistogramVec
	Publishes        *prometheus.CounterVec
	LastRun          prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		TickersProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_tickers_processed_total",
				Help: "Tickers processed by group and outcome",
			},
			[]string{"group", "outcome"},
		),

		TickersSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_tickers_skipped_total",
				Help: "Skipped tickers by reason",
			},
			[]string{"reason"},
		),

		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_group_scan_duration_seconds",
				Help:    "Wall time of one group scan, publish included",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"group"},
		),

		Publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_publishes_total",
				Help: "Publish attempts by sink and result",
			},
			[]string{"sink", "result"},
		),

		LastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "screener_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
		),
	}

	m.Registry.MustRegister(
		m.TickersProcessed,
		m.TickersSkipped,
		m.ScanDuration,
		m.Publishes,
		m.LastRun,
	)
	return m
}

func (m *Metrics) Record(group string) {
	if m == nil {
		return
	}
	m.TickersProcessed.WithLabelValues(group, OutcomeRecord).Inc()
}

func (m *Metrics) Skip(group, reason string) {
	if m == nil {
		return
	}
	m.TickersProcessed.WithLabelValues(group, OutcomeSkipped).Inc()
	m.TickersSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveScan(group string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScanDuration.WithLabelValues(group).Observe(d.Seconds())
}

func (m *Metrics) Publish(sink string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.Publishes.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) RunFinished(at time.Time) {
	if m == nil {
		return
	}
	m.LastRun.Set(float64(at.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
