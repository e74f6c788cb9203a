// Package metrics records run statistics in a private Prometheus registry. The process does not
// serve HTTP, so the registry is written to a node-exporter textfile at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tour_monitor"

type Recorder struct {
	Registry *prometheus.Registry

	routes        *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	foundPrice    *prometheus.GaugeVec
	routeDuration prometheus.Histogram
	lastRun       prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routes_total",
				Help:      "Routes probed, by outcome.",
			},
			[]string{"outcome"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "History comparison results, by decision.",
			},
			[]string{"decision"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notifications attempted, by status.",
			},
			[]string{"status"},
		),
		foundPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "found_price_rub",
				Help:      "Minimum price found in the last run.",
			},
			[]string{"origin", "destination", "nights"},
		),
		routeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "route_duration_seconds",
				Help:      "Time spent probing one route, pacing excluded.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1s to ~2m
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished.",
			},
		),
	}
	r.Registry.MustRegister(r.routes, r.decisions, r.notifications, r.foundPrice, r.routeDuration, r.lastRun)
	return r
}

func (r *Recorder) Route(outcome string, took time.Duration) {
	r.routes.WithLabelValues(outcome).Inc()
	r.routeDuration.Observe(took.Seconds())
}

func (r *Recorder) Decision(decision string) {
	r.decisions.WithLabelValues(decision).Inc()
}

func (r *Recorder) Notification(ok bool) {
	status := "sent"
	if !ok {
		status = "failed"
	}
	r.notifications.WithLabelValues(status).Inc()
}

func (r *Recorder) Price(origin, destination, nights string, price int) {
	r.foundPrice.WithLabelValues(origin, destination, nights).Set(float64(price))
}

func (r *Recorder) Finished(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
