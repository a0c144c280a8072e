// Package metrics exposes Prometheus collectors for backend fetches, live
// image handles and purchases.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/trznica/internal/client"
)

// Metrics holds the frontend collectors and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	purchases     *prometheus.CounterVec
}

// New creates and registers the collectors. liveHandles reports the number
// of image handles not yet revoked.
func New(liveHandles func() int) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trznica",
				Name:      "fetch_total",
				Help:      "Total number of backend requests by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "trznica",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of backend requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"kind"},
		),
		purchases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trznica",
				Name:      "purchases_total",
				Help:      "Total number of purchase attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}

	live := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "trznica",
			Name:      "image_handles_live",
			Help:      "Current number of image handles not yet revoked.",
		},
		func() float64 { return float64(liveHandles()) },
	)

	m.Registry.MustRegister(
		m.fetches,
		m.fetchDuration,
		m.purchases,
		live,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one backend request. It matches the signature of
// client.WithObserver.
func (m *Metrics) ObserveFetch(kind string, err error, elapsed time.Duration) {
	m.fetches.WithLabelValues(kind, outcome(err)).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObservePurchase records one purchase attempt.
func (m *Metrics) ObservePurchase(err error) {
	m.purchases.WithLabelValues(outcome(err)).Inc()
}

// outcome labels an error by the failure class of the fetch boundary.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind.String()
	}
	return "error"
}
