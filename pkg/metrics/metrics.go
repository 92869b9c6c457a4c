package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const namespace = "tag_search"

// Metrics records what a search did: requests made against the registry,
// and how many tags and rows passed through the pipeline.
type Metrics struct {
	log      *logrus.Entry
	registry *prometheus.Registry

	tags           prometheus.Gauge
	rows           *prometheus.GaugeVec
	lookupFailures prometheus.Counter

	clientInFlight prometheus.Gauge
	clientRequests *prometheus.CounterVec
	clientDuration *prometheus.HistogramVec
}

// New registers all collectors on reg. A fresh registry is created when reg
// is nil.
func New(log *logrus.Entry, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		log:      log.WithField("module", "metrics"),
		registry: reg,
		tags: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tags",
			Help:      "Number of distinct tag names left after filtering.",
		}),
		rows: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rows",
				Help:      "Number of tag and platform rows at each pipeline stage.",
			},
			[]string{"stage"},
		),
		lookupFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Total number of searches where the image or username could not be found.",
		}),
		clientInFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "http",
			Name:      "client_in_flight_requests",
			Help:      "A gauge of in-flight requests for the wrapped client.",
		}),
		clientRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "http",
				Name:      "client_requests_total",
				Help:      "A counter for requests from the wrapped client.",
			},
			[]string{"code", "method", "domain", "cache"},
		),
		clientDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "http",
				Name:      "client_request_duration_seconds",
				Help:      "A histogram of request durations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "domain"},
		),
	}
}

// ObserveRows records the number of rows after the given pipeline stage.
func (m *Metrics) ObserveRows(stage string, n int) {
	m.rows.WithLabelValues(stage).Set(float64(n))
}

// ObserveTags records the number of distinct tag names in the result.
func (m *Metrics) ObserveTags(n int) {
	m.tags.Set(float64(n))
}

func (m *Metrics) LookupFailed() {
	m.lookupFailures.Inc()
}

// WriteFile writes every collected metric to path in the Prometheus text
// format, suitable for the node exporter textfile collector. An empty path
// is a no-op.
func (m *Metrics) WriteFile(path string) error {
	if len(path) == 0 {
		return nil
	}

	m.log.WithField("path", path).Debug("writing metrics")

	return prometheus.WriteToTextfile(path, m.registry)
}
