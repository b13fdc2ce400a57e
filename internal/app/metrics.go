package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

const metricsNamespace = "quotesync"

// Metrics are the sync loop's Prometheus instruments.
type Metrics struct {
	cycles        *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	conflicts     prometheus.Counter
	fetched       prometheus.Gauge
	pushFailures  prometheus.Counter
	storeSize     prometheus.Gauge
	lastSucceeded *prometheus.GaugeVec
}

// NewMetrics registers the instruments with reg. A nil reg creates an
// unregistered set, which tests use to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Completed sync cycles by kind and result.",
		}, []string{"kind", "result"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "cycles_skipped_total",
			Help:      "Cycles skipped because one of the same kind was in flight.",
		}, []string{"kind"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Sync cycle duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "conflicts_total",
			Help:      "Conflicts resolved server-wins.",
		}),
		fetched: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "remote_quotes",
			Help:      "Quotes returned by the last successful fetch.",
		}),
		pushFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "push_failures_total",
			Help:      "Quotes that could not be pushed upstream.",
		}),
		storeSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "store_quotes",
			Help:      "Quotes in the local store.",
		}),
		lastSucceeded: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle by kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) cycleSkipped(kind domain.CycleKind) {
	m.skipped.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) cycleDone(kind domain.CycleKind, status domain.SyncStatus, took time.Duration, storeSize int) {
	m.cycles.WithLabelValues(string(kind), string(status.State)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(took.Seconds())
	m.storeSize.Set(float64(storeSize))

	if status.State != domain.SyncSucceeded {
		return
	}

	m.fetched.Set(float64(status.Fetched))
	m.conflicts.Add(float64(status.Conflicts))
	m.lastSucceeded.WithLabelValues(string(kind)).Set(float64(status.At.Unix()))
}

func (m *Metrics) pushFailed(n int) {
	m.pushFailures.Add(float64(n))
}
