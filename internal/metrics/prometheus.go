package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/wincov/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Registration is lazy: collectors are created and registered on first use so
// that constructing the collector never fails and unused metric families are
// never exported.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Checker metrics
	recomputeDuration prometheus.Histogram
	recomputeWindows  prometheus.Histogram
	windowsRemoved    prometheus.Counter
	rawRefreshes      prometheus.Counter
	trackedWindows    prometheus.Gauge
	validWindows      prometheus.Gauge

	// Feed metrics
	feedEvents      *prometheus.CounterVec
	feedFetchErrors prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "wincov" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "wincov"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.recomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "checker",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of lazy aggregate completeness recomputes in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		})

		p.recomputeWindows = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "checker",
			Name:      "recompute_windows",
			Help:      "Number of windows in the rebuilt aggregate view per recompute.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		})

		p.windowsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "checker",
			Name:      "windows_removed_total",
			Help:      "Total windows evicted from the raw completeness layer.",
		})

		p.rawRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "checker",
			Name:      "raw_refreshes_total",
			Help:      "Total bulk rebuilds of the raw completeness layer.",
		})

		p.trackedWindows = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "checker",
			Name:      "tracked_windows",
			Help:      "Current number of windows present in the raw completeness layer.",
		})

		p.validWindows = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "checker",
			Name:      "valid_windows",
			Help:      "Windows meeting the coverage threshold in the latest query.",
		})

		p.feedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Total consumed completeness events by result (applied/dropped).",
		}, []string{"result"})

		p.feedFetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "feed",
			Name:      "fetch_errors_total",
			Help:      "Total failed pull requests against the completeness event stream.",
		})

		collectors := []prometheus.Collector{
			p.recomputeDuration,
			p.recomputeWindows,
			p.windowsRemoved,
			p.rawRefreshes,
			p.trackedWindows,
			p.validWindows,
			p.feedEvents,
			p.feedFetchErrors,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so two collectors sharing a
			// registerer and namespace do not panic at registration time.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordRecompute records one lazy aggregate recompute.
func (p *PrometheusCollector) RecordRecompute(duration float64, windows int) {
	p.ensureRegistered()
	p.recomputeDuration.Observe(duration)
	p.recomputeWindows.Observe(float64(windows))
}

// RecordWindowRemoved records the eviction of one window.
func (p *PrometheusCollector) RecordWindowRemoved() {
	p.ensureRegistered()
	p.windowsRemoved.Inc()
}

// RecordRawRefresh records a bulk rebuild of the raw layer.
func (p *PrometheusCollector) RecordRawRefresh(_ /* windows */, _ /* partitions */ int) {
	p.ensureRegistered()
	p.rawRefreshes.Inc()
}

// SetTrackedWindows sets the tracked windows gauge.
func (p *PrometheusCollector) SetTrackedWindows(count int) {
	p.ensureRegistered()
	p.trackedWindows.Set(float64(count))
}

// SetValidWindows sets the valid windows gauge.
func (p *PrometheusCollector) SetValidWindows(count int) {
	p.ensureRegistered()
	p.validWindows.Set(float64(count))
}

// RecordFeedEvent records one consumed completeness event.
func (p *PrometheusCollector) RecordFeedEvent(success bool) {
	p.ensureRegistered()
	result := "applied"
	if !success {
		result = "dropped"
	}
	p.feedEvents.WithLabelValues(result).Inc()
}

// RecordFeedFetchError records a failed pull request.
func (p *PrometheusCollector) RecordFeedFetchError() {
	p.ensureRegistered()
	p.feedFetchErrors.Inc()
}
