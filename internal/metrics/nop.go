// Package metrics provides the library's built-in types.MetricsCollector
// implementations: a no-op collector and a Prometheus-backed collector.
package metrics

import "github.com/arloliu/wincov/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	collector := metrics.NewNop()
//	checker, err := wincov.New(&cfg, agg, wincov.WithMetrics(collector))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// CheckerMetrics implementation

// RecordRecompute discards the recompute metric.
func (n *NopMetrics) RecordRecompute(_ /* duration */ float64, _ /* windows */ int) {
	// No-op
}

// RecordWindowRemoved discards the window eviction metric.
func (n *NopMetrics) RecordWindowRemoved() {
	// No-op
}

// RecordRawRefresh discards the bulk refresh metric.
func (n *NopMetrics) RecordRawRefresh(_ /* windows */, _ /* partitions */ int) {
	// No-op
}

// SetTrackedWindows discards the tracked windows gauge.
func (n *NopMetrics) SetTrackedWindows(_ /* count */ int) {
	// No-op
}

// SetValidWindows discards the valid windows gauge.
func (n *NopMetrics) SetValidWindows(_ /* count */ int) {
	// No-op
}

// FeedMetrics implementation

// RecordFeedEvent discards the feed event metric.
func (n *NopMetrics) RecordFeedEvent(_ /* success */ bool) {
	// No-op
}

// RecordFeedFetchError discards the feed fetch error metric.
func (n *NopMetrics) RecordFeedFetchError() {
	// No-op
}
