package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called concurrently and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces so that
// components can depend only on the metrics they record.
type MetricsCollector interface {
	CheckerMetrics
	FeedMetrics
}

// CheckerMetrics defines metrics for completeness-checker operations.
type CheckerMetrics interface {
	// RecordRecompute records one lazy aggregate recompute.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	//   - windows: Number of windows in the rebuilt aggregate view
	RecordRecompute(duration float64, windows int)

	// RecordWindowRemoved records the eviction of one window's raw entries.
	RecordWindowRemoved()

	// RecordRawRefresh records a bulk rebuild of the raw completeness layer.
	//
	// Parameters:
	//   - windows: Number of windows replayed
	//   - partitions: Number of partitions replayed per window
	RecordRawRefresh(windows, partitions int)

	// SetTrackedWindows sets the current number of windows present in the
	// raw layer (gauge metric).
	SetTrackedWindows(count int)

	// SetValidWindows sets the number of windows that met the coverage
	// threshold in the most recent NumValidWindows query (gauge metric).
	SetValidWindows(count int)
}

// FeedMetrics defines metrics for the completeness event feed.
type FeedMetrics interface {
	// RecordFeedEvent records one consumed completeness event.
	//
	// Parameters:
	//   - success: true if the event was decoded and applied, false if it
	//     was malformed and dropped
	RecordFeedEvent(success bool)

	// RecordFeedFetchError records a failed pull request against the
	// completeness event stream.
	RecordFeedFetchError()
}
