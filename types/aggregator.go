package types

// SampleAggregator is the metric-sample store the checker consults on the
// write path. It owns the samples and decides per-partition validity; the
// checker only aggregates the booleans it reports.
type SampleAggregator interface {
	// IsValidPartition reports whether the stored samples for the partition
	// in the given window are complete enough to be considered valid.
	//
	// Must be safe to call concurrently and must be a pure function of the
	// already-stored sample state.
	IsValidPartition(window Window, partition Partition) bool

	// ActiveWindow returns the window currently accepting samples.
	//
	// Called on every completeness update, so it must be cheap. The returned
	// value may lag the true active window by a bounded amount; the checker
	// uses it only as a best-effort exclusion marker.
	ActiveWindow() Window
}

// Topology reports the current per-topic partition counts of the cluster.
//
// A Topology passed to a checker query must reflect the topology version
// implied by the Generation token supplied in the same call; a mismatched
// generation/topology pair is a caller error. Querying a topic that does not
// exist in the topology is a precondition violation surfaced by the
// implementation, not recovered by the checker.
type Topology interface {
	// NumPartitions returns the total number of partitions the topic
	// currently has.
	NumPartitions(topic string) int
}
