// Package wincov tracks how complete the metric samples collected for each
// fixed-size time window are, so that downstream modeling can decide how many
// recent windows are trustworthy.
//
// The checker aggregates per-partition validity facts, already computed by an
// external sample aggregator, into per-window coverage statistics. A topic
// contributes to a window's total only when every one of its current
// partitions was valid in that window (full-topic coverage gating); partial
// topic coverage contributes zero.
//
// # Quick Start
//
//	import "github.com/arloliu/wincov"
//
//	cfg := wincov.Config{MaxRetainedWindows: 8}
//	checker, err := wincov.New(&cfg, aggregator)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Write path: called once per newly validated (window, partition) fact.
//	checker.UpdatePartitionCompleteness(window, partition)
//
//	// Read path: gated by the caller's topology generation token.
//	n := checker.NumValidWindows(gen, topology, 0.9, totalPartitions)
//
// # Architecture
//
// The checker keeps two layered views of the same underlying fact ("is
// partition P's data valid in window W?"):
//
//   - a raw layer of per-window, per-topic valid-partition counts, updated
//     lock-free by arbitrarily many concurrent producers;
//   - a derived layer of per-window aggregate totals, rebuilt lazily under a
//     checker-wide mutex whenever the caller's generation token changes, and
//     cached until the next change or bulk refresh.
//
// A recompute may observe raw counts that concurrent producers are still
// incrementing; the aggregate snapshot reflects whatever raw state was
// visible at recompute time. Completeness is a monitoring signal, not a
// transactional quantity, so this weak consistency is deliberate.
//
// # Collaborators
//
// The checker owns no data of its own. The sample aggregator decides
// per-partition validity and reports the active window; the topology provider
// reports current per-topic partition counts; the caller supplies a
// generation token that must change whenever partition counts change. See the
// types subpackage for the contracts.
//
// The feed subpackage connects the checker to a NATS JetStream stream of
// validity events for deployments where producers and the checker live in
// different processes.
package wincov
