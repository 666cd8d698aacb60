package wincov

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/wincov/internal/logging"
	"github.com/arloliu/wincov/internal/metrics"
	"github.com/arloliu/wincov/types"
)

// Checker computes the completeness of the metric samples stored by a
// SampleAggregator, per window.
//
// Checker is the main entry point of the wincov library. It maintains:
//   - a raw layer of per-window, per-topic valid-partition counts, safe for
//     unbounded concurrent producers without a global lock;
//   - a derived layer of per-window aggregate totals, rebuilt lazily when the
//     caller's topology generation token changes and cached until the next
//     change or bulk refresh.
//
// Thread Safety:
//   - UpdatePartitionCompleteness and RemoveWindow never block on queries
//   - Queries, bulk refresh, and the lazy recompute are mutually exclusive
//   - A recompute is not linearizable against concurrent raw writers; it
//     reads whatever raw counts happen to be visible
//
// Testing:
// Consumers can define minimal interfaces for mocking:
//
//	type CompletenessSource interface {
//	    NumValidWindows(gen wincov.Generation, topo wincov.Topology, minCoverage float64, totalPartitions int) int
//	}
type Checker struct {
	cfg        Config
	aggregator SampleAggregator

	// Optional dependencies
	metrics MetricsCollector
	logger  Logger

	// Raw tier: window -> topic -> valid partition count. Insert-or-increment
	// on a key is atomic; writers to different keys never contend on a
	// shared lock.
	raw *xsync.Map[types.Window, *xsync.Map[string, *atomic.Int64]]

	// Best-effort marker of the window currently accepting samples,
	// refreshed on every raw write. Readers may observe a slightly stale
	// value; it is used only as an exclusion heuristic in queries.
	activeWindow atomic.Int64

	// Derived tier, guarded by mu. aggregate holds per-window totals of
	// fully covered topics; byRecency holds the same windows sorted most
	// recent first. lastGen is the generation the cache was computed
	// against; nil forces a recompute on the next query.
	mu        sync.Mutex
	aggregate map[types.Window]int64
	byRecency []types.Window
	lastGen   *types.Generation
}

// New creates a new Checker instance with the provided configuration.
//
// Returns a concrete *Checker struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration
//   - aggregator: Sample aggregator consulted for per-partition validity and
//     the active window
//   - opts: Optional configuration (metrics, logger)
//
// Returns:
//   - *Checker: Initialized checker instance
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := wincov.Config{MaxRetainedWindows: 8}
//	checker, err := wincov.New(&cfg, aggregator)
func New(cfg *Config, aggregator SampleAggregator, opts ...Option) (*Checker, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if aggregator == nil {
		return nil, ErrAggregatorRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply options
	options := &checkerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}
	logger := options.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Checker{
		cfg:        *cfg,
		aggregator: aggregator,
		metrics:    metricsCollector,
		logger:     logger,
		raw:        xsync.NewMap[types.Window, *xsync.Map[string, *atomic.Int64]](),
		aggregate:  map[types.Window]int64{},
	}, nil
}

// UpdatePartitionCompleteness records the validity of one (window, partition)
// pair in the raw layer and refreshes the active-window marker.
//
// The aggregator's validity predicate is consulted for the pair; a valid
// partition increments the window's per-topic count by one, an invalid one
// leaves the count unchanged (but still materializes the entry). Safe for
// arbitrary concurrent invocation from multiple producers; increments to the
// same (window, topic) key are serialized without lost updates.
//
// Callers must invoke this exactly once per newly validated fact. The
// operation is not idempotent: calling it twice for the same fact
// double-counts. That discipline is a caller contract, not something the
// checker detects.
//
// Parameters:
//   - window: Window the sample belongs to
//   - partition: Partition the sample belongs to
func (c *Checker) UpdatePartitionCompleteness(window types.Window, partition types.Partition) {
	topics, ok := c.raw.Load(window)
	if !ok {
		topics, _ = c.raw.LoadOrStore(window, xsync.NewMap[string, *atomic.Int64]())
	}
	count, ok := topics.Load(partition.Topic)
	if !ok {
		count, _ = topics.LoadOrStore(partition.Topic, new(atomic.Int64))
	}
	if c.aggregator.IsValidPartition(window, partition) {
		count.Add(1)
	}

	c.activeWindow.Store(int64(c.aggregator.ActiveWindow()))
}

// RefreshAllPartitionCompleteness discards the entire raw layer and rebuilds
// it by replaying UpdatePartitionCompleteness for every (window, partition)
// pair in the cross product of the supplied sets.
//
// Executed exclusively with respect to queries: no query observes a partially
// rebuilt raw layer. The cached aggregate is invalidated unconditionally
// afterwards, because a previously cached aggregate may have been computed
// against the raw data just discarded; an unchanged generation token alone
// must not serve it.
//
// Parameters:
//   - windows: Windows to replay
//   - partitions: Partitions to replay for every window
func (c *Checker) RefreshAllPartitionCompleteness(windows []types.Window, partitions []types.Partition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.raw.Clear()
	for _, w := range windows {
		for _, p := range partitions {
			c.UpdatePartitionCompleteness(w, p)
		}
	}
	c.lastGen = nil

	c.metrics.RecordRawRefresh(len(windows), len(partitions))
	c.logger.Debug("refreshed raw partition completeness",
		"windows", len(windows), "partitions", len(partitions))
}

// RemoveWindow evicts all raw entries for one window.
//
// Called by the retention policy when a window ages out of the retained
// horizon. The aggregate cache is left untouched; the next staleness-detected
// recompute naturally omits the window because it is no longer present in the
// raw layer. No-op if the window is absent.
//
// Parameters:
//   - window: Window to evict
func (c *Checker) RemoveWindow(window types.Window) {
	c.raw.Delete(window)
	c.metrics.RecordWindowRemoved()
}

// NumValidWindows returns the number of most recent windows whose aggregate
// valid-partition total meets the minimum coverage requirement.
//
// Triggers a recompute if the cached aggregate is stale for gen. Windows are
// scanned from most recent to oldest; the scan stops at the first window
// below the threshold (valid windows form a contiguous most-recent run — an
// older window cannot rescue a gap) and never counts more than the configured
// maximum. The active window, when encountered, is skipped without breaking
// the run: its data is necessarily incomplete.
//
// Parameters:
//   - gen: Topology generation token the supplied topology reflects
//   - topo: Current per-topic partition counts
//   - minCoverage: Minimum covered fraction in [0.0, 1.0] for a window to count
//   - totalPartitions: Total partition count across all monitored topics
//
// Returns:
//   - int: Number of qualifying windows, at most Config.MaxRetainedWindows
func (c *Checker) NumValidWindows(gen types.Generation, topo types.Topology, minCoverage float64, totalPartitions int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.computeIfStale(gen, topo)

	active := types.Window(c.activeWindow.Load())
	threshold := minCoverage * float64(totalPartitions)
	n := 0
	for _, w := range c.byRecency {
		if n >= c.cfg.MaxRetainedWindows {
			break
		}
		if w == active {
			continue
		}
		if float64(c.aggregate[w]) < threshold {
			break
		}
		n++
	}

	c.metrics.SetValidWindows(n)

	return n
}

// MonitoredPercentages returns, for every retained window, the fraction of
// totalPartitions whose samples were complete in that window.
//
// Triggers a recompute if the cached aggregate is stale for gen. Results are
// ordered by window ascending (oldest first). A window whose topics all fail
// full-coverage gating reports 0.0 rather than being omitted.
//
// Parameters:
//   - gen: Topology generation token the supplied topology reflects
//   - topo: Current per-topic partition counts
//   - totalPartitions: Total partition count across all monitored topics
//
// Returns:
//   - []types.WindowPercentage: Per-window coverage ratios, oldest first
func (c *Checker) MonitoredPercentages(gen types.Generation, topo types.Topology, totalPartitions int) []types.WindowPercentage {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.computeIfStale(gen, topo)

	out := make([]types.WindowPercentage, 0, len(c.byRecency))
	for i := len(c.byRecency) - 1; i >= 0; i-- {
		w := c.byRecency[i]
		out = append(out, types.WindowPercentage{
			Window:     w,
			Percentage: float64(c.aggregate[w]) / float64(totalPartitions),
		})
	}

	return out
}

// NumWindows returns the number of windows in the aggregate view whose id
// falls within [from, to] inclusive, excluding the single most recent window.
//
// The most recent window in the view is assumed to be the active one and is
// skipped structurally; the active-window marker is not consulted. The count
// is taken over the cached aggregate view as-is, without triggering a
// recompute.
//
// Parameters:
//   - from: Range start, inclusive
//   - to: Range end, inclusive
//
// Returns:
//   - int: Number of windows in range
func (c *Checker) NumWindows(from, to types.Window) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for i, w := range c.byRecency {
		if i == 0 {
			continue
		}
		if w >= from && w <= to {
			n++
		}
	}

	return n
}

// computeIfStale rebuilds the aggregate view when the cached generation token
// differs from gen, or when no token is cached. Callers must hold c.mu.
//
// The rebuild clears the view and, for every (window, topic) pair in the raw
// layer, adds the topic's valid-partition count to the window's total only if
// it equals the topic's current partition count (full-topic coverage gating;
// partial coverage contributes zero). Cost is O(windows x topics) and
// dominates any query that triggers it.
func (c *Checker) computeIfStale(gen types.Generation, topo types.Topology) {
	if c.lastGen != nil && *c.lastGen == gen {
		return
	}

	start := time.Now()
	c.aggregate = make(map[types.Window]int64, len(c.aggregate))
	c.byRecency = c.byRecency[:0]

	c.raw.Range(func(w types.Window, topics *xsync.Map[string, *atomic.Int64]) bool {
		// Every retained window appears in the rebuilt view. A window whose
		// topics all fail full-coverage gating keeps a zero total, so the
		// threshold scan in NumValidWindows sees the gap and stops on it
		// instead of skipping over an invisible window.
		c.byRecency = append(c.byRecency, w)
		c.aggregate[w] = 0
		topics.Range(func(topic string, count *atomic.Int64) bool {
			valid := count.Load()
			if int(valid) == topo.NumPartitions(topic) {
				c.aggregate[w] += valid
			}

			return true
		})

		return true
	})

	sort.Slice(c.byRecency, func(i, j int) bool { return c.byRecency[i] > c.byRecency[j] })

	g := gen
	c.lastGen = &g

	c.metrics.RecordRecompute(time.Since(start).Seconds(), len(c.byRecency))
	c.metrics.SetTrackedWindows(c.raw.Size())
	c.logger.Debug("recomputed aggregate completeness",
		"generation", gen, "windows", len(c.byRecency))
}
