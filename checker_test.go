package wincov

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Mock implementations for testing

// mockAggregator reports validity from an explicit fact set and a fixed
// active window.
type mockAggregator struct {
	valid  map[Window]map[Partition]bool
	active Window
}

func newMockAggregator(active Window) *mockAggregator {
	return &mockAggregator{valid: map[Window]map[Partition]bool{}, active: active}
}

func (m *mockAggregator) setValid(w Window, p Partition, ok bool) {
	if m.valid[w] == nil {
		m.valid[w] = map[Partition]bool{}
	}
	m.valid[w][p] = ok
}

func (m *mockAggregator) IsValidPartition(w Window, p Partition) bool {
	return m.valid[w][p]
}

func (m *mockAggregator) ActiveWindow() Window {
	return m.active
}

// mockTopology reports fixed partition counts per topic.
type mockTopology map[string]int

func (m mockTopology) NumPartitions(topic string) int {
	return m[topic]
}

var (
	orders0 = Partition{Topic: "orders", ID: 0}
	orders1 = Partition{Topic: "orders", ID: 1}
	clicks0 = Partition{Topic: "clicks", ID: 0}
)

// twoTopicFixture builds the reference scenario: topic "orders" with two
// partitions, topic "clicks" with one (three partitions total). Window 100 is
// closed and fully covered; window 200 is active with orders-1 invalid.
func twoTopicFixture(t *testing.T) (*Checker, *mockAggregator, mockTopology) {
	t.Helper()

	agg := newMockAggregator(200)
	agg.setValid(100, orders0, true)
	agg.setValid(100, orders1, true)
	agg.setValid(100, clicks0, true)
	agg.setValid(200, orders0, true)
	agg.setValid(200, orders1, false)
	agg.setValid(200, clicks0, true)

	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	for _, w := range []Window{100, 200} {
		for _, p := range []Partition{orders0, orders1, clicks0} {
			checker.UpdatePartitionCompleteness(w, p)
		}
	}

	return checker, agg, mockTopology{"orders": 2, "clicks": 1}
}

func TestNew_RequiredParameters(t *testing.T) {
	agg := newMockAggregator(0)

	t.Run("nil config", func(t *testing.T) {
		checker, err := New(nil, agg)

		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, checker)
	})

	t.Run("nil aggregator", func(t *testing.T) {
		checker, err := New(&Config{MaxRetainedWindows: 4}, nil)

		require.Error(t, err)
		require.ErrorIs(t, err, ErrAggregatorRequired)
		require.Nil(t, checker)
	})

	t.Run("invalid max windows", func(t *testing.T) {
		checker, err := New(&Config{MaxRetainedWindows: -1}, agg)

		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, checker)
	})

	t.Run("zero max windows defaulted", func(t *testing.T) {
		checker, err := New(&Config{}, agg)

		require.NoError(t, err)
		require.Equal(t, DefaultMaxRetainedWindows, checker.cfg.MaxRetainedWindows)
	})
}

func TestNew_OptionalDependencies(t *testing.T) {
	agg := newMockAggregator(0)
	checker, err := New(&Config{MaxRetainedWindows: 4}, agg)

	require.NoError(t, err)
	require.NotNil(t, checker.metrics) // defaults to NopMetrics
	require.NotNil(t, checker.logger)  // defaults to NopLogger
}

func TestChecker_ReferenceScenario(t *testing.T) {
	checker, _, topo := twoTopicFixture(t)
	gen := Generation{Cluster: 1, Model: 1}

	t.Run("aggregate totals", func(t *testing.T) {
		percentages := checker.MonitoredPercentages(gen, topo, 3)

		require.Len(t, percentages, 2)
		// Oldest first.
		require.Equal(t, Window(100), percentages[0].Window)
		require.InDelta(t, 1.0, percentages[0].Percentage, 1e-9)
		// Window 200: "orders" has one invalid partition, so the topic
		// contributes zero; only "clicks" counts.
		require.Equal(t, Window(200), percentages[1].Window)
		require.InDelta(t, 1.0/3.0, percentages[1].Percentage, 1e-9)
	})

	t.Run("valid windows", func(t *testing.T) {
		// Window 200 is active and is skipped without breaking the run;
		// window 100 has full coverage and counts.
		require.Equal(t, 1, checker.NumValidWindows(gen, topo, 0.9, 3))
	})
}

func TestChecker_FullTopicCoverageGating(t *testing.T) {
	agg := newMockAggregator(300)
	agg.setValid(100, orders0, true)
	// orders-1 invalid: topic "orders" must contribute nothing, not 1.
	agg.setValid(100, orders1, false)
	agg.setValid(100, clicks0, true)

	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	for _, p := range []Partition{orders0, orders1, clicks0} {
		checker.UpdatePartitionCompleteness(100, p)
	}

	topo := mockTopology{"orders": 2, "clicks": 1}
	percentages := checker.MonitoredPercentages(Generation{Model: 1}, topo, 3)

	require.Len(t, percentages, 1)
	require.InDelta(t, 1.0/3.0, percentages[0].Percentage, 1e-9)
}

func TestChecker_RecomputeIdempotentForFixedGeneration(t *testing.T) {
	checker, _, topo := twoTopicFixture(t)
	gen := Generation{Cluster: 1, Model: 1}

	first := checker.MonitoredPercentages(gen, topo, 3)
	second := checker.MonitoredPercentages(gen, topo, 3)
	require.Equal(t, first, second)

	require.Equal(t, checker.NumValidWindows(gen, topo, 0.9, 3),
		checker.NumValidWindows(gen, topo, 0.9, 3))
}

func TestChecker_GenerationChangeTriggersRecompute(t *testing.T) {
	checker, agg, topo := twoTopicFixture(t)
	gen := Generation{Cluster: 1, Model: 1}

	require.Equal(t, 1, checker.NumValidWindows(gen, topo, 0.9, 3))

	// New facts arrive but the generation is unchanged: the cached
	// aggregate keeps serving.
	agg.setValid(150, clicks0, true)
	checker.UpdatePartitionCompleteness(150, clicks0)
	require.Len(t, checker.MonitoredPercentages(gen, topo, 3), 2)

	// A new generation forces a rebuild that picks up window 150.
	next := Generation{Cluster: 1, Model: 2}
	require.Len(t, checker.MonitoredPercentages(next, topo, 3), 3)
}

func TestChecker_RefreshInvalidatesCacheWithUnchangedGeneration(t *testing.T) {
	checker, agg, topo := twoTopicFixture(t)
	gen := Generation{Cluster: 1, Model: 1}

	require.Equal(t, 1, checker.NumValidWindows(gen, topo, 0.9, 3))

	// Rebuild the raw layer around window 100 only. The follow-up query
	// reuses the same generation token and still must not serve the cache
	// computed before the refresh.
	agg.active = 100
	checker.RefreshAllPartitionCompleteness(
		[]Window{100},
		[]Partition{orders0, orders1, clicks0},
	)

	percentages := checker.MonitoredPercentages(gen, topo, 3)
	require.Len(t, percentages, 1)
	require.Equal(t, Window(100), percentages[0].Window)
}

func TestChecker_RemoveWindow(t *testing.T) {
	checker, _, topo := twoTopicFixture(t)
	gen := Generation{Cluster: 1, Model: 1}

	require.Len(t, checker.MonitoredPercentages(gen, topo, 3), 2)

	checker.RemoveWindow(100)

	// The cached aggregate still reports the evicted window until the next
	// recompute.
	require.Len(t, checker.MonitoredPercentages(gen, topo, 3), 2)

	next := Generation{Cluster: 1, Model: 2}
	percentages := checker.MonitoredPercentages(next, topo, 3)
	require.Len(t, percentages, 1)
	require.Equal(t, Window(200), percentages[0].Window)

	// Removing an absent window is a no-op.
	require.NotPanics(t, func() { checker.RemoveWindow(9999) })
}

func TestNumValidWindows_ContiguousRun(t *testing.T) {
	agg := newMockAggregator(500)
	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	// Windows 100..500; window 300 has clicks-0 invalid and breaks the run.
	for _, w := range []Window{100, 200, 300, 400, 500} {
		agg.setValid(w, clicks0, w != 300)
		checker.UpdatePartitionCompleteness(w, clicks0)
	}

	topo := mockTopology{"clicks": 1}
	gen := Generation{Model: 1}

	// Scan order: 500 (active, skipped), 400 (counts), 300 (below
	// threshold, stops the scan). Windows 200 and 100 cannot rescue it.
	require.Equal(t, 1, checker.NumValidWindows(gen, topo, 0.9, 1))
}

func TestMonitoredPercentages_ZeroCoverageWindowVisible(t *testing.T) {
	agg := newMockAggregator(400)
	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	// Window 200 has no fully covered topic: it must still appear in the
	// aggregate view with a zero total, not vanish from it.
	agg.setValid(100, clicks0, true)
	agg.setValid(200, clicks0, false)
	agg.setValid(300, clicks0, true)
	for _, w := range []Window{100, 200, 300} {
		checker.UpdatePartitionCompleteness(w, clicks0)
	}

	topo := mockTopology{"clicks": 1}
	gen := Generation{Model: 1}

	percentages := checker.MonitoredPercentages(gen, topo, 1)
	require.Len(t, percentages, 3)
	require.Equal(t, Window(200), percentages[1].Window)
	require.Zero(t, percentages[1].Percentage)

	// The zero-total window breaks the threshold scan: window 400 is not
	// tracked, window 300 counts, window 200 stops the run before 100.
	require.Equal(t, 1, checker.NumValidWindows(gen, topo, 0.9, 1))

	// The gap window also counts as retained for range queries.
	require.Equal(t, 2, checker.NumWindows(0, 250))
}

func TestNumValidWindows_CappedAtMaxRetainedWindows(t *testing.T) {
	agg := newMockAggregator(1000)
	checker, err := New(&Config{MaxRetainedWindows: 3}, agg)
	require.NoError(t, err)

	for w := Window(100); w <= 1000; w += 100 {
		agg.setValid(w, clicks0, true)
		checker.UpdatePartitionCompleteness(w, clicks0)
	}

	topo := mockTopology{"clicks": 1}
	n := checker.NumValidWindows(Generation{Model: 1}, topo, 0.5, 1)

	require.Equal(t, 3, n)
}

func TestNumWindows_RangeCount(t *testing.T) {
	agg := newMockAggregator(500)
	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	for _, w := range []Window{100, 200, 300, 400, 500} {
		agg.setValid(w, clicks0, true)
		checker.UpdatePartitionCompleteness(w, clicks0)
	}

	topo := mockTopology{"clicks": 1}

	t.Run("empty before first query", func(t *testing.T) {
		// NumWindows counts over the aggregate view, which is only built
		// by generation-gated queries.
		require.Equal(t, 0, checker.NumWindows(0, 1000))
	})

	checker.MonitoredPercentages(Generation{Model: 1}, topo, 1)

	t.Run("full range excludes most recent", func(t *testing.T) {
		// Window 500 is the most recent in the view and is assumed active.
		require.Equal(t, 4, checker.NumWindows(0, 1000))
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		require.Equal(t, 2, checker.NumWindows(200, 300))
	})

	t.Run("range covering only most recent", func(t *testing.T) {
		require.Equal(t, 0, checker.NumWindows(500, 1000))
	})

	t.Run("empty range", func(t *testing.T) {
		require.Equal(t, 0, checker.NumWindows(600, 700))
	})
}

func TestUpdatePartitionCompleteness_InvalidStillMaterializesEntry(t *testing.T) {
	agg := newMockAggregator(200)
	agg.setValid(100, orders0, false)

	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	checker.UpdatePartitionCompleteness(100, orders0)

	topics, ok := checker.raw.Load(100)
	require.True(t, ok)
	count, ok := topics.Load("orders")
	require.True(t, ok)
	require.Equal(t, int64(0), count.Load())
}

func TestUpdatePartitionCompleteness_RefreshesActiveWindowMarker(t *testing.T) {
	agg := newMockAggregator(200)
	agg.setValid(100, clicks0, true)

	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	checker.UpdatePartitionCompleteness(100, clicks0)
	require.Equal(t, int64(200), checker.activeWindow.Load())

	agg.active = 300
	checker.UpdatePartitionCompleteness(100, clicks0)
	require.Equal(t, int64(300), checker.activeWindow.Load())
}
