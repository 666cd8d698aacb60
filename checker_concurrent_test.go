package wincov

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// allValidAggregator treats every (window, partition) fact as valid.
type allValidAggregator struct {
	active Window
}

func (a *allValidAggregator) IsValidPartition(_ Window, _ Partition) bool { return true }
func (a *allValidAggregator) ActiveWindow() Window                        { return a.active }

func TestUpdatePartitionCompleteness_ConcurrentSameKey(t *testing.T) {
	agg := &allValidAggregator{active: 200}
	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	const writers = 16
	const updatesPerWriter = 500

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < updatesPerWriter; j++ {
				// All writers hammer the same (window, topic) key; every
				// increment must land.
				checker.UpdatePartitionCompleteness(100, Partition{Topic: "orders", ID: id})
			}
		}(i)
	}
	wg.Wait()

	topics, ok := checker.raw.Load(100)
	require.True(t, ok)
	count, ok := topics.Load("orders")
	require.True(t, ok)
	require.Equal(t, int64(writers*updatesPerWriter), count.Load())
}

func TestUpdatePartitionCompleteness_ConcurrentDisjointKeys(t *testing.T) {
	agg := &allValidAggregator{active: 9999}
	checker, err := New(&Config{MaxRetainedWindows: 64}, agg)
	require.NoError(t, err)

	const windows = 8
	const topics = 4
	const updatesPerKey = 100

	var wg sync.WaitGroup
	for w := 0; w < windows; w++ {
		for i := 0; i < topics; i++ {
			wg.Add(1)
			go func(w, i int) {
				defer wg.Done()
				p := Partition{Topic: string(rune('a' + i)), ID: 0}
				for j := 0; j < updatesPerKey; j++ {
					checker.UpdatePartitionCompleteness(Window(w*100), p)
				}
			}(w, i)
		}
	}
	wg.Wait()

	for w := 0; w < windows; w++ {
		topicCounts, ok := checker.raw.Load(Window(w * 100))
		require.True(t, ok)
		for i := 0; i < topics; i++ {
			count, ok := topicCounts.Load(string(rune('a' + i)))
			require.True(t, ok)
			require.Equal(t, int64(updatesPerKey), count.Load())
		}
	}
}

func TestQueries_ConcurrentWithWriters(t *testing.T) {
	agg := &allValidAggregator{active: 1000}
	checker, err := New(&Config{MaxRetainedWindows: 8}, agg)
	require.NoError(t, err)

	topo := mockTopology{"orders": 100} // effectively never fully covered

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := Window(100)
			for {
				select {
				case <-stop:
					return
				default:
					checker.UpdatePartitionCompleteness(w, Partition{Topic: "orders", ID: 0})
					w += 100
					if w > 1000 {
						w = 100
					}
				}
			}
		}()
	}

	// Queries interleave with writers; results may reflect any raw state
	// but must never panic or deadlock.
	for i := 0; i < 200; i++ {
		gen := Generation{Model: int64(i)}
		checker.NumValidWindows(gen, topo, 0.5, 100)
		checker.MonitoredPercentages(gen, topo, 100)
		checker.NumWindows(0, 2000)
		if i%50 == 0 {
			checker.RemoveWindow(Window(100 * (i/50 + 1)))
		}
	}
	close(stop)
	wg.Wait()
}
