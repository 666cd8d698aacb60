package types

import "strconv"

// Window identifies a fixed-size time bucket of metric samples.
//
// Logically a window is the bucket's start timestamp in milliseconds, so
// windows are monotonically ordered: a larger value is a more recent window.
// Exactly one window at any time is "active" (still receiving samples); all
// others are closed.
type Window int64

// String returns the window id as a decimal string.
func (w Window) String() string {
	return strconv.FormatInt(int64(w), 10)
}

// WindowPercentage pairs a window with the fraction of the cluster's
// partitions whose samples were complete in that window.
type WindowPercentage struct {
	// Window is the window id.
	Window Window `json:"window"`

	// Percentage is the covered fraction in [0.0, 1.0]. A window in which
	// every partition of every topic was valid reports 1.0.
	Percentage float64 `json:"percentage"`
}
