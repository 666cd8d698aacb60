package types

import "strconv"

// Partition identifies a single topic partition.
//
// Partition is a small value type and is passed by value throughout the
// library. Two partitions are equal iff their topic and id are equal, so
// Partition is usable as a map key.
type Partition struct {
	// Topic is the topic name. Must be non-empty.
	Topic string `json:"topic"`

	// ID is the zero-based partition index within the topic.
	ID int `json:"id"`
}

// String returns the canonical "<topic>-<id>" form, e.g. "orders-0".
func (p Partition) String() string {
	return p.Topic + "-" + strconv.Itoa(p.ID)
}

// Compare orders partitions by topic name, then by partition id.
//
// Returns:
//   - int: -1 if p < q, 0 if equal, +1 if p > q
func (p Partition) Compare(q Partition) int {
	if p.Topic != q.Topic {
		if p.Topic < q.Topic {
			return -1
		}

		return 1
	}
	if p.ID != q.ID {
		if p.ID < q.ID {
			return -1
		}

		return 1
	}

	return 0
}
