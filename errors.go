package wincov

import "errors"

// Sentinel errors returned by the Checker constructor.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAggregatorRequired is returned when the sample aggregator is nil.
	ErrAggregatorRequired = errors.New("sample aggregator is required")
)
