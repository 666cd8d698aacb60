package wincov

import "github.com/arloliu/wincov/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `wincov`
// package, while still providing a convenient `wincov.Window`,
// `wincov.Partition`, etc. for users.
type (
	Window           = types.Window
	Partition        = types.Partition
	Generation       = types.Generation
	WindowPercentage = types.WindowPercentage
)

// Re-export interfaces from the types subpackage for convenience.
type (
	SampleAggregator = types.SampleAggregator
	Topology         = types.Topology
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)
