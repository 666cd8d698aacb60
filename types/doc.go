// Package types contains the public types and collaborator contracts used by
// the wincov library.
//
// This package exists so that internal packages can share type definitions
// without importing the root wincov package, which would create import
// cycles. The root package re-exports everything here via type aliases, so
// most users never need to import types directly.
package types
