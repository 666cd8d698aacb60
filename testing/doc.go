// Package testing provides helpers for testing wincov-based code: an
// embedded NATS server with JetStream for feed tests, a stream creation
// helper, and a logger that writes to the test log.
package testing
