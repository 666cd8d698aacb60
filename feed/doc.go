// Package feed connects a completeness checker to a NATS JetStream stream of
// partition validity events.
//
// In a deployed pipeline the producers that validate metric samples usually
// run in different processes than the checker. Each time a producer validates
// a (window, partition) fact it publishes a compact JSON Event; the feed runs
// a durable pull consumer against that stream and replays every event into a
// Sink, normally a *wincov.Checker.
//
// Delivery is at-least-once: a redelivered event is replayed and
// double-counts, because completeness updates are not idempotent. Keep AckWait
// comfortably above event processing time and treat the resulting counts as
// the monitoring signal they are, not as exact figures.
package feed
