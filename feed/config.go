package feed

import (
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/wincov/internal/logging"
	"github.com/arloliu/wincov/internal/metrics"
	"github.com/arloliu/wincov/types"
)

// Default configuration values for the Feed.
const (
	// DefaultBatchSize is the default number of messages buffered per pull.
	DefaultBatchSize = 64

	// DefaultFetchTimeout is the default maximum duration of one pull request.
	DefaultFetchTimeout = 5 * time.Second

	// DefaultMaxRetries is the default maximum number of consumer setup attempts.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the default base delay between setup attempts.
	DefaultRetryBackoff = 100 * time.Millisecond

	// DefaultAckWait is the default duration to wait for acknowledgment.
	DefaultAckWait = 30 * time.Second

	// DefaultMaxDeliver is the default maximum delivery attempts per message.
	DefaultMaxDeliver = 3

	// DefaultInactiveThreshold is the default inactive consumer cleanup threshold.
	DefaultInactiveThreshold = 24 * time.Hour
)

// Config configures the completeness event feed.
//
// Required fields:
//   - StreamName
//   - ConsumerName
//   - FilterSubject
//
// Optional tuning fields are documented inline below. Zero values are
// replaced by defaults via applyDefaults().
type Config struct {
	// StreamName is the name of the JetStream stream carrying validity events.
	// Required: Must be non-empty.
	StreamName string

	// ConsumerName is the durable consumer name for this feed instance.
	// Required: Must be non-empty.
	ConsumerName string

	// FilterSubject selects the validity event subjects within the stream,
	// e.g. "completeness.>".
	// Required: Must be non-empty.
	FilterSubject string

	// AckPolicy is the acknowledgment policy for the consumer.
	// Optional: Defaults to jetstream.AckExplicitPolicy.
	AckPolicy jetstream.AckPolicy

	// AckWait is the duration to wait for an acknowledgment before redelivery.
	// Optional: Defaults to DefaultAckWait. Redelivery double-counts, so keep
	// this well above event processing time.
	AckWait time.Duration

	// MaxDeliver is the maximum number of delivery attempts for a message.
	// Optional: Defaults to DefaultMaxDeliver.
	MaxDeliver int

	// InactiveThreshold is how long NATS keeps the consumer after the feed
	// stops before cleaning it up.
	// Optional: Defaults to DefaultInactiveThreshold.
	InactiveThreshold time.Duration

	// BatchSize is the number of messages buffered per pull request.
	// Optional: Defaults to DefaultBatchSize.
	BatchSize int

	// FetchTimeout is the maximum duration of one pull request.
	// Optional: Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration

	// MaxRetries is the maximum number of attempts for consumer setup.
	// Optional: Defaults to DefaultMaxRetries.
	MaxRetries int

	// RetryBackoff is the base delay between consumer setup attempts; the
	// actual delay grows with decorrelated jitter.
	// Optional: Defaults to DefaultRetryBackoff.
	RetryBackoff time.Duration

	// Logger for diagnostic messages.
	// Optional: Defaults to the no-op logger.
	Logger types.Logger

	// Metrics records feed events and fetch errors.
	// Optional: Defaults to the no-op collector.
	Metrics types.FeedMetrics
}

// applyDefaults fills unset optional fields with project defaults.
func (cfg *Config) applyDefaults() {
	if cfg.AckPolicy == 0 {
		cfg.AckPolicy = jetstream.AckExplicitPolicy
	}
	if cfg.AckWait == 0 {
		cfg.AckWait = DefaultAckWait
	}
	if cfg.MaxDeliver == 0 {
		cfg.MaxDeliver = DefaultMaxDeliver
	}
	if cfg.InactiveThreshold == 0 {
		cfg.InactiveThreshold = DefaultInactiveThreshold
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
}
