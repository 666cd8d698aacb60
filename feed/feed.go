package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/wincov/types"
)

// Sentinel errors returned by the Feed.
var (
	// ErrConnRequired is returned when the NATS connection is nil.
	ErrConnRequired = errors.New("NATS connection is required")

	// ErrSinkRequired is returned when the sink is nil.
	ErrSinkRequired = errors.New("sink is required")

	// ErrStreamNameRequired is returned when the stream name is empty.
	ErrStreamNameRequired = errors.New("stream name is required")

	// ErrConsumerNameRequired is returned when the consumer name is empty.
	ErrConsumerNameRequired = errors.New("consumer name is required")

	// ErrFilterSubjectRequired is returned when the filter subject is empty.
	ErrFilterSubjectRequired = errors.New("filter subject is required")

	// ErrAlreadyStarted is returned when Start is called on a running feed.
	ErrAlreadyStarted = errors.New("feed already started")

	// ErrNotStarted is returned when Stop is called on a feed that has not
	// been started.
	ErrNotStarted = errors.New("feed not started")
)

// Event is one partition validity fact on the wire.
//
// Producers publish exactly one Event per newly validated (window, partition)
// pair. Publishing the same fact twice double-counts on the consuming side.
type Event struct {
	// Window is the window the validated sample belongs to.
	Window types.Window `json:"window"`

	// Topic is the partition's topic name.
	Topic string `json:"topic"`

	// Partition is the zero-based partition index within the topic.
	Partition int `json:"partition"`
}

// Sink receives replayed validity events. *wincov.Checker satisfies Sink.
type Sink interface {
	// UpdatePartitionCompleteness records the validity of one
	// (window, partition) pair. Must be safe for concurrent use.
	UpdatePartitionCompleteness(window types.Window, partition types.Partition)
}

// Feed consumes partition validity events from a JetStream stream and replays
// them into a Sink.
//
// Lifecycle:
//   - Create with New()
//   - Call Start() to create the durable consumer and begin consuming
//   - Call Stop() for graceful shutdown
type Feed struct {
	conn *nats.Conn
	js   jetstream.JetStream
	cfg  Config
	sink Sink

	logger  types.Logger
	metrics types.FeedMetrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new Feed instance.
//
// Parameters:
//   - conn: NATS connection
//   - cfg: Feed configuration (stream, consumer, subject, tuning)
//   - sink: Destination for replayed events, normally a *wincov.Checker
//
// Returns:
//   - *Feed: Initialized feed instance
//   - error: Validation error if required parameters are missing
//
// Example:
//
//	f, err := feed.New(nc, feed.Config{
//	    StreamName:    "COMPLETENESS",
//	    ConsumerName:  "checker",
//	    FilterSubject: "completeness.>",
//	}, checker)
func New(conn *nats.Conn, cfg Config, sink Sink) (*Feed, error) {
	if conn == nil {
		return nil, ErrConnRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if cfg.StreamName == "" {
		return nil, ErrStreamNameRequired
	}
	if cfg.ConsumerName == "" {
		return nil, ErrConsumerNameRequired
	}
	if cfg.FilterSubject == "" {
		return nil, ErrFilterSubjectRequired
	}

	cfg.applyDefaults()

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Feed{
		conn:    conn,
		js:      js,
		cfg:     cfg,
		sink:    sink,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// Start creates the durable consumer and launches the consume loop.
//
// The consume loop runs until Stop is called or ctx is cancelled.
//
// Parameters:
//   - ctx: Context bounding consumer setup and the consume loop
//
// Returns:
//   - error: Consumer setup error, or ErrAlreadyStarted
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		return ErrAlreadyStarted
	}

	consumer, err := f.ensureConsumer(ctx)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done

	go f.consumeLoop(loopCtx, consumer, done)

	f.logger.Info("completeness feed started",
		"stream", f.cfg.StreamName,
		"consumer", f.cfg.ConsumerName,
		"subject", f.cfg.FilterSubject)

	return nil
}

// Stop cancels the consume loop and waits for it to exit.
//
// Parameters:
//   - ctx: Context bounding the wait for loop shutdown
//
// Returns:
//   - error: ctx.Err() if shutdown did not finish in time, or ErrNotStarted
func (f *Feed) Stop(ctx context.Context) error {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()

	select {
	case <-done:
		f.logger.Info("completeness feed stopped", "consumer", f.cfg.ConsumerName)

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ensureConsumer gets or creates the durable consumer with jittered retries.
func (f *Feed) ensureConsumer(ctx context.Context) (jetstream.Consumer, error) {
	stream, err := f.js.Stream(ctx, f.cfg.StreamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", f.cfg.StreamName, err)
	}

	consumerCfg := jetstream.ConsumerConfig{
		Name:              f.cfg.ConsumerName,
		Durable:           f.cfg.ConsumerName,
		FilterSubject:     f.cfg.FilterSubject,
		AckPolicy:         f.cfg.AckPolicy,
		AckWait:           f.cfg.AckWait,
		MaxDeliver:        f.cfg.MaxDeliver,
		InactiveThreshold: f.cfg.InactiveThreshold,
	}

	var delay time.Duration
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerCfg)
		if err == nil {
			return consumer, nil
		}
		if attempt >= f.cfg.MaxRetries {
			return nil, fmt.Errorf("failed to create consumer %s after %d attempts: %w",
				f.cfg.ConsumerName, attempt+1, err)
		}

		delay = jitterBackoff(delay, f.cfg.RetryBackoff, 1.6, f.cfg.FetchTimeout)
		f.logger.Warn("consumer setup failed, retrying",
			"consumer", f.cfg.ConsumerName,
			"attempt", attempt+1,
			"backoff", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// consumeLoop pulls messages via the Messages() iterator until ctx is done.
func (f *Feed) consumeLoop(ctx context.Context, consumer jetstream.Consumer, done chan struct{}) {
	defer close(done)

	iter, err := consumer.Messages(
		jetstream.PullMaxMessages(f.cfg.BatchSize),
		jetstream.PullExpiry(f.cfg.FetchTimeout),
		jetstream.PullHeartbeat(f.cfg.FetchTimeout/2),
	)
	if err != nil {
		f.logger.Error("failed to create message iterator", "error", err)

		return
	}
	defer iter.Stop()

	// Stop the iterator as soon as the context is cancelled so that a
	// blocked Next() call returns.
	go func() {
		<-ctx.Done()
		iter.Stop()
	}()

	for {
		msg, err := iter.Next()
		if err != nil {
			if errors.Is(err, jetstream.ErrMsgIteratorClosed) || ctx.Err() != nil {
				f.logger.Debug("consume loop exiting")

				return
			}
			f.metrics.RecordFeedFetchError()
			f.logger.Warn("failed to fetch completeness events", "error", err)

			continue
		}

		f.handle(msg)
	}
}

// handle decodes one event and replays it into the sink.
func (f *Feed) handle(msg jetstream.Msg) {
	var ev Event
	if err := json.Unmarshal(msg.Data(), &ev); err != nil {
		f.metrics.RecordFeedEvent(false)
		f.logger.Warn("dropping malformed completeness event",
			"subject", msg.Subject(), "error", err)
		// A malformed payload will never parse; terminate instead of
		// redelivering.
		_ = msg.Term()

		return
	}

	f.sink.UpdatePartitionCompleteness(ev.Window, types.Partition{Topic: ev.Topic, ID: ev.Partition})
	f.metrics.RecordFeedEvent(true)

	if err := msg.Ack(); err != nil {
		f.logger.Warn("failed to ack completeness event",
			"subject", msg.Subject(), "error", err)
	}
}
