package logging

import "github.com/arloliu/wincov/types"

// NopLogger implements a no-op types.Logger. All messages are discarded.
//
// Used as the default when no logger is injected, so callers never need
// nil checks before logging.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (l *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (l *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (l *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message. Unlike the slog implementation it does not
// exit, which keeps tests using the nop logger safe.
func (l *NopLogger) Fatal(_ string, _ ...any) {}
