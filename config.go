package wincov

import "fmt"

// DefaultMaxRetainedWindows is the default bound on the number of windows
// counted by queries when Config.MaxRetainedWindows is zero.
const DefaultMaxRetainedWindows = 8

// Config is the configuration for the Checker.
type Config struct {
	// MaxRetainedWindows is the maximum number of windows counted by
	// NumValidWindows and, together with the retention policy's eviction
	// calls, the effective bound on tracked state.
	//
	// Only completed windows count toward the limit; the active window is
	// excluded from query results regardless.
	//
	// Default: DefaultMaxRetainedWindows.
	MaxRetainedWindows int `yaml:"maxRetainedWindows"`
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Configuration to update in place
func SetDefaults(cfg *Config) {
	if cfg.MaxRetainedWindows == 0 {
		cfg.MaxRetainedWindows = DefaultMaxRetainedWindows
	}
}

// Validate checks the configuration for invalid values.
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.MaxRetainedWindows <= 0 {
		return fmt.Errorf("%w: MaxRetainedWindows must be > 0, got %d",
			ErrInvalidConfig, cfg.MaxRetainedWindows)
	}

	return nil
}
