package wincov

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{}
	SetDefaults(&cfg)

	require.Equal(t, DefaultMaxRetainedWindows, cfg.MaxRetainedWindows)

	// Explicit values are not overwritten.
	cfg = Config{MaxRetainedWindows: 20}
	SetDefaults(&cfg)
	require.Equal(t, 20, cfg.MaxRetainedWindows)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := Config{MaxRetainedWindows: 8}
		require.NoError(t, cfg.Validate())
	})

	t.Run("zero max windows", func(t *testing.T) {
		cfg := Config{}
		err := cfg.Validate()

		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("negative max windows", func(t *testing.T) {
		cfg := Config{MaxRetainedWindows: -5}
		err := cfg.Validate()

		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}
