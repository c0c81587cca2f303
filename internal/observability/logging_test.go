package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/escaperoom/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Rejects(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"unknown level", config.LoggingConfig{Level: "trace", Format: "json"}},
		{"unknown format", config.LoggingConfig{Level: "info", Format: "xml"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLogger(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestNewCLILogger_QuietByDefault(t *testing.T) {
	logger := NewCLILogger(false)
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewCLILogger_Verbose(t *testing.T) {
	logger := NewCLILogger(true)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
