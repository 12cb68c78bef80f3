package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", " error "} {
		t.Run(level, func(t *testing.T) {
			log, err := New(level, false)
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestNew_DebugEnabledOnlyAtDebug(t *testing.T) {
	log, err := New("info", true)
	require.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("chatty", false)
	assert.ErrorContains(t, err, "invalid log level")
}
