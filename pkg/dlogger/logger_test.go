package dlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLogger(t *testing.T) {
	for _, lvl := range []string{LogLevelInfo, LogLevelDebug, LogLevelWarn} {
		l, err := GetLogger(lvl)
		require.NoError(t, err)
		require.NotNil(t, l)
	}

	l, err := GetLogger(LogLevelNone)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))

	_, err = GetLogger("chatty")
	require.Error(t, err)

	c, err := GetConsoleLogger(LogLevelDebug)
	require.NoError(t, err)
	assert.True(t, c.Core().Enabled(zapcore.DebugLevel))

	assert.Panics(t, func() { _ = MustGetLogger("chatty") })
}
