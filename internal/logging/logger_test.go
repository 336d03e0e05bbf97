package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Development(t *testing.T) {
	l, err := New("development")
	require.NoError(t, err)
	require.NotNil(t, l)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel), "development logs debug")
}

func TestNew_Production(t *testing.T) {
	l, err := New("production")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.DebugLevel), "production starts at info")
	require.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
