package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	var prm Prm

	l, err := NewLogger(prm)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.InfoLevel))
	require.False(t, l.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, prm.SetLevelString("debug"))
	l.Reload(prm)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel))

	require.Error(t, prm.SetLevelString("verbose"))

	require.NoError(t, prm.SetEncoding("json"))
	_, err = NewLogger(prm)
	require.NoError(t, err)

	require.Error(t, prm.SetEncoding("xml"))
}
