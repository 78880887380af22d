package nats

import (
	"testing"

	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWriter_NotConnected(t *testing.T) {
	w := New(WithLogger(zaptest.NewLogger(t)), WithConnectionName("test"))

	require.ErrorIs(t, w.Notify("topic", oidtest.Address()), errConnIsClosed)
}
