package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	return cmd, &buf
}

func TestPrintObjectHeader(t *testing.T) {
	obj := objecttest.ObjectWithPayload(cidtest.ID(), []byte("payload"))
	objecttest.AddAttribute(obj, "FileName", "cat.jpg")

	cmd, buf := testCommand()
	PrintObjectHeader(cmd, obj)

	id, _ := obj.ID()
	cnr, _ := obj.Container()

	require.Contains(t, buf.String(), id.String())
	require.Contains(t, buf.String(), cnr.String())
	require.Contains(t, buf.String(), "cat.jpg")
	require.Contains(t, buf.String(), "REGULAR")
}

func TestReadObject(t *testing.T) {
	obj := objecttest.ObjectWithPayload(cidtest.ID(), []byte("payload"))
	data := obj.Marshal()

	t.Run("payload only", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "payload")

		cmd, _ := testCommand()
		require.NoError(t, ReadObject(cmd, data, out, true))

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Equal(t, []byte("payload"), got)
	})

	t.Run("whole object", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "object")

		cmd, _ := testCommand()
		require.NoError(t, ReadObject(cmd, data, out, false))

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Equal(t, data, got)
	})

	t.Run("no output", func(t *testing.T) {
		cmd, buf := testCommand()
		require.NoError(t, ReadObject(cmd, data, "", false))
		require.NotContains(t, buf.String(), "Saved")
	})

	t.Run("corrupted", func(t *testing.T) {
		cmd, _ := testCommand()
		require.Error(t, ReadObject(cmd, []byte{0xff, 0xff, 0xff}, "", false))
	})
}

func TestParseAddress(t *testing.T) {
	addr := oidtest.Address()

	got, err := ParseAddress(addr.EncodeToString())
	require.NoError(t, err)
	require.Equal(t, addr, got)

	_, err = ParseAddress("not an address")
	require.Error(t, err)
}

func TestErrf(t *testing.T) {
	require.NoError(t, Errf("wrap: %w", nil))
	require.EqualError(t, Errf("wrap: %w", os.ErrNotExist), "wrap: "+os.ErrNotExist.Error())
}
