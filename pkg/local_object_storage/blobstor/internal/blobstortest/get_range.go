package blobstortest

import (
	"math"
	"testing"

	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/stretchr/testify/require"
)

// TestGetRange checks payload range reading and its bounds.
func TestGetRange(t *testing.T, cons Constructor, minSize, maxSize uint64) {
	s := cons(t)
	require.NoError(t, s.Open(false))
	require.NoError(t, s.Init())
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	objects := prepare(t, 1, s, minSize, maxSize)

	getRange := func(off, ln uint64) ([]byte, error) {
		res, err := s.GetRange(common.GetRangePrm{
			Address:   objects[0].addr,
			Offset:    off,
			Length:    ln,
			StorageID: objects[0].storageID,
		})
		return res.Data, err
	}

	t.Run("missing object", func(t *testing.T) {
		_, err := s.GetRange(common.GetRangePrm{Address: oidtest.Address(), Length: 1})
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	})

	payload := objects[0].obj.Payload()

	var start, stop uint64 = 11, 100
	if uint64(len(payload)) < stop {
		panic("unexpected: invalid test object generated")
	}

	t.Run("regular", func(t *testing.T) {
		res, err := getRange(start, stop-start)
		require.NoError(t, err)
		require.Equal(t, payload[start:stop], res)
	})

	t.Run("without storage ID", func(t *testing.T) {
		res, err := s.GetRange(common.GetRangePrm{
			Address: objects[0].addr,
			Offset:  start,
			Length:  stop - start,
		})
		require.NoError(t, err)
		require.Equal(t, payload[start:stop], res.Data)
	})

	t.Run("offset > len(payload)", func(t *testing.T) {
		_, err := getRange(uint64(len(payload)+10), 10)
		require.ErrorIs(t, err, apistatus.ErrObjectOutOfRange)
	})

	t.Run("offset + length > len(payload)", func(t *testing.T) {
		_, err := getRange(10, uint64(len(payload)))
		require.ErrorIs(t, err, apistatus.ErrObjectOutOfRange)
	})

	t.Run("length is negative when converted to int64", func(t *testing.T) {
		_, err := getRange(0, 1<<63)
		require.ErrorIs(t, err, apistatus.ErrObjectOutOfRange)
	})

	t.Run("offset + length overflow uint64", func(t *testing.T) {
		_, err := getRange(10, math.MaxUint64-2)
		require.ErrorIs(t, err, apistatus.ErrObjectOutOfRange)
	})
}
