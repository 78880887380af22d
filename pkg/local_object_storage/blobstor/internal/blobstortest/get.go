package blobstortest

import (
	"testing"

	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/stretchr/testify/require"
)

// TestGet checks that stored objects are returned as they were put, with
// and without storage ID.
func TestGet(t *testing.T, cons Constructor, min, max uint64) {
	s := cons(t)
	require.NoError(t, s.Open(false))
	require.NoError(t, s.Init())
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	objects := prepare(t, 2, s, min, max)

	t.Run("missing object", func(t *testing.T) {
		_, err := s.Get(common.GetPrm{Address: oidtest.Address()})
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	})

	for i := range objects {
		var prm common.GetPrm
		prm.Address = objects[i].addr

		// without storage ID
		res, err := s.Get(prm)
		require.NoError(t, err)
		require.Equal(t, objects[i].obj.Marshal(), res.Object.Marshal())
		require.Equal(t, objects[i].raw, res.RawData)

		// with storage ID
		prm.StorageID = objects[i].storageID

		res, err = s.Get(prm)
		require.NoError(t, err)
		require.Equal(t, objects[i].raw, res.RawData)

		// raw
		prm.Raw = true

		res, err = s.Get(prm)
		require.NoError(t, err)
		require.Nil(t, res.Object)
		require.Equal(t, objects[i].raw, res.RawData)
	}
}

// TestExists checks Exists with and without storage ID.
func TestExists(t *testing.T, cons Constructor, min, max uint64) {
	s := cons(t)
	require.NoError(t, s.Open(false))
	require.NoError(t, s.Init())
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	objects := prepare(t, 1, s, min, max)

	t.Run("missing object", func(t *testing.T) {
		res, err := s.Exists(common.ExistsPrm{Address: oidtest.Address()})
		require.NoError(t, err)
		require.False(t, res.Exists)
	})

	t.Run("without storage ID", func(t *testing.T) {
		res, err := s.Exists(common.ExistsPrm{Address: objects[0].addr})
		require.NoError(t, err)
		require.True(t, res.Exists)
	})

	t.Run("with storage ID", func(t *testing.T) {
		res, err := s.Exists(common.ExistsPrm{
			Address:   objects[0].addr,
			StorageID: objects[0].storageID,
		})
		require.NoError(t, err)
		require.True(t, res.Exists)
	})
}
