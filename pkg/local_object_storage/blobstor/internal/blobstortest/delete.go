package blobstortest

import (
	"testing"

	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/stretchr/testify/require"
)

// TestDelete checks Delete and its effect on other operations.
func TestDelete(t *testing.T, cons Constructor, min, max uint64) {
	s := cons(t)
	require.NoError(t, s.Open(false))
	require.NoError(t, s.Init())
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	objects := prepare(t, 4, s, min, max)

	t.Run("delete non-existent", func(t *testing.T) {
		var prm common.DeletePrm
		prm.Address = oidtest.Address()

		_, err := s.Delete(prm)
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	})

	t.Run("with storage ID", func(t *testing.T) {
		var prm common.DeletePrm
		prm.Address = objects[0].addr
		prm.StorageID = objects[0].storageID

		_, err := s.Delete(prm)
		require.NoError(t, err)

		t.Run("exists fail", func(t *testing.T) {
			res, err := s.Exists(common.ExistsPrm{Address: objects[0].addr})
			require.NoError(t, err)
			require.False(t, res.Exists)
		})
		t.Run("get fail", func(t *testing.T) {
			_, err := s.Get(common.GetPrm{Address: objects[0].addr})
			require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
		})
		t.Run("getrange fail", func(t *testing.T) {
			_, err := s.GetRange(common.GetRangePrm{Address: objects[0].addr, Length: 1})
			require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
		})
	})
	t.Run("without storage ID", func(t *testing.T) {
		var prm common.DeletePrm
		prm.Address = objects[1].addr

		_, err := s.Delete(prm)
		require.NoError(t, err)
	})

	t.Run("delete twice", func(t *testing.T) {
		var prm common.DeletePrm
		prm.Address = objects[2].addr
		prm.StorageID = objects[2].storageID

		_, err := s.Delete(prm)
		require.NoError(t, err)

		_, err = s.Delete(prm)
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	})

	t.Run("non-deleted object is still available", func(t *testing.T) {
		var prm common.GetPrm
		prm.Address = objects[3].addr
		prm.Raw = true

		res, err := s.Get(prm)
		require.NoError(t, err)
		require.Equal(t, objects[3].raw, res.RawData)
	})
}
