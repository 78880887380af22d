package blobstortest

import (
	"math/rand"
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/stretchr/testify/require"
)

// TestControl checks correctness of a read-only mode.
// cons must return a storage which is NOT opened.
func TestControl(t *testing.T, cons Constructor, min, max uint64) {
	s := cons(t)
	require.NoError(t, s.Open(false))
	require.NoError(t, s.Init())

	objects := prepare(t, 10, s, min, max)
	require.NoError(t, s.Close())

	require.NoError(t, s.Open(true))
	require.NoError(t, s.Init())
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	for i := range objects {
		var prm common.GetPrm
		prm.Address = objects[i].addr
		prm.StorageID = objects[i].storageID
		prm.Raw = true

		res, err := s.Get(prm)
		require.NoError(t, err)
		require.Equal(t, objects[i].raw, res.RawData)
	}

	t.Run("put fails", func(t *testing.T) {
		var prm common.PutPrm
		prm.Object = NewObject(min + uint64(rand.Intn(int(max-min+1))))
		prm.Address = prm.Object.Address()
		prm.RawData = prm.Object.Marshal()

		_, err := s.Put(prm)
		require.ErrorIs(t, err, common.ErrReadOnly)
	})
	t.Run("delete fails", func(t *testing.T) {
		var prm common.DeletePrm
		prm.Address = objects[0].addr
		prm.StorageID = objects[0].storageID

		_, err := s.Delete(prm)
		require.ErrorIs(t, err, common.ErrReadOnly)
	})
}
