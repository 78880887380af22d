package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestPersistentStorage_Uint64(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	key := []byte("epoch")

	s, err := NewPersistentStorage(path)
	require.NoError(t, err)

	v, err := s.Uint64(key)
	require.NoError(t, err)
	require.Zero(t, v)

	require.NoError(t, s.SetUint64(key, 42))

	v, err = s.Uint64(key)
	require.NoError(t, err)
	require.EqualValues(t, 42, v)

	require.NoError(t, s.Close())

	t.Run("reopen", func(t *testing.T) {
		s, err := NewPersistentStorage(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		v, err := s.Uint64(key)
		require.NoError(t, err)
		require.EqualValues(t, 42, v)

		require.NoError(t, s.Delete(key))
		require.NoError(t, s.Delete([]byte("missing")))

		v, err = s.Uint64(key)
		require.NoError(t, err)
		require.Zero(t, v)
	})
}

func TestPersistentStorage_InvalidValue(t *testing.T) {
	s, err := NewPersistentStorage(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(stateBucket)
		if err != nil {
			return err
		}

		return b.Put([]byte("short"), []byte{1, 2, 3})
	}))

	_, err = s.Uint64([]byte("short"))
	require.Error(t, err)
}
