// Package blobstortest contains a test suite shared by all common.Storage
// implementations.
package blobstortest

import (
	"math/rand"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/stretchr/testify/require"
)

// Constructor constructs blobstor component.
// Each call must create a component using different file-system path.
type Constructor = func(t *testing.T) common.Storage

// objectDesc is a helper structure to avoid multiple `Marshal` invokes during tests.
type objectDesc struct {
	obj       *object.Object
	addr      oid.Address
	raw       []byte
	storageID []byte
}

// TestAll runs the whole suite. Generated objects have encoded sizes
// between min and max.
func TestAll(t *testing.T, cons Constructor, min, max uint64) {
	t.Run("get", func(t *testing.T) {
		TestGet(t, cons, min, max)
	})
	t.Run("get range", func(t *testing.T) {
		TestGetRange(t, cons, min, max)
	})
	t.Run("delete", func(t *testing.T) {
		TestDelete(t, cons, min, max)
	})
	t.Run("exists", func(t *testing.T) {
		TestExists(t, cons, min, max)
	})
	t.Run("iterate", func(t *testing.T) {
		TestIterate(t, cons, min, max)
	})
}

// TestInfo checks storage type and path.
func TestInfo(t *testing.T, cons Constructor, expectedType string, expectedPath string) {
	s := cons(t)
	require.Equal(t, expectedType, s.Type())
	require.Equal(t, expectedPath, s.Path())
}

func prepare(t *testing.T, count int, s common.Storage, min, max uint64) []objectDesc {
	objects := make([]objectDesc, count)

	for i := range objects {
		objects[i].obj = NewObject(min + uint64(rand.Intn(int(max-min+1)))) // not too large
		objects[i].addr = objects[i].obj.Address()
		objects[i].raw = objects[i].obj.Marshal()
	}

	for i := range objects {
		var prm common.PutPrm
		prm.Address = objects[i].addr
		prm.Object = objects[i].obj
		prm.RawData = objects[i].raw

		putRes, err := s.Put(prm)
		require.NoError(t, err)

		objects[i].storageID = putRes.StorageID
	}

	return objects
}

// NewObject creates a regular object of specified encoded size with
// a random payload.
func NewObject(sz uint64) *object.Object {
	obj := objecttest.ObjectWithPayload(cidtest.ID(), objecttest.RandomPayload(int(sz)))

	// fit the binary size to the required
	if ln := uint64(len(obj.Marshal())); ln > sz {
		obj = objecttest.ObjectWithPayload(obj.Address().Container(), obj.Payload()[:sz-(ln-sz)])
	}

	return obj
}
