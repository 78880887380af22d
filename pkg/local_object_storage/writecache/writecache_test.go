package writecache

import (
	"bytes"
	"path/filepath"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/blobovniczatree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testSmallObjectSize = 4 << 10
	testMaxObjectSize   = 32 << 10
)

type env struct {
	dir string
	bs  *blobstor.BlobStor
	mb  *meta.DB
}

func newEnv(t *testing.T) *env {
	dir := t.TempDir()

	bs := blobstor.New(
		blobstor.WithLogger(zaptest.NewLogger(t)),
		blobstor.WithStorages([]blobstor.SubStorage{
			{
				Storage: blobovniczatree.NewBlobovniczaTree(
					blobovniczatree.WithLogger(zaptest.NewLogger(t)),
					blobovniczatree.WithRootPath(filepath.Join(dir, "blob", "blobovniczas")),
					blobovniczatree.WithBlobovniczaShallowWidth(1),
					blobovniczatree.WithBlobovniczaShallowDepth(1),
					blobovniczatree.WithObjectSizeLimit(testSmallObjectSize)),
				Policy: blobstor.SmallObjectPolicy(testSmallObjectSize),
			},
			{
				Storage: fstree.New(
					fstree.WithLogger(zaptest.NewLogger(t)),
					fstree.WithPath(filepath.Join(dir, "blob"))),
			},
		}))
	require.NoError(t, bs.Open(false))
	require.NoError(t, bs.Init())
	t.Cleanup(func() { _ = bs.Close() })

	mb := meta.New(
		meta.WithLogger(zaptest.NewLogger(t)),
		meta.WithPath(filepath.Join(dir, "meta")),
		meta.WithPermissions(0600))
	require.NoError(t, mb.Open(false))
	require.NoError(t, mb.Init())
	t.Cleanup(func() { _ = mb.Close() })

	return &env{dir: dir, bs: bs, mb: mb}
}

// newCache opens write-cache on top of the env storages. Background
// flushing is started only if runLoop is set.
func (e *env) newCache(t *testing.T, runLoop bool, opts ...Option) *cache {
	c := New(append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithPath(filepath.Join(e.dir, "wc")),
		WithBlobstor(e.bs),
		WithMetabase(e.mb),
		WithSmallObjectSize(testSmallObjectSize),
		WithMaxObjectSize(testMaxObjectSize),
		WithFlushWorkersCount(2),
	}, opts...)...).(*cache)

	require.NoError(t, c.Open(false))
	if runLoop {
		require.NoError(t, c.Init())
	} else {
		require.NoError(t, c.fsTree.Init())
	}
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func newObject(payloadSize int) *object.Object {
	return objecttest.ObjectWithPayload(cidtest.ID(), objecttest.RandomPayload(payloadSize))
}

func putObject(t *testing.T, c Cache, payloadSize int) *object.Object {
	obj := newObject(payloadSize)
	require.NoError(t, c.Put(obj.Address(), obj, nil))
	return obj
}

func TestCache_PutGet(t *testing.T) {
	c := newEnv(t).newCache(t, false)

	small := putObject(t, c, 1024)
	big := putObject(t, c, 8*1024)

	c.mtx.RLock()
	require.Len(t, c.mem, 1)
	c.mtx.RUnlock()
	require.EqualValues(t, 1, c.objCounters.FS())

	for _, obj := range []*object.Object{small, big} {
		res, err := c.Get(obj.Address())
		require.NoError(t, err)
		require.Equal(t, obj.Marshal(), res.Marshal())

		hdr, err := c.Head(obj.Address())
		require.NoError(t, err)
		require.Equal(t, obj.CutPayload().Marshal(), hdr.Marshal())
	}

	t.Run("too big", func(t *testing.T) {
		obj := newObject(2 * testMaxObjectSize)
		require.ErrorIs(t, c.Put(obj.Address(), obj, nil), ErrBigObject)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := c.Get(oidtest.Address())
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	})
}

func TestCache_MemoryLimit(t *testing.T) {
	c := newEnv(t).newCache(t, false, WithMaxMemSize(0))

	obj := putObject(t, c, 1024)

	c.mtx.RLock()
	require.Empty(t, c.mem)
	c.mtx.RUnlock()
	require.EqualValues(t, 1, c.objCounters.DB())

	res, err := c.Get(obj.Address())
	require.NoError(t, err)
	require.Equal(t, obj.Marshal(), res.Marshal())
}

func TestCache_OutOfSpace(t *testing.T) {
	c := newEnv(t).newCache(t, false,
		WithMaxMemSize(0),
		WithMaxCacheSize(testSmallObjectSize))

	putObject(t, c, 1024)

	obj := newObject(1024)
	require.ErrorIs(t, c.Put(obj.Address(), obj, nil), ErrOutOfSpace)
}

func TestCache_PersistMemory(t *testing.T) {
	c := newEnv(t).newCache(t, false)

	objs := []*object.Object{
		putObject(t, c, 1024),
		putObject(t, c, 2048),
	}

	require.NoError(t, c.SetMode(mode.ReadOnly))

	c.mtx.RLock()
	require.Empty(t, c.mem)
	require.Zero(t, c.curMemSize)
	c.mtx.RUnlock()
	require.EqualValues(t, len(objs), c.objCounters.DB())

	for _, obj := range objs {
		_, err := c.Get(obj.Address())
		require.NoError(t, err)
	}

	obj := newObject(1024)
	require.ErrorIs(t, c.Put(obj.Address(), obj, nil), ErrReadOnly)
}

func TestCache_Delete(t *testing.T) {
	c := newEnv(t).newCache(t, false, WithMaxMemSize(2048))

	objs := []*object.Object{
		putObject(t, c, 1024), // memory
		putObject(t, c, 1024), // database
		putObject(t, c, 8*1024),
	}

	for _, obj := range objs {
		require.NoError(t, c.Delete(obj.Address()))

		_, err := c.Get(obj.Address())
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	}

	require.Zero(t, c.objCounters.DB())
	require.Zero(t, c.objCounters.FS())

	require.ErrorIs(t, c.Delete(oidtest.Address()), apistatus.ErrObjectNotFound)

	require.NoError(t, c.SetMode(mode.ReadOnly))
	require.ErrorIs(t, c.Delete(oidtest.Address()), ErrReadOnly)
}

func TestCache_Iterate(t *testing.T) {
	c := newEnv(t).newCache(t, false, WithMaxMemSize(2048))

	objs := map[string][]byte{}
	for _, sz := range []int{1024, 1024, 8 * 1024} {
		obj := putObject(t, c, sz)
		objs[obj.Address().EncodeToString()] = obj.Marshal()
	}

	got := map[string][]byte{}
	require.NoError(t, c.Iterate(IterationPrm{
		Handler: func(addr oid.Address, data []byte) error {
			got[addr.EncodeToString()] = bytes.Clone(data)
			return nil
		},
	}))
	require.Equal(t, objs, got)

	var n int
	require.NoError(t, c.Iterate(IterationPrm{
		Handler: func(oid.Address, []byte) error {
			n++
			return common.ErrStop
		},
	}))
	require.Equal(t, 1, n)
}

func TestCache_InitReadOnly(t *testing.T) {
	e := newEnv(t)

	wc := New(
		WithLogger(zaptest.NewLogger(t)),
		WithPath(filepath.Join(e.dir, "wc")),
		WithBlobstor(e.bs),
		WithMetabase(e.mb),
	)

	// open in rw mode first to create underlying BoltDB with some object
	// (otherwise 'bad file descriptor' error on Open occurs)
	require.NoError(t, wc.Open(false))
	require.NoError(t, wc.Init())

	obj := newObject(1024)
	require.NoError(t, wc.Put(obj.Address(), obj, nil))
	require.NoError(t, wc.Close())

	// try Init in read-only mode
	require.NoError(t, wc.Open(true))
	t.Cleanup(func() { _ = wc.Close() })
	require.NoError(t, wc.Init())

	res, err := wc.Get(obj.Address())
	require.NoError(t, err)
	require.Equal(t, obj.Marshal(), res.Marshal())
}

func TestCache_PersistDeleted(t *testing.T) {
	c := newEnv(t).newCache(t, false)

	obj := putObject(t, c, 1024)

	c.mtx.RLock()
	snapshot := []objectInfo{c.mem[obj.Address().EncodeToString()]}
	c.mtx.RUnlock()

	// deletion lands between the memory snapshot and the database write
	require.NoError(t, c.Delete(obj.Address()))
	require.Empty(t, c.persistSmallObjects(snapshot))

	_, err := c.Get(obj.Address())
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	require.Zero(t, c.objCounters.DB())
}
