package blobovniczatree

import (
	"errors"
	"sync"
	"testing"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/internal/blobstortest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestTree(t *testing.T, dir string, width, depth, szLim uint64, opts ...Option) *Blobovniczas {
	b := NewBlobovniczaTree(append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithObjectSizeLimit(szLim),
		WithBlobovniczaShallowWidth(width),
		WithBlobovniczaShallowDepth(depth),
		WithRootPath(dir),
		WithBlobovniczaSize(szLim),
	}, opts...)...)

	require.NoError(t, b.Open(false))
	require.NoError(t, b.Init())

	return b
}

func TestLeafPath(t *testing.T) {
	b := NewBlobovniczaTree(WithBlobovniczaShallowWidth(16), WithBlobovniczaShallowDepth(2))

	require.EqualValues(t, 16*16*16, b.leaves)
	require.Equal(t, "0/0/0", b.leafPath(0))
	require.Equal(t, "0/0/f", b.leafPath(15))
	require.Equal(t, "0/1/0", b.leafPath(16))
	require.Equal(t, "f/f/f", b.leafPath(b.leaves-1))

	for _, ind := range []uint64{0, 1, 17, 255, 256, 4095} {
		got, ok := b.leafIndex(b.leafPath(ind))
		require.True(t, ok)
		require.Equal(t, ind, got)
	}

	for _, p := range []string{"", "0/0", "0/0/0/0", "0/0/g", "0/10/0"} {
		_, ok := b.leafIndex(p)
		require.False(t, ok, p)
	}
}

func TestBlobovniczas(t *testing.T) {
	var width, depth uint64 = 2, 2

	// sizeLim must be big enough, to hold at least multiple pages.
	// 32 KiB is the initial size after all by-size buckets are created.
	var szLim uint64 = 32*1024 + 1

	b := newTestTree(t, t.TempDir(), width, depth, szLim)
	t.Cleanup(func() { _ = b.Close() })

	objSz := szLim / 2

	addrList := make([]oid.Address, 0)
	minFitObjNum := width * depth * szLim / objSz

	for i := uint64(0); i < minFitObjNum; i++ {
		obj := blobstortest.NewObject(objSz)
		addr := obj.Address()

		addrList = append(addrList, addr)

		d := obj.Marshal()

		// save object in blobovnicza
		pRes, err := b.Put(common.PutPrm{Address: addr, RawData: d})
		require.NoError(t, err, i)

		// get w/ blobovnicza ID
		var prm common.GetPrm
		prm.StorageID = pRes.StorageID
		prm.Address = addr

		res, err := b.Get(prm)
		require.NoError(t, err)
		require.Equal(t, d, res.RawData)

		// get w/o blobovnicza ID
		prm.StorageID = nil

		res, err = b.Get(prm)
		require.NoError(t, err)
		require.Equal(t, d, res.RawData)

		// get range w/ blobovnicza ID
		var rngPrm common.GetRangePrm
		rngPrm.StorageID = pRes.StorageID
		rngPrm.Address = addr

		payload := obj.Payload()
		pSize := uint64(len(obj.Payload()))

		rngPrm.Offset, rngPrm.Length = pSize/3, 2*pSize/3

		rngRes, err := b.GetRange(rngPrm)
		require.NoError(t, err)
		require.Equal(t, payload[rngPrm.Offset:rngPrm.Offset+rngPrm.Length], rngRes.Data)

		// get range w/o blobovnicza ID
		rngPrm.StorageID = nil

		rngRes, err = b.GetRange(rngPrm)
		require.NoError(t, err)
		require.Equal(t, payload[rngPrm.Offset:rngPrm.Offset+rngPrm.Length], rngRes.Data)
	}

	var dPrm common.DeletePrm
	var gPrm common.GetPrm

	for i := range addrList {
		dPrm.Address = addrList[i]

		_, err := b.Delete(dPrm)
		require.NoError(t, err)

		gPrm.Address = addrList[i]

		_, err = b.Get(gPrm)
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

		_, err = b.Delete(dPrm)
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	}
}

func TestSingleDir(t *testing.T) {
	tree := NewBlobovniczaTree(
		WithRootPath(t.TempDir()),
		WithBlobovniczaShallowDepth(0),
		WithBlobovniczaShallowWidth(10),
	)

	require.NoError(t, tree.Open(false))
	defer func() { _ = tree.Close() }()
	require.NoError(t, tree.Init())

	obj := blobstortest.NewObject(1024)

	putPrm := common.PutPrm{
		Address: obj.Address(),
		RawData: obj.Marshal(),
	}

	res, err := tree.Put(putPrm)
	require.NoError(t, err)
	require.Equal(t, []byte("0"), res.StorageID)

	_, err = tree.Get(common.GetPrm{
		Address: putPrm.Address,
	})
	require.NoError(t, err)
}

func TestRotation(t *testing.T) {
	const (
		width   = 2
		depth   = 1
		objSize = 10 << 10
		// every leaf holds exactly 3 objects
		leafLimit = 3 * objSize
	)

	dir := t.TempDir()
	b := newTestTree(t, dir, width, depth, leafLimit)

	data := make([]byte, objSize)
	ids := make([]string, 0, 12)

	for {
		res, err := b.Put(common.PutPrm{Address: oidtest.Address(), RawData: data})
		if errors.Is(err, common.ErrNoSpace) {
			break
		}

		require.NoError(t, err)
		ids = append(ids, string(res.StorageID))
	}

	require.Equal(t, []string{
		"0/0", "0/0", "0/0",
		"0/1", "0/1", "0/1",
		"1/0", "1/0", "1/0",
		"1/1", "1/1", "1/1",
	}, ids)

	_, err := b.Put(common.PutPrm{Address: oidtest.Address(), RawData: data})
	require.ErrorIs(t, err, common.ErrNoSpace)

	require.NoError(t, b.Close())

	t.Run("reopen keeps no space", func(t *testing.T) {
		b := newTestTree(t, dir, width, depth, leafLimit)
		t.Cleanup(func() { _ = b.Close() })

		_, err := b.Put(common.PutPrm{Address: oidtest.Address(), RawData: data})
		require.ErrorIs(t, err, common.ErrNoSpace)
	})
}

func TestReopenContinuesActive(t *testing.T) {
	const objSize = 10 << 10

	dir := t.TempDir()
	b := newTestTree(t, dir, 2, 0, 2*objSize)

	data := make([]byte, objSize)

	for i := 0; i < 3; i++ {
		_, err := b.Put(common.PutPrm{Address: oidtest.Address(), RawData: data})
		require.NoError(t, err)
	}

	require.NoError(t, b.Close())

	b = newTestTree(t, dir, 2, 0, 2*objSize)
	t.Cleanup(func() { _ = b.Close() })

	res, err := b.Put(common.PutPrm{Address: oidtest.Address(), RawData: data})
	require.NoError(t, err)
	require.Equal(t, []byte("1"), res.StorageID)
}

func TestOpenedCacheEviction(t *testing.T) {
	const objSize = 1 << 10

	b := newTestTree(t, t.TempDir(), 8, 0, objSize, WithOpenedCacheSize(2))
	t.Cleanup(func() { _ = b.Close() })

	data := make([]byte, objSize)
	stored := make(map[oid.Address][]byte)

	for i := 0; i < 8; i++ {
		addr := oidtest.Address()

		res, err := b.Put(common.PutPrm{Address: addr, RawData: data})
		require.NoError(t, err)

		stored[addr] = res.StorageID
	}

	require.LessOrEqual(t, b.opened.Len(), 2)

	for addr, id := range stored {
		res, err := b.Get(common.GetPrm{Address: addr, StorageID: id, Raw: true})
		require.NoError(t, err)
		require.Equal(t, data, res.RawData)

		res, err = b.Get(common.GetPrm{Address: addr, Raw: true})
		require.NoError(t, err)
		require.Equal(t, data, res.RawData)
	}
}

func TestConcurrentPut(t *testing.T) {
	const (
		objSize  = 4 << 10
		routines = 10
		perR     = 20
	)

	b := newTestTree(t, t.TempDir(), 4, 1, 16*objSize, WithOpenedCacheSize(3))
	t.Cleanup(func() { _ = b.Close() })

	var (
		wg  sync.WaitGroup
		mtx sync.Mutex

		stored = make(map[oid.Address][]byte)
	)

	for i := 0; i < routines; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < perR; j++ {
				addr := oidtest.Address()

				res, err := b.Put(common.PutPrm{Address: addr, RawData: make([]byte, objSize)})
				if err != nil {
					t.Error(err)
					return
				}

				mtx.Lock()
				stored[addr] = res.StorageID
				mtx.Unlock()

				if _, err := b.Get(common.GetPrm{Address: addr, Raw: true}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	wg.Wait()

	require.Len(t, stored, routines*perR)

	for addr, id := range stored {
		res, err := b.Exists(common.ExistsPrm{Address: addr, StorageID: id})
		require.NoError(t, err)
		require.True(t, res.Exists)
	}
}
