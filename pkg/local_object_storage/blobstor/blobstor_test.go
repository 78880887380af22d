package blobstor

import (
	"path/filepath"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/blobovniczatree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const smallSizeLimit = 8 * 1024

func defaultStorages(t *testing.T, dir string, smallSizeLimit uint64) []SubStorage {
	return []SubStorage{
		{
			Storage: blobovniczatree.NewBlobovniczaTree(
				blobovniczatree.WithLogger(zaptest.NewLogger(t)),
				blobovniczatree.WithRootPath(filepath.Join(dir, "blobovniczas")),
				blobovniczatree.WithBlobovniczaShallowWidth(1),
				blobovniczatree.WithBlobovniczaShallowDepth(1),
				blobovniczatree.WithObjectSizeLimit(smallSizeLimit)),
			Policy: SmallObjectPolicy(smallSizeLimit),
		},
		{
			Storage: fstree.New(
				fstree.WithLogger(zaptest.NewLogger(t)),
				fstree.WithPath(dir)),
		},
	}
}

func newTestBlobStor(t *testing.T, opts ...Option) *BlobStor {
	bs := New(append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithStorages(defaultStorages(t, t.TempDir(), smallSizeLimit)),
	}, opts...)...)

	require.NoError(t, bs.Open(false))
	require.NoError(t, bs.Init())
	t.Cleanup(func() { _ = bs.Close() })

	return bs
}

func TestTierSelection(t *testing.T) {
	bs := newTestBlobStor(t)

	small := objecttest.ObjectWithPayload(cidtest.ID(), objecttest.RandomPayload(1024))
	big := objecttest.ObjectWithPayload(cidtest.ID(), objecttest.RandomPayload(2*smallSizeLimit))

	resSmall, err := bs.Put(common.PutPrm{Object: small})
	require.NoError(t, err)
	require.Equal(t, []byte("0/0"), resSmall.StorageID)

	resBig, err := bs.Put(common.PutPrm{Object: big})
	require.NoError(t, err)
	require.NotNil(t, resBig.StorageID)
	require.Empty(t, resBig.StorageID)

	for _, tc := range []struct {
		obj *object.Object
		id  []byte
	}{
		{small, resSmall.StorageID},
		{big, resBig.StorageID},
	} {
		addr := tc.obj.Address()

		// with storage ID
		res, err := bs.Get(common.GetPrm{Address: addr, StorageID: tc.id})
		require.NoError(t, err)
		require.Equal(t, tc.obj.Marshal(), res.Object.Marshal())

		// without storage ID
		res, err = bs.Get(common.GetPrm{Address: addr})
		require.NoError(t, err)
		require.Equal(t, tc.obj.Marshal(), res.Object.Marshal())

		rng, err := bs.GetRange(common.GetRangePrm{Address: addr, Offset: 1, Length: 10})
		require.NoError(t, err)
		require.Equal(t, tc.obj.Payload()[1:11], rng.Data)

		exists, err := bs.Exists(common.ExistsPrm{Address: addr})
		require.NoError(t, err)
		require.True(t, exists.Exists)
	}

	// objects are stored in the tier chosen by the ID
	_, err = bs.Get(common.GetPrm{Address: small.Address(), StorageID: resBig.StorageID})
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	_, err = bs.Get(common.GetPrm{Address: big.Address(), StorageID: resSmall.StorageID})
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

	_, err = bs.Delete(common.DeletePrm{Address: small.Address()})
	require.NoError(t, err)
	_, err = bs.Delete(common.DeletePrm{Address: big.Address(), StorageID: resBig.StorageID})
	require.NoError(t, err)

	for _, obj := range []*object.Object{small, big} {
		_, err = bs.Get(common.GetPrm{Address: obj.Address()})
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

		_, err = bs.Delete(common.DeletePrm{Address: obj.Address()})
		require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

		exists, err := bs.Exists(common.ExistsPrm{Address: obj.Address()})
		require.NoError(t, err)
		require.False(t, exists.Exists)
	}
}

func TestCompression(t *testing.T) {
	const contentType = "video/mpeg"

	bs := newTestBlobStor(t,
		WithCompressObjects(true),
		WithUncompressableContentTypes([]string{"video/*"}))

	// zeroes compress well, so compressed object goes to the small tier
	compressible := objecttest.ObjectWithPayload(cidtest.ID(), make([]byte, 4*smallSizeLimit))

	incompressible := objecttest.ObjectWithPayload(cidtest.ID(), make([]byte, 4*smallSizeLimit))
	objecttest.AddAttribute(incompressible, object.AttributeContentType, contentType)

	res, err := bs.Put(common.PutPrm{Object: compressible})
	require.NoError(t, err)
	require.NotEmpty(t, res.StorageID)

	got, err := bs.Get(common.GetPrm{Address: compressible.Address(), StorageID: res.StorageID})
	require.NoError(t, err)
	require.Equal(t, compressible.Marshal(), got.Object.Marshal())

	res, err = bs.Put(common.PutPrm{Object: incompressible})
	require.NoError(t, err)
	require.Empty(t, res.StorageID)

	got, err = bs.Get(common.GetPrm{Address: incompressible.Address(), StorageID: res.StorageID})
	require.NoError(t, err)
	require.Equal(t, incompressible.Marshal(), got.Object.Marshal())
}

func TestIterate(t *testing.T) {
	bs := newTestBlobStor(t)

	stored := make(map[string][]byte)
	for _, sz := range []int{100, 200, 2 * smallSizeLimit, 3 * smallSizeLimit} {
		obj := objecttest.ObjectWithPayload(cidtest.ID(), objecttest.RandomPayload(sz))
		_, err := bs.Put(common.PutPrm{Object: obj})
		require.NoError(t, err)

		stored[obj.Address().EncodeToString()] = obj.Marshal()
	}

	seen := make(map[string][]byte)
	err := IterateBinaryObjects(bs, func(addr oid.Address, data []byte, _ []byte) error {
		seen[addr.EncodeToString()] = data
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, stored, seen)

	t.Run("stop in the first tier", func(t *testing.T) {
		var count int
		_, err := bs.Iterate(common.IteratePrm{
			Handler: func(common.IterationElement) error {
				count++
				return common.ErrStop
			},
		})
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}

func TestMode(t *testing.T) {
	bs := newTestBlobStor(t)

	obj := objecttest.Object()
	_, err := bs.Put(common.PutPrm{Object: obj})
	require.NoError(t, err)

	require.NoError(t, bs.SetMode(mode.ReadOnly))
	require.Equal(t, mode.ReadOnly, bs.Mode())

	_, err = bs.Put(common.PutPrm{Object: objecttest.Object()})
	require.ErrorIs(t, err, common.ErrReadOnly)

	_, err = bs.Delete(common.DeletePrm{Address: obj.Address()})
	require.ErrorIs(t, err, common.ErrReadOnly)

	_, err = bs.Get(common.GetPrm{Address: obj.Address()})
	require.NoError(t, err)

	require.NoError(t, bs.SetMode(mode.ReadWrite))

	_, err = bs.Delete(common.DeletePrm{Address: obj.Address()})
	require.NoError(t, err)

	_, err = bs.Get(common.GetPrm{Address: oidtest.Address()})
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
}

func TestDumpInfo(t *testing.T) {
	dir := t.TempDir()
	bs := New(WithStorages(defaultStorages(t, dir, smallSizeLimit)))

	info := bs.DumpInfo()
	require.Len(t, info.SubStorages, 2)
	require.Equal(t, blobovniczatree.Type, info.SubStorages[0].Type)
	require.Equal(t, filepath.Join(dir, "blobovniczas"), info.SubStorages[0].Path)
	require.Equal(t, fstree.Type, info.SubStorages[1].Type)
	require.Equal(t, dir, info.SubStorages[1].Path)
}
