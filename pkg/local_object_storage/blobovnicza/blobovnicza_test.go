package blobovnicza

import (
	"path/filepath"
	"sync"
	"testing"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/compression"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestBlobovnicza(t *testing.T, opts ...Option) *Blobovnicza {
	blz := New(append([]Option{
		WithPath(filepath.Join(t.TempDir(), "blz")),
		WithLogger(zaptest.NewLogger(t)),
	}, opts...)...)

	require.NoError(t, blz.Open())
	require.NoError(t, blz.Init())

	t.Cleanup(func() { _ = blz.Close() })

	return blz
}

func testPut(t *testing.T, blz *Blobovnicza, addr oid.Address, data []byte) error {
	var prm PutPrm
	prm.SetAddress(addr)
	prm.SetMarshaledObject(data)

	_, err := blz.Put(prm)

	return err
}

func testGet(t *testing.T, blz *Blobovnicza, addr oid.Address, expData []byte, expErr error) {
	var prm GetPrm
	prm.SetAddress(addr)

	res, err := blz.Get(prm)
	if expErr != nil {
		require.ErrorIs(t, err, expErr)
		return
	}

	require.NoError(t, err)
	require.Equal(t, expData, res.Object())
}

func TestBlobovnicza(t *testing.T) {
	const (
		sizeLim    = 256 * 1 << 10 // 256KB
		objSizeLim = sizeLim / 2
	)

	blz := newTestBlobovnicza(t,
		WithObjectSizeLimit(objSizeLim),
		WithFullSizeLimit(sizeLim),
	)

	// try to read non-existent address
	testGet(t, blz, oidtest.Address(), nil, apistatus.ErrObjectNotFound)

	filled := uint64(15 * 1 << 10)

	addr := oidtest.Address()
	data := objecttest.RandomPayload(int(filled))

	require.NoError(t, testPut(t, blz, addr, data))
	testGet(t, blz, addr, data, nil)
	require.Equal(t, filled, blz.FilledSize())

	var dPrm DeletePrm
	dPrm.SetAddress(addr)

	_, err := blz.Delete(dPrm)
	require.NoError(t, err)
	require.Zero(t, blz.FilledSize())

	// should return 404
	testGet(t, blz, addr, nil, apistatus.ErrObjectNotFound)

	_, err = blz.Delete(dPrm)
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

	// fill Blobovnicza fully
	for filled = 0; filled < sizeLim; filled += objSizeLim {
		require.NoError(t, testPut(t, blz, oidtest.Address(), make([]byte, objSizeLim)))
	}

	require.True(t, blz.IsFull())

	// from now objects should not be saved
	require.ErrorIs(t, testPut(t, blz, oidtest.Address(), make([]byte, 1024)), ErrFull)
}

func TestBlobovnicza_Limits(t *testing.T) {
	t.Run("too large", func(t *testing.T) {
		blz := newTestBlobovnicza(t, WithObjectSizeLimit(1024))

		require.ErrorIs(t, testPut(t, blz, oidtest.Address(), make([]byte, 1025)), ErrTooLarge)
		require.Zero(t, blz.FilledSize())

		require.NoError(t, testPut(t, blz, oidtest.Address(), make([]byte, 1024)))
	})

	t.Run("full is checked first", func(t *testing.T) {
		blz := newTestBlobovnicza(t, WithObjectSizeLimit(1024), WithFullSizeLimit(1000))

		require.NoError(t, testPut(t, blz, oidtest.Address(), make([]byte, 1000)))
		require.ErrorIs(t, testPut(t, blz, oidtest.Address(), make([]byte, 2048)), ErrFull)
	})

	t.Run("N+1 put", func(t *testing.T) {
		const objSize = 300

		blz := newTestBlobovnicza(t, WithFullSizeLimit(1000))

		var total uint64
		for total <= 1000 {
			require.NoError(t, testPut(t, blz, oidtest.Address(), make([]byte, objSize)))
			total += objSize
		}

		require.Equal(t, total, blz.FilledSize())
		require.ErrorIs(t, testPut(t, blz, oidtest.Address(), make([]byte, objSize)), ErrFull)
	})

	t.Run("repeated put", func(t *testing.T) {
		blz := newTestBlobovnicza(t)
		addr := oidtest.Address()

		require.NoError(t, testPut(t, blz, addr, make([]byte, 100)))
		require.NoError(t, testPut(t, blz, addr, make([]byte, 100)))
		require.EqualValues(t, 100, blz.FilledSize())
	})
}

func TestBlobovnicza_DeleteDecreasesFilled(t *testing.T) {
	blz := newTestBlobovnicza(t)

	sizes := []int{10, 1 << 10, 40 << 10, 100 << 10}
	addrs := make([]oid.Address, len(sizes))

	var total uint64
	for i, sz := range sizes {
		addrs[i] = oidtest.Address()
		require.NoError(t, testPut(t, blz, addrs[i], make([]byte, sz)))
		total += uint64(sz)
	}

	require.Equal(t, total, blz.FilledSize())

	for i, sz := range sizes {
		var prm DeletePrm
		prm.SetAddress(addrs[i])

		_, err := blz.Delete(prm)
		require.NoError(t, err)

		total -= uint64(sz)
		require.Equal(t, total, blz.FilledSize())
	}
}

func TestBlobovnicza_Concurrent(t *testing.T) {
	const (
		workers = 8
		perW    = 20
		objSize = 512
	)

	blz := newTestBlobovnicza(t)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < perW; j++ {
				addr := oidtest.Address()
				if err := testPut(t, blz, addr, make([]byte, objSize)); err != nil {
					t.Error(err)
					return
				}

				if j%2 == 0 {
					var prm DeletePrm
					prm.SetAddress(addr)

					if _, err := blz.Delete(prm); err != nil {
						t.Error(err)
						return
					}
				}
			}
		}()
	}

	wg.Wait()

	require.EqualValues(t, workers*perW/2*objSize, blz.FilledSize())
}

func TestBlobovnicza_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blz")

	blz := New(WithPath(path), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, blz.Open())
	require.NoError(t, blz.Init())

	addr := oidtest.Address()
	require.NoError(t, testPut(t, blz, addr, make([]byte, 1234)))
	require.NoError(t, blz.Close())

	blz = New(WithPath(path), WithReadOnly(true), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, blz.Open())
	require.NoError(t, blz.Init())

	t.Cleanup(func() { _ = blz.Close() })

	require.EqualValues(t, 1234, blz.FilledSize())
	testGet(t, blz, addr, make([]byte, 1234), nil)

	ok, err := blz.Exists(addr)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestBlobovnicza_GetRange(t *testing.T) {
	blz := newTestBlobovnicza(t)

	obj := objecttest.Object()
	objecttest.AddPayload(obj, 100)

	addr := obj.Address()
	require.NoError(t, testPut(t, blz, addr, obj.Marshal()))

	var prm GetRangePrm
	prm.SetAddress(addr)
	prm.SetRange(10, 20)

	res, err := blz.GetRange(prm)
	require.NoError(t, err)
	require.Equal(t, obj.Payload()[10:30], res.RangeData())

	prm.SetRange(90, 11)

	_, err = blz.GetRange(prm)
	require.ErrorIs(t, err, apistatus.ErrObjectOutOfRange)
}

func TestBlobovnicza_Compressed(t *testing.T) {
	cc := &compression.Config{Enabled: true}
	require.NoError(t, cc.Init())

	blz := newTestBlobovnicza(t, WithCompressor(cc))

	addr := oidtest.Address()
	data := make([]byte, 4096)

	require.NoError(t, testPut(t, blz, addr, cc.Compress(data)))
	require.Less(t, blz.FilledSize(), uint64(len(data)))

	testGet(t, blz, addr, data, nil)
}

func TestBlobovnicza_Iterate(t *testing.T) {
	blz := newTestBlobovnicza(t)

	exp := make(map[oid.Address][]byte)
	for i := 0; i < 10; i++ {
		addr := oidtest.Address()
		data := objecttest.RandomPayload(64 << (i % 5 * 2))

		require.NoError(t, testPut(t, blz, addr, data))
		exp[addr] = data
	}

	var prm IteratePrm
	prm.SetHandler(func(addr oid.Address, data []byte) error {
		require.Equal(t, exp[addr], data)
		delete(exp, addr)
		return nil
	})

	_, err := blz.Iterate(prm)
	require.NoError(t, err)
	require.Empty(t, exp)

	var n int
	require.NoError(t, IterateAddresses(blz, func(oid.Address) error {
		n++
		return ErrStopIteration
	}))
	require.Equal(t, 1, n)
}
