package blobovniczatree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/nspcc-dev/hrw"
)

// Iterate iterates over all objects in b.
func (b *Blobovniczas) Iterate(prm common.IteratePrm) (common.IterateRes, error) {
	err := b.iterateBlobovniczas(prm.IgnoreErrors, func(p string, blz *blobovnicza.Blobovnicza) error {
		var subPrm blobovnicza.IteratePrm
		subPrm.SetHandler(func(addr oid.Address, data []byte) error {
			return prm.Handler(common.IterationElement{
				Address:    addr,
				ObjectData: data,
				StorageID:  []byte(p),
			})
		})

		if prm.IgnoreErrors {
			subPrm.IgnoreErrors()
		}

		_, err := blz.Iterate(subPrm)
		return err
	})
	if errors.Is(err, common.ErrStop) {
		err = nil
	}

	return common.IterateRes{}, err
}

// iterator over all created Blobovniczas in the arena order. Break on f's
// error return.
func (b *Blobovniczas) iterateBlobovniczas(ignoreErrors bool, f func(string, *blobovnicza.Blobovnicza) error) error {
	for ind := uint64(0); ind < b.leaves; ind++ {
		p := b.leafPath(ind)

		var fErr error

		err := b.withLeaf(p, func(blz *blobovnicza.Blobovnicza) error {
			fErr = f(p, blz)
			return nil
		})
		if err != nil {
			if errors.Is(err, errLeafMissing) {
				// leaves are created in the arena order
				return nil
			}

			if ignoreErrors {
				continue
			}

			return fmt.Errorf("could not open blobovnicza %s: %w", p, err)
		}

		if fErr != nil {
			return fErr
		}
	}

	return nil
}

// iterator over the paths of Blobovniczas sorted by weight.
func (b *Blobovniczas) iterateSortedLeaves(addr oid.Address, f func(string) (bool, error)) error {
	_, err := b.iterateSorted(
		addr.EncodeToString(),
		make([]string, 0, b.blzShallowDepth+1),
		b.blzShallowDepth,
		func(p []string) (bool, error) { return f(joinPath(p)) },
	)

	return err
}

// iterator over particular level of directories.
func (b *Blobovniczas) iterateSorted(addr string, curPath []string, execDepth uint64, f func([]string) (bool, error)) (bool, error) {
	indices := indexSlice(b.blzShallowWidth)

	hrw.SortSliceByValue(indices, addressHash(addr, joinPath(curPath)))

	exec := uint64(len(curPath)) == execDepth

	for i := range indices {
		if i == 0 {
			curPath = append(curPath, u64ToHexString(indices[i]))
		} else {
			curPath[len(curPath)-1] = u64ToHexString(indices[i])
		}

		if exec {
			if stop, err := f(curPath); err != nil {
				return false, err
			} else if stop {
				return true, nil
			}
		} else if stop, err := b.iterateSorted(addr, curPath, execDepth, f); err != nil {
			return false, err
		} else if stop {
			return true, nil
		}
	}

	return false, nil
}

func joinPath(p []string) string {
	return strings.Join(p, "/")
}

// makes slice of uint64 values from 0 to number-1.
func indexSlice(number uint64) []uint64 {
	s := make([]uint64, number)

	for i := range s {
		s[i] = uint64(i)
	}

	return s
}
