package blobovniczatree

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"go.uber.org/zap"
)

// Open opens blobovnicza tree.
func (b *Blobovniczas) Open(readOnly bool) error {
	b.readOnly = readOnly
	return nil
}

// Init initializes blobovnicza tree: the first leaf of the arena which is
// not full yet becomes active.
func (b *Blobovniczas) Init() error {
	b.log.Debug("initializing Blobovnicza's",
		zap.Uint64("leaves", b.leaves),
		zap.Bool("read-only", b.readOnly),
	)

	if b.readOnly {
		b.log.Debug("read-only mode, skip blobovniczas initialization...")
		return nil
	}

	b.activeMtx.Lock()
	defer b.activeMtx.Unlock()

	for ind := uint64(0); ind < b.leaves; ind++ {
		p := b.leafPath(ind)

		var full bool

		err := b.withOpenedLeaf(p, func(blz *blobovnicza.Blobovnicza) error {
			full = blz.IsFull()
			return nil
		})
		if err != nil && !errors.Is(err, errLeafMissing) {
			return fmt.Errorf("could not check blobovnicza %s: %w", p, err)
		}

		if !full {
			return b.activate(ind)
		}
	}

	b.log.Info("all blobovniczas are full")

	b.active = activeLeaf{ind: b.leaves}

	return nil
}

// withOpenedLeaf is withLeaf for callers holding activeMtx.
func (b *Blobovniczas) withOpenedLeaf(p string, f func(*blobovnicza.Blobovnicza) error) error {
	b.openedMtx.Lock()
	defer b.openedMtx.Unlock()

	blz, ok := b.opened.Get(p)
	if !ok {
		var err error

		blz, err = b.openBlobovnicza(p, false)
		if err != nil {
			return err
		}

		b.opened.Add(p, blz)
	}

	return f(blz)
}

// Close closes all opened blobovniczas.
func (b *Blobovniczas) Close() error {
	b.activeMtx.Lock()
	defer b.activeMtx.Unlock()

	b.openedMtx.Lock()
	defer b.openedMtx.Unlock()

	if b.active.blz != nil {
		if err := b.active.blz.Close(); err != nil {
			b.log.Debug("could not close active blobovnicza",
				zap.String("path", b.active.path),
				zap.Error(err),
			)
		}
	}

	b.active = activeLeaf{}
	b.activePath.Store("")

	// eviction callback closes the leaves
	b.opened.Purge()

	return nil
}
