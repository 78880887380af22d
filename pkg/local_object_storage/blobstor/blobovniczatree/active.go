package blobovniczatree

import (
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.uber.org/zap"
)

// activate makes the ind-th leaf active. The previous active leaf is moved
// to the opened cache. Must be called with activeMtx held.
func (b *Blobovniczas) activate(ind uint64) error {
	p := b.leafPath(ind)

	b.openedMtx.Lock()
	defer b.openedMtx.Unlock()

	// closes the cached instance, the active one is opened separately
	b.opened.Remove(p)

	blz, err := b.openBlobovnicza(p, true)
	if err != nil {
		return err
	}

	if prev := b.active; prev.blz != nil {
		b.opened.Add(prev.path, prev.blz)
	}

	b.active = activeLeaf{
		ind:  ind,
		path: p,
		blz:  blz,
	}
	b.activePath.Store(p)

	b.log.Debug("blobovnicza successfully activated",
		zap.String("path", p),
	)

	return nil
}

// advance activates the leaf following the full one with index old. Does
// nothing if the active leaf has already been changed concurrently.
// Returns common.ErrNoSpace if old is the last leaf of the arena.
func (b *Blobovniczas) advance(old uint64) error {
	b.activeMtx.Lock()
	defer b.activeMtx.Unlock()

	if b.active.ind != old {
		return nil
	}

	for next := old + 1; next < b.leaves; next++ {
		err := b.activate(next)
		if err != nil {
			return err
		}

		if !b.active.blz.IsFull() {
			return nil
		}
	}

	b.log.Info("all blobovniczas are full")

	b.moveActiveToCache()
	b.active = activeLeaf{ind: b.leaves}

	return common.ErrNoSpace
}

// getActive returns active leaf. ok is false if there is no space left.
// Must be called with activeMtx held for reading.
func (b *Blobovniczas) getActive() (activeLeaf, bool) {
	return b.active, b.active.blz != nil
}

func (b *Blobovniczas) moveActiveToCache() {
	b.openedMtx.Lock()
	defer b.openedMtx.Unlock()

	if b.active.blz != nil {
		b.opened.Add(b.active.path, b.active.blz)
	}

	b.activePath.Store("")
}
