package blobstor

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
)

// SetMode sets the blobstor mode of operation. Sub-storages are reopened
// if read-only flag changes.
func (b *BlobStor) SetMode(m mode.Mode) error {
	b.modeMtx.Lock()
	defer b.modeMtx.Unlock()

	if b.mode == m {
		return nil
	}

	if b.mode.ReadOnly() == m.ReadOnly() {
		b.mode = m
		return nil
	}

	err := b.closeLocked()
	if err == nil {
		if err = b.openLocked(m.ReadOnly()); err == nil {
			err = b.initLocked()
		}
	}

	if err != nil {
		return fmt.Errorf("can't set blobstor mode (old=%s, new=%s): %w", b.mode, m, err)
	}

	b.mode = m

	return nil
}

// Mode returns current blobstor mode.
func (b *BlobStor) Mode() mode.Mode {
	b.modeMtx.RLock()
	defer b.modeMtx.RUnlock()

	return b.mode
}
