package blobstor

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Open opens BlobStor.
func (b *BlobStor) Open(readOnly bool) error {
	b.log.Debug("opening...")

	b.modeMtx.Lock()
	defer b.modeMtx.Unlock()

	return b.openLocked(readOnly)
}

func (b *BlobStor) openLocked(readOnly bool) error {
	for i := range b.storage {
		err := b.storage[i].Storage.Open(readOnly)
		if err != nil {
			return fmt.Errorf("open %s sub-storage: %w", b.storage[i].Storage.Type(), err)
		}
	}

	if readOnly {
		b.mode = mode.ReadOnly
	} else {
		b.mode = mode.ReadWrite
	}

	return nil
}

// ErrInitBlobovniczas is returned when blobovnicza initialization fails.
var ErrInitBlobovniczas = errors.New("failure on blobovnicza initialization stage")

// Init initializes internal data structures and system resources.
//
// If BlobStor is already initialized, no action is taken.
//
// Returns wrapped ErrInitBlobovniczas on blobovnicza tree's initializaiton failure.
func (b *BlobStor) Init() error {
	b.log.Debug("initializing...")

	b.modeMtx.Lock()
	defer b.modeMtx.Unlock()

	return b.initLocked()
}

func (b *BlobStor) initLocked() error {
	if err := b.Config.Init(); err != nil {
		return err
	}

	for i := range b.storage {
		err := b.storage[i].Storage.Init()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInitBlobovniczas, b.storage[i].Storage.Type(), err)
		}
	}

	return nil
}

// Close releases all internal resources of BlobStor.
func (b *BlobStor) Close() error {
	b.log.Debug("closing...")

	b.modeMtx.Lock()
	defer b.modeMtx.Unlock()

	return b.closeLocked()
}

func (b *BlobStor) closeLocked() error {
	var err error
	for i := range b.storage {
		e := b.storage[i].Storage.Close()
		if e != nil {
			b.log.Info("couldn't close storage", zap.String("type", b.storage[i].Storage.Type()), zap.Error(e))
			err = multierr.Append(err, e)
		}
	}

	return multierr.Append(err, b.Config.Close())
}
