package blobstor

import (
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.uber.org/zap"
)

// Iterate traverses the storage over the stored objects and calls the handler
// on each element.
//
// Returns any error encountered that
// did not allow to completely iterate over the storage.
//
// If handler returns an error, method wraps and returns it immediately.
// common.ErrStop stops the whole iteration without an error.
func (b *BlobStor) Iterate(prm common.IteratePrm) (common.IterateRes, error) {
	b.modeMtx.RLock()
	defer b.modeMtx.RUnlock()

	var stopped bool
	handler := prm.Handler
	prm.Handler = func(el common.IterationElement) error {
		err := handler(el)
		if errors.Is(err, common.ErrStop) {
			stopped = true
		}
		return err
	}

	for i := range b.storage {
		_, err := b.storage[i].Storage.Iterate(prm)
		if err != nil && !prm.IgnoreErrors {
			return common.IterateRes{}, fmt.Errorf("blobstor iterator failure: %w", err)
		}

		if stopped {
			break
		}
	}

	return common.IterateRes{}, nil
}

// IterateBinaryObjects is a helper function which iterates over BlobStor and passes binary objects to f.
// Errors related to object reading and unmarshaling are logged and skipped.
func IterateBinaryObjects(blz *BlobStor, f func(addr oid.Address, data []byte, descriptor []byte) error) error {
	var prm common.IteratePrm

	prm.Handler = func(elem common.IterationElement) error {
		return f(elem.Address, elem.ObjectData, elem.StorageID)
	}
	prm.IgnoreErrors = true
	prm.ErrorHandler = func(addr oid.Address, err error) error {
		blz.log.Warn("error occurred during the iteration",
			zap.Stringer("address", addr),
			zap.String("err", err.Error()))
		return nil
	}

	_, err := blz.Iterate(prm)

	return err
}
