package blobstor

import (
	"errors"

	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

// Get reads the object from b.
// If the descriptor is present, only one sub-storage is tried,
// Otherwise, each sub-storage is tried in order.
func (b *BlobStor) Get(prm common.GetPrm) (common.GetRes, error) {
	b.modeMtx.RLock()
	defer b.modeMtx.RUnlock()

	if prm.StorageID == nil {
		for i := range b.storage {
			res, err := b.storage[i].Storage.Get(prm)
			if err == nil || !errors.Is(err, apistatus.ErrObjectNotFound) {
				return res, err
			}
		}

		return common.GetRes{}, logicerr.Wrap(apistatus.ErrObjectNotFound)
	}

	return b.storageByID(prm.StorageID).Get(prm)
}

// GetRange reads object payload data from b.
// If the descriptor is present, only one sub-storage is tried,
// Otherwise, each sub-storage is tried in order.
func (b *BlobStor) GetRange(prm common.GetRangePrm) (common.GetRangeRes, error) {
	b.modeMtx.RLock()
	defer b.modeMtx.RUnlock()

	if prm.StorageID == nil {
		for i := range b.storage {
			res, err := b.storage[i].Storage.GetRange(prm)
			if err == nil || !errors.Is(err, apistatus.ErrObjectNotFound) {
				return res, err
			}
		}

		return common.GetRangeRes{}, logicerr.Wrap(apistatus.ErrObjectNotFound)
	}

	return b.storageByID(prm.StorageID).GetRange(prm)
}

// storageByID returns sub-storage the object with non-nil storage ID was
// put to: empty ID belongs to the last (large objects) sub-storage.
func (b *BlobStor) storageByID(id []byte) common.Storage {
	if len(id) == 0 {
		return b.storage[len(b.storage)-1].Storage
	}

	return b.storage[0].Storage
}
