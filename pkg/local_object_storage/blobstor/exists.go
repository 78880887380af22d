package blobstor

import (
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.uber.org/zap"
)

// Exists checks if the object is presented in BLOB storage.
//
// Returns any error encountered that did not allow
// to completely check object existence.
func (b *BlobStor) Exists(prm common.ExistsPrm) (common.ExistsRes, error) {
	b.modeMtx.RLock()
	defer b.modeMtx.RUnlock()

	if prm.StorageID != nil {
		return b.storageByID(prm.StorageID).Exists(prm)
	}

	// If there was an error during existence check below,
	// it will be returned unless object was found in blobovnicza.
	// Otherwise, it is logged and the latest error is returned.
	// FSTree    | Blobovnicza | Behaviour
	// found     | (not tried) | return true, nil
	// not found | any result  | return the result
	// error     | found       | log the error, return true, nil
	// error     | not found   | return the error
	// error     | error       | log the first error, return the second
	var errs []error
	for i := range b.storage {
		res, err := b.storage[i].Storage.Exists(prm)
		if err == nil && res.Exists {
			return res, nil
		} else if err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return common.ExistsRes{}, nil
	}

	for _, err := range errs[:len(errs)-1] {
		b.log.Warn("error occurred during object existence checking",
			zap.Stringer("address", prm.Address),
			zap.Error(err))
	}

	return common.ExistsRes{}, errs[len(errs)-1]
}
