package blobstor

import (
	"errors"

	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

// Delete removes the object from the storage. Without storage ID every
// sub-storage is tried.
func (b *BlobStor) Delete(prm common.DeletePrm) (common.DeleteRes, error) {
	b.modeMtx.RLock()
	defer b.modeMtx.RUnlock()

	if prm.StorageID == nil {
		for i := range b.storage {
			res, err := b.storage[i].Storage.Delete(prm)
			if err == nil || !errors.Is(err, apistatus.ErrObjectNotFound) {
				if err == nil {
					logOp(b, prm, b.storage[i].Storage.Type())
				}
				return res, err
			}
		}

		return common.DeleteRes{}, logicerr.Wrap(apistatus.ErrObjectNotFound)
	}

	st := b.storageByID(prm.StorageID)

	res, err := st.Delete(prm)
	if err == nil {
		logOp(b, prm, st.Type())
	}

	return res, err
}

func logOp(b *BlobStor, prm common.DeletePrm, typ string) {
	storagelog.Write(b.log,
		storagelog.AddressField(prm.Address),
		storagelog.OpField("blobstor DELETE"),
		storagelog.StorageTypeField(typ),
		storagelog.StorageIDField(prm.StorageID),
	)
}
