package blobstor

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
)

// ErrNoPlaceFound is returned when object can't be saved in any sub-storage.
var ErrNoPlaceFound = errors.New("couldn't find a place to store an object")

// Put saves the object in BLOB storage.
//
// If object is "big", BlobStor saves the object in shallow dir.
// Otherwise, BlobStor saves the object in blobovnicza. In this
// case the identifier of blobovnicza is returned.
//
// Returns any error encountered that
// did not allow to completely save the object.
func (b *BlobStor) Put(prm common.PutPrm) (common.PutRes, error) {
	b.modeMtx.RLock()
	defer b.modeMtx.RUnlock()

	if b.mode.ReadOnly() {
		return common.PutRes{}, common.ErrReadOnly
	}

	if prm.Object != nil {
		prm.Address = prm.Object.Address()
	}

	if prm.RawData == nil {
		if prm.Object == nil {
			return common.PutRes{}, errors.New("missing object")
		}

		prm.RawData = prm.Object.Marshal()
	}

	if !prm.DontCompress && prm.Object != nil && b.NeedsCompression(prm.Object) {
		prm.RawData = b.Compress(prm.RawData)
	}
	prm.DontCompress = true

	for i := range b.storage {
		if b.storage[i].Policy == nil || b.storage[i].Policy(prm.Object, prm.RawData) {
			res, err := b.storage[i].Storage.Put(prm)
			if err != nil {
				return common.PutRes{}, fmt.Errorf("put to %s: %w", b.storage[i].Storage.Type(), err)
			}

			storagelog.Write(b.log,
				storagelog.AddressField(prm.Address),
				storagelog.OpField("blobstor PUT"),
				storagelog.StorageTypeField(b.storage[i].Storage.Type()),
				storagelog.StorageIDField(res.StorageID),
			)

			return res, nil
		}
	}

	return common.PutRes{}, ErrNoPlaceFound
}
