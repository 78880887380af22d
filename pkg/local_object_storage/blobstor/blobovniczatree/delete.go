package blobovniczatree

import (
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
)

// Delete deletes object from blobovnicza tree.
//
// If blobovnicza ID is specified, only this blobovnicza is processed.
// Otherwise, all blobovniczas are processed descending weight.
func (b *Blobovniczas) Delete(prm common.DeletePrm) (common.DeleteRes, error) {
	if b.readOnly {
		return common.DeleteRes{}, common.ErrReadOnly
	}

	err := b.probe(prm.Address, prm.StorageID, func(blz *blobovnicza.Blobovnicza) error {
		var dPrm blobovnicza.DeletePrm
		dPrm.SetAddress(prm.Address)

		_, err := blz.Delete(dPrm)

		return err
	})
	if err == nil {
		storagelog.Write(b.log,
			storagelog.AddressField(prm.Address),
			storagelog.OpField("DELETE"),
			storagelog.StorageTypeField(Type),
			storagelog.StorageIDField(prm.StorageID),
		)
	}

	return common.DeleteRes{}, err
}
