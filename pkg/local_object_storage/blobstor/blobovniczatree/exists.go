package blobovniczatree

import (
	"errors"

	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
)

// Exists implements common.Storage.
func (b *Blobovniczas) Exists(prm common.ExistsPrm) (common.ExistsRes, error) {
	err := b.probe(prm.Address, prm.StorageID, func(blz *blobovnicza.Blobovnicza) error {
		ok, err := blz.Exists(prm.Address)
		if err != nil {
			return err
		} else if !ok {
			return apistatus.ErrObjectNotFound
		}

		return nil
	})
	if errors.Is(err, apistatus.ErrObjectNotFound) {
		return common.ExistsRes{}, nil
	}

	return common.ExistsRes{Exists: err == nil}, err
}

