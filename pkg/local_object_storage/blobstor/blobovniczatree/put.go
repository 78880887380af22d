package blobovniczatree

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.uber.org/zap"
)

// Put saves object in the active blobovnicza. If it is full, the next one of
// the arena becomes active.
//
// Returns common.ErrNoSpace if all blobovniczas are full.
func (b *Blobovniczas) Put(prm common.PutPrm) (common.PutRes, error) {
	if b.readOnly {
		return common.PutRes{}, common.ErrReadOnly
	}

	data := prm.RawData
	if data == nil {
		data = prm.Object.Marshal()
	}

	if !prm.DontCompress {
		data = b.compression.Compress(data)
	}

	var putPrm blobovnicza.PutPrm
	putPrm.SetAddress(prm.Address)
	putPrm.SetMarshaledObject(data)

	for {
		b.activeMtx.RLock()

		active, ok := b.getActive()
		if !ok {
			b.activeMtx.RUnlock()
			return common.PutRes{}, common.ErrNoSpace
		}

		_, err := active.blz.Put(putPrm)

		b.activeMtx.RUnlock()

		switch {
		case err == nil:
			b.log.Debug("object successfully saved in active blobovnicza",
				zap.String("path", active.path),
				zap.Stringer("address", prm.Address),
			)

			return common.PutRes{StorageID: blobovnicza.NewIDFromBytes([]byte(active.path)).Bytes()}, nil
		case errors.Is(err, blobovnicza.ErrFull):
			b.log.Debug("blobovnicza overflowed",
				zap.String("path", active.path),
			)

			if err := b.advance(active.ind); err != nil {
				if errors.Is(err, common.ErrNoSpace) {
					return common.PutRes{}, err
				}

				return common.PutRes{}, fmt.Errorf("could not activate next blobovnicza: %w", err)
			}
		default:
			return common.PutRes{}, fmt.Errorf("could not put object to active blobovnicza %s: %w", active.path, err)
		}
	}
}
