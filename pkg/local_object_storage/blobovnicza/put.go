package blobovnicza

import (
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
)

// PutPrm groups the parameters of Put operation.
type PutPrm struct {
	addr oid.Address

	objData []byte
}

// PutRes groups the resulting values of Put operation.
type PutRes struct{}

// SetAddress sets the address of the saving object.
func (p *PutPrm) SetAddress(addr oid.Address) {
	p.addr = addr
}

// SetMarshaledObject sets binary representation of the object. The data is
// stored as is, compression is up to the caller.
func (p *PutPrm) SetMarshaledObject(data []byte) {
	p.objData = data
}

// Put saves an object in Blobovnicza.
//
// If binary representation of the object is not set,
// it is calculated via Marshal method.
//
// The size of the object MUST BE less that or equal to
// the object size limit set in Blobovnicza configuration.
//
// Returns ErrFull if Blobovnicza is filled.
// Returns ErrTooLarge if the object exceeds the object size limit.
//
// Should not be called in read-only configuration.
func (b *Blobovnicza) Put(prm PutPrm) (PutRes, error) {
	sz := uint64(len(prm.objData))

	if !b.reserveSize(sz) {
		return PutRes{}, ErrFull
	}

	if sz > b.objSizeLimit {
		b.decSize(sz)
		return PutRes{}, fmt.Errorf("%w: %d > %d", ErrTooLarge, sz, b.objSizeLimit)
	}

	bucketName := bucketForSize(sz)
	key := addressKey(prm.addr)

	var exists bool

	err := b.boltDB.Batch(func(tx *bbolt.Tx) error {
		buck := tx.Bucket(bucketName)
		if buck == nil {
			// expected to happen:
			//  - before initialization step (incorrect usage by design)
			//  - if DB is corrupted (in future this case should be handled)
			return fmt.Errorf("(%T) bucket for size %d not created", b, sz)
		}

		exists = buck.Get(key) != nil
		if exists {
			return nil
		}

		// save the object in bucket
		if err := buck.Put(key, prm.objData); err != nil {
			return fmt.Errorf("(%T) could not save object in bucket: %w", b, err)
		}

		return nil
	})
	if err != nil || exists {
		b.decSize(sz)
	}

	return PutRes{}, err
}

func addressKey(addr oid.Address) []byte {
	return addr.Marshal()
}
