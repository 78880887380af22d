package blobovnicza

import (
	"bytes"
	"fmt"

	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// GetPrm groups the parameters of Get operation.
type GetPrm struct {
	addr oid.Address
}

// GetRes groups the resulting values of Get operation.
type GetRes struct {
	objData []byte
}

// SetAddress sets the address of the requested object.
func (p *GetPrm) SetAddress(addr oid.Address) {
	p.addr = addr
}

// Object returns binary representation of the requested object.
func (p GetRes) Object() []byte {
	return p.objData
}

// Get reads an object from Blobovnicza by address.
//
// Returns any error encountered that
// did not allow to completely read the object.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is not
// presented in Blobovnicza.
func (b *Blobovnicza) Get(prm GetPrm) (GetRes, error) {
	var (
		data    []byte
		addrKey = addressKey(prm.addr)
	)

	if err := b.boltDB.View(func(tx *bbolt.Tx) error {
		return b.iterateAllBuckets(tx, func(_, _ uint64, buck *bbolt.Bucket) (bool, error) {
			data = buck.Get(addrKey)
			if data == nil {
				return false, nil
			}

			b.log.Debug("object is found in bucket",
				zap.String("binary size", stringifyByteSize(uint64(len(data)))),
			)

			data = bytes.Clone(data)

			return true, nil
		})
	}); err != nil {
		return GetRes{}, err
	}

	if data == nil {
		return GetRes{}, logicerr.Wrap(apistatus.ErrObjectNotFound)
	}

	data, err := b.decompress(data)
	if err != nil {
		return GetRes{}, fmt.Errorf("could not decompress object data: %w", err)
	}

	return GetRes{
		objData: data,
	}, nil
}

func (b *Blobovnicza) decompress(data []byte) ([]byte, error) {
	if b.compression == nil {
		return data, nil
	}

	return b.compression.Decompress(data)
}
