package shard

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
)

// GetRange reads part of an object's payload from shard.
//
// Returns any error encountered that
// did not allow to completely read the object part.
//
// Returns an error of type apistatus.ErrObjectOutOfRange if the requested range is out of bounds.
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing.
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the requested object has been marked as removed in shard.
func (s *Shard) GetRange(addr oid.Address, offset, length uint64, skipMeta bool) ([]byte, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	cb := func(stor *blobstor.BlobStor, id []byte) (*object.Object, error) {
		res, err := stor.GetRange(common.GetRangePrm{
			Address:   addr,
			Offset:    offset,
			Length:    length,
			StorageID: id,
		})
		if err != nil {
			return nil, err
		}

		obj := object.New()
		obj.SetPayload(res.Data)

		return obj, nil
	}

	wc := func(c writecache.Cache) (*object.Object, error) {
		res, err := c.Get(addr)
		if err != nil {
			return nil, err
		}

		payload, err := cutRange(res.Payload(), offset, length)
		if err != nil {
			return nil, err
		}

		obj := object.New()
		obj.SetPayload(payload)

		return obj, nil
	}

	skipMeta = skipMeta || s.info.Mode.NoMetabase()
	obj, _, err := s.fetchObjectData(addr, skipMeta, cb, wc)
	if err != nil {
		return nil, err
	}

	return obj.Payload(), nil
}

func cutRange(payload []byte, offset, length uint64) ([]byte, error) {
	to := offset + length
	if to < offset || to > uint64(len(payload)) {
		return nil, logicerr.Wrap(apistatus.ErrObjectOutOfRange)
	}

	return payload[offset:to], nil
}
