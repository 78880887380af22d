package shard

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
)

// Head reads header of the object from the shard. If raw is true, virtual
// parents are not resolved: object.SplitInfoError is returned instead.
// Otherwise, the header of the parent carried by a stored child is returned.
//
// Returns any error encountered.
//
// Returns an error of type apistatus.ErrObjectNotFound if object is missing in Shard.
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the requested object has been marked as removed in shard.
func (s *Shard) Head(addr oid.Address, raw bool) (*object.Object, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	if !s.info.Mode.NoMetabase() {
		// the metabase keeps headers of all objects
		return s.metaBase.Get(addr, raw)
	}

	cb := func(stor *blobstor.BlobStor, id []byte) (*object.Object, error) {
		res, err := stor.Get(common.GetPrm{
			Address:   addr,
			StorageID: id,
		})
		if err != nil {
			return nil, err
		}

		return res.Object.CutPayload(), nil
	}

	wc := func(c writecache.Cache) (*object.Object, error) {
		return c.Head(addr)
	}

	obj, _, err := s.fetchObjectData(addr, true, cb, wc)

	return obj, err
}
