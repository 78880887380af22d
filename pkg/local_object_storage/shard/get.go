package shard

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
	"go.uber.org/zap"
)

// storFetcher is a type to unify object fetching mechanism in `fetchObjectData`
// method. It represents generalization of `getSmall` and `getBig` methods.
type storFetcher = func(stor *blobstor.BlobStor, id []byte) (*object.Object, error)

// Get reads an object from shard. If skipMeta is set, the metabase is not
// checked, so removed objects can still be returned.
//
// Returns any error encountered that
// did not allow to completely read the object part.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing in shard.
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the requested object has been marked as removed in shard.
// Returns the object.SplitInfoError if the requested object is a virtual parent.
func (s *Shard) Get(addr oid.Address, skipMeta bool) (*object.Object, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	cb := func(stor *blobstor.BlobStor, id []byte) (*object.Object, error) {
		res, err := stor.Get(common.GetPrm{
			Address:   addr,
			StorageID: id,
		})
		if err != nil {
			return nil, err
		}

		return res.Object, nil
	}

	wc := func(c writecache.Cache) (*object.Object, error) {
		return c.Get(addr)
	}

	skipMeta = skipMeta || s.info.Mode.NoMetabase()
	obj, _, err := s.fetchObjectData(addr, skipMeta, cb, wc)

	return obj, err
}

// fetchObjectData looks through writeCache and blobStor to find object.
// The second return value is true if the metabase was used.
func (s *Shard) fetchObjectData(addr oid.Address, skipMeta bool, cb storFetcher, wc func(w writecache.Cache) (*object.Object, error)) (*object.Object, bool, error) {
	if !skipMeta {
		exists, err := s.metaBase.Exists(addr)
		if err != nil {
			return nil, true, err
		}

		if !exists {
			return nil, true, logicerr.Wrap(apistatus.ErrObjectNotFound)
		}
	}

	if s.hasWriteCache() {
		res, err := wc(s.writeCache)
		if err == nil || IsErrOutOfRange(err) {
			return res, false, err
		}

		if IsErrNotFound(err) {
			s.log.Debug("object is missing in write-cache",
				zap.Stringer("address", addr),
				zap.Bool("skip_meta", skipMeta))
		} else {
			s.log.Error("failed to fetch object from write-cache",
				zap.Error(err),
				zap.Stringer("address", addr),
				zap.Bool("skip_meta", skipMeta))
		}
	}

	if skipMeta {
		res, err := cb(s.blobStor, nil)
		return res, false, err
	}

	storageID, err := s.metaBase.StorageID(addr)
	if err != nil {
		return nil, true, fmt.Errorf("can't fetch blobovnicza id from metabase: %w", err)
	}

	res, err := cb(s.blobStor, storageID)

	return res, true, err
}
