package shard

import (
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
)

// Exists checks if object is presented in shard.
//
// Returns any error encountered that does not allow to
// unambiguously determine the presence of an object.
//
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if object has been marked as removed.
func (s *Shard) Exists(addr oid.Address) (bool, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	if s.info.Mode.NoMetabase() {
		if s.hasWriteCache() {
			if _, err := s.writeCache.Head(addr); err == nil {
				return true, nil
			}
		}

		res, err := s.blobStor.Exists(common.ExistsPrm{Address: addr})
		if err != nil {
			return false, err
		}

		return res.Exists, nil
	}

	return s.metaBase.Exists(addr)
}
