package shard

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.uber.org/zap"
)

// Put saves the object in shard. objBin is an optional encoded object,
// it is calculated from obj if nil.
//
// Returns any error encountered that
// did not allow to completely save the object.
//
// Returns ErrReadOnlyMode error if shard is in "read-only" mode.
func (s *Shard) Put(obj *object.Object, objBin []byte) error {
	s.m.RLock()
	defer s.m.RUnlock()

	m := s.info.Mode
	if m.ReadOnly() {
		return ErrReadOnlyMode
	}

	if objBin == nil {
		objBin = obj.Marshal()
	}

	addr := obj.Address()

	var res common.PutRes

	// exist check are not performed there, these checks should be executed
	// ahead of `Put` by storage engine
	tryCache := s.hasWriteCache() && !m.NoMetabase()
	if tryCache {
		err := s.writeCache.Put(addr, obj, objBin)
		if err == nil {
			// storage ID is nil until the object is flushed
			return s.putToMetabase(obj, nil)
		}

		s.log.Debug("can't put object to the write-cache, trying blobstor",
			zap.Stringer("address", addr),
			zap.Error(err))
	}

	var err error
	res, err = s.blobStor.Put(common.PutPrm{
		Address: addr,
		Object:  obj,
		RawData: objBin,
	})
	if err != nil {
		return fmt.Errorf("could not put object to BLOB storage: %w", err)
	}

	if m.NoMetabase() {
		return nil
	}

	return s.putToMetabase(obj, res.StorageID)
}

func (s *Shard) putToMetabase(obj *object.Object, storageID []byte) error {
	// put to metabase
	if err := s.metaBase.Put(obj, storageID); err != nil {
		// may we need to handle this case in a special way
		// since the object has been successfully written to BlobStor
		return fmt.Errorf("could not put object to metabase: %w", err)
	}

	s.incObjectCounter(obj)

	return nil
}
