package shard

import (
	"errors"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.uber.org/zap"
)

// Delete removes data from the shard's writeCache, metaBase and
// blobStor. Missing objects are skipped.
func (s *Shard) Delete(addrs []oid.Address) error {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.delete(addrs)
}

func (s *Shard) delete(addrs []oid.Address) error {
	m := s.info.Mode
	if m.ReadOnly() {
		return ErrReadOnlyMode
	} else if m.NoMetabase() {
		return ErrDegradedMode
	}

	ln := len(addrs)

	smalls := make(map[oid.Address][]byte, ln)

	for i := range addrs {
		if s.hasWriteCache() {
			err := s.writeCache.Delete(addrs[i])
			if err != nil && !IsErrNotFound(err) && !errors.Is(err, apistatus.ErrObjectAlreadyRemoved) {
				s.log.Warn("can't delete object from write cache", zap.Error(err))
			}
		}

		sid, err := s.metaBase.StorageID(addrs[i])
		if err != nil {
			s.log.Debug("can't get storage ID from metabase",
				zap.Stringer("object", addrs[i]),
				zap.String("error", err.Error()))

			continue
		}

		if sid != nil {
			smalls[addrs[i]] = sid
		}
	}

	res, err := s.metaBase.Delete(addrs)
	if err != nil {
		return err // stop on metabase error ?
	}

	if removed := res.RawObjectsRemoved(); removed > 0 {
		s.metricsWriter.AddToObjectCounter(-int(removed))
	}

	for i, size := range res.RemovedObjectSizes() {
		if size > 0 {
			s.metricsWriter.AddToContainerSize(addrs[i].Container().EncodeToString(), -int64(size))
		}
	}

	for i := range addrs {
		_, err = s.blobStor.Delete(common.DeletePrm{
			Address:   addrs[i],
			StorageID: smalls[addrs[i]],
		})
		if err != nil && !IsErrNotFound(err) {
			s.log.Debug("can't remove object from blobStor",
				zap.Stringer("object_address", addrs[i]),
				zap.String("error", err.Error()))
		}
	}

	return nil
}
