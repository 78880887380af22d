package shard

import (
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"go.uber.org/zap"
)

// Inhume marks objects as removed in metabase using provided tombstone data.
// Objects won't be removed physically from blobStor and metabase until
// `Delete` operation.
//
// Returns ErrReadOnlyMode error if shard is in "read-only" mode.
func (s *Shard) Inhume(tombstone oid.Address, tombExpiration uint64, addrs ...oid.Address) error {
	var prm meta.InhumePrm

	prm.SetAddresses(addrs...)
	prm.SetTombstone(tombstone, tombExpiration)

	return s.inhume(prm, addrs)
}

// MarkGarbage marks objects to be physically removed from shard by GC.
//
// Returns ErrReadOnlyMode error if shard is in "read-only" mode.
func (s *Shard) MarkGarbage(addrs ...oid.Address) error {
	var prm meta.InhumePrm

	prm.SetAddresses(addrs...)
	prm.SetGCMark()

	return s.inhume(prm, addrs)
}

func (s *Shard) inhume(prm meta.InhumePrm, addrs []oid.Address) error {
	s.m.RLock()
	defer s.m.RUnlock()

	m := s.info.Mode
	if m.ReadOnly() {
		return ErrReadOnlyMode
	} else if m.NoMetabase() {
		return ErrDegradedMode
	}

	_, err := s.metaBase.Inhume(prm)
	if err != nil {
		s.log.Debug("could not mark object to delete in metabase",
			zap.Error(err),
		)

		return fmt.Errorf("metabase inhume: %w", err)
	}

	if s.hasWriteCache() {
		for i := range addrs {
			_ = s.writeCache.Delete(addrs[i])
		}
	}

	return nil
}
