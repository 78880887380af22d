package shard

import (
	"fmt"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
)

// ContainerSize returns the sum of the payload sizes of the container
// objects stored in the shard.
func (s *Shard) ContainerSize(cnr cid.ID) (uint64, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	if s.info.Mode.NoMetabase() {
		return 0, ErrDegradedMode
	}

	size, err := s.metaBase.ContainerSize(cnr)
	if err != nil {
		return 0, fmt.Errorf("could not get container size: %w", err)
	}

	return size, nil
}
