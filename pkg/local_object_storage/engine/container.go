package engine

import (
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"go.uber.org/zap"
)

// ContainerSize returns the sum of estimation container sizes among all shards.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) ContainerSize(cnr cid.ID) (uint64, error) {
	var size uint64

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddEstimateContainerSizeDuration)()
		}

		size = e.containerSize(cnr)

		return nil
	})

	return size, err
}

func (e *StorageEngine) containerSize(cnr cid.ID) (total uint64) {
	e.iterateOverUnsortedShards(func(sh hashedShard) (stop bool) {
		size, err := sh.ContainerSize(cnr)
		if err != nil {
			e.reportShardError(sh, "can't get container size", err,
				zap.Stringer("container_id", cnr))

			return false
		}

		total += size

		return false
	})

	return total
}
