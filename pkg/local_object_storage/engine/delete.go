package engine

import (
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"go.uber.org/zap"
)

var errDeleteFailure = errors.New("delete operation failed")

// Delete physically removes objects from all shards. Missing objects are
// not an error.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) Delete(addrs ...oid.Address) error {
	return e.execIfNotBlocked(func() error {
		return e.delete(addrs)
	})
}

func (e *StorageEngine) delete(addrs []oid.Address) error {
	if e.metrics != nil {
		defer elapsed(e.metrics.AddDeleteDuration)()
	}

	if len(addrs) == 0 {
		return nil
	}

	var (
		ok      bool
		lastErr error
	)

	e.iterateOverUnsortedShards(func(sh hashedShard) (stop bool) {
		err := sh.Delete(addrs)
		if err != nil {
			lastErr = err

			if errors.Is(err, shard.ErrReadOnlyMode) || errors.Is(err, shard.ErrDegradedMode) {
				e.log.Debug("could not delete objects from shard",
					zap.Stringer("shard_id", sh.ID()),
					zap.String("error", err.Error()))
			} else {
				e.reportShardError(sh, "could not delete objects from shard", err)
			}

			return false
		}

		ok = true

		return false
	})

	if ok {
		return nil
	}

	if lastErr == nil {
		return errDeleteFailure
	}

	return fmt.Errorf("%w: %w", errDeleteFailure, lastErr)
}
