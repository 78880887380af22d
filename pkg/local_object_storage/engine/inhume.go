package engine

import (
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"go.uber.org/zap"
)

var errInhumeFailure = errors.New("inhume operation failed")

// Inhume marks objects as removed by the tombstone on all shards, so they
// can't be put again. tombExpiration is the epoch the tombstone expires
// after.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) Inhume(tombstone oid.Address, tombExpiration uint64, addrs ...oid.Address) error {
	return e.execIfNotBlocked(func() error {
		return e.inhume(addrs, &tombstone, tombExpiration)
	})
}

// MarkGarbage marks objects to be physically removed by GC on all shards.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) MarkGarbage(addrs ...oid.Address) error {
	return e.execIfNotBlocked(func() error {
		return e.inhume(addrs, nil, 0)
	})
}

// inhume fans the operation out to all shards. It succeeds if at least one
// shard accepted it.
func (e *StorageEngine) inhume(addrs []oid.Address, tombstone *oid.Address, tombExpiration uint64) error {
	if e.metrics != nil {
		defer elapsed(e.metrics.AddInhumeDuration)()
	}

	if len(addrs) == 0 {
		return nil
	}

	var (
		ok      bool
		lastErr error
	)

	e.iterateOverUnsortedShards(func(sh hashedShard) (stop bool) {
		var err error
		if tombstone != nil {
			err = sh.Inhume(*tombstone, tombExpiration, addrs...)
		} else {
			err = sh.MarkGarbage(addrs...)
		}

		if err != nil {
			lastErr = err

			if errors.Is(err, shard.ErrReadOnlyMode) || errors.Is(err, shard.ErrDegradedMode) {
				e.log.Debug("could not inhume objects in shard",
					zap.Stringer("shard_id", sh.ID()),
					zap.String("error", err.Error()))
			} else {
				e.reportShardError(sh, "could not inhume objects in shard", err)
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
		return errInhumeFailure
	}

	return fmt.Errorf("%w: %w", errInhumeFailure, lastErr)
}
