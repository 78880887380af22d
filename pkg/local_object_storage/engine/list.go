package engine

import (
	"errors"
	"sort"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
)

// ErrEndOfListing is returned from object listing with cursor
// when storage can't return any more objects after provided
// cursor. Use nil cursor object to start listing again.
var ErrEndOfListing = shard.ErrEndOfListing

// Cursor is a type for continuous object listing.
type Cursor struct {
	shardID     string
	shardCursor *shard.Cursor
}

// ListWithCursor lists physical objects available in engine starting
// from cursor. Includes regular and tombstone objects.
// Does not include inhumed objects. Use cursor value from the result
// for consecutive requests.
//
// Returns ErrEndOfListing if there are no more objects to return or count
// parameter set to zero.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) ListWithCursor(count uint32, cursor *Cursor) ([]oid.Address, *Cursor, error) {
	var (
		res  []oid.Address
		next *Cursor
	)

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddListObjectsDuration)()
		}

		var err error
		res, next, err = e.listWithCursor(count, cursor)

		return err
	})

	return res, next, err
}

func (e *StorageEngine) listWithCursor(count uint32, cursor *Cursor) ([]oid.Address, *Cursor, error) {
	if count == 0 {
		return nil, nil, ErrEndOfListing
	}

	result := make([]oid.Address, 0, count)

	// 1. Get available shards and sort them.
	e.mtx.RLock()
	shardIDs := make([]string, 0, len(e.shards))
	for id := range e.shards {
		shardIDs = append(shardIDs, id)
	}
	e.mtx.RUnlock()

	if len(shardIDs) == 0 {
		return nil, nil, ErrEndOfListing
	}

	sort.Strings(shardIDs)

	// 2. Prepare cursor object.
	var next Cursor
	if cursor == nil {
		next.shardID = shardIDs[0]
	} else {
		next = *cursor
	}

	// 3. Iterate over available shards. Skip unavailable shards.
	for i := range shardIDs {
		if len(result) >= int(count) {
			break
		}

		if shardIDs[i] < next.shardID {
			continue
		}

		e.mtx.RLock()
		sh, ok := e.shards[shardIDs[i]]
		e.mtx.RUnlock()
		if !ok {
			continue
		}

		var shardCursor *shard.Cursor
		if shardIDs[i] == next.shardID {
			shardCursor = next.shardCursor
		}

		addrs, c, err := sh.ListWithCursor(int(count)-len(result), shardCursor)
		if err != nil {
			if !errors.Is(err, ErrEndOfListing) {
				e.reportShardError(hashedShard(sh), "could not list objects of shard", err)
			}

			continue
		}

		result = append(result, addrs...)
		next.shardCursor = c
		next.shardID = shardIDs[i]
	}

	if len(result) == 0 {
		return nil, nil, ErrEndOfListing
	}

	return result, &next, nil
}

// ListContainers returns a unique container IDs presented in the engine objects.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) ListContainers() ([]cid.ID, error) {
	var res []cid.ID

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddListContainersDuration)()
		}

		res = e.listContainers()

		return nil
	})

	return res, err
}

func (e *StorageEngine) listContainers() []cid.ID {
	uniqueIDs := make(map[cid.ID]struct{})

	e.iterateOverUnsortedShards(func(sh hashedShard) (stop bool) {
		cnrs, err := sh.ListContainers()
		if err != nil {
			e.reportShardError(sh, "can't get list of containers", err)
			return false
		}

		for i := range cnrs {
			uniqueIDs[cnrs[i]] = struct{}{}
		}

		return false
	})

	result := make([]cid.ID, 0, len(uniqueIDs))
	for id := range uniqueIDs {
		result = append(result, id)
	}

	return result
}
