package engine

import (
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
)

// FlushWriteCache flushes write-cache of the shard with the given ID.
// Errors of the objects that could not be flushed are ignored if
// ignoreErrors is set.
func (e *StorageEngine) FlushWriteCache(id *shard.ID, ignoreErrors bool) error {
	e.mtx.RLock()
	sh, ok := e.shards[id.String()]
	e.mtx.RUnlock()

	if !ok {
		return errShardNotFound
	}

	return sh.FlushWriteCache(ignoreErrors)
}
