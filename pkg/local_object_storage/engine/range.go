package engine

import (
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
)

// GetRange reads part of an object payload from local storage.
//
// Returns any error encountered that
// did not allow to completely read the object part.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing in local storage.
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the requested object is inhumed.
// Returns an error of type apistatus.ErrObjectOutOfRange if the requested range is outside of the payload.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) GetRange(addr oid.Address, offset, length uint64) ([]byte, error) {
	var data []byte

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddRangeDuration)()
		}

		return e.get(addr, func(sh *shard.Shard, skipMeta bool) error {
			var err error
			data, err = sh.GetRange(addr, offset, length, skipMeta)
			return err
		})
	})

	return data, err
}
