package engine

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
)

// Head reads object header from local storage.
//
// If raw is set and the object is a virtual parent, the object.SplitInfoError
// is returned with the split information merged from all shards.
//
// Returns any error encountered that
// did not allow to completely read the object header.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing in local storage.
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the requested object was inhumed.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) Head(addr oid.Address, raw bool) (*object.Object, error) {
	var hdr *object.Object

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddHeadDuration)()
		}

		return e.get(addr, func(sh *shard.Shard, _ bool) error {
			var err error
			hdr, err = sh.Head(addr, raw)
			return err
		})
	})

	return hdr, err
}
