package engine

import (
	"errors"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

// Get reads an object from local storage.
//
// Returns any error encountered that
// did not allow to completely read the object part.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing in local storage.
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the object has been marked as removed.
// Returns the object.SplitInfoError if the object is a virtual parent.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) Get(addr oid.Address) (*object.Object, error) {
	var obj *object.Object

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddGetDuration)()
		}

		return e.get(addr, func(sh *shard.Shard, skipMeta bool) error {
			var err error
			obj, err = sh.Get(addr, skipMeta)
			return err
		})
	})

	return obj, err
}

// get queries shards in HRW order until one of them succeeds. Partial split
// information from different shards is merged, the search stops once it is
// complete. Best-effort merge result is returned if no shard has the object.
func (e *StorageEngine) get(addr oid.Address, shardFunc func(sh *shard.Shard, skipMeta bool) error) error {
	var (
		hasDegraded bool
		splitInfo   *object.SplitInfo
		outErr      error = logicerr.Wrap(apistatus.ErrObjectNotFound)
	)

	for _, sh := range e.sortedShards(addr) {
		noMeta := sh.GetMode().NoMetabase()
		hasDegraded = hasDegraded || noMeta

		err := shardFunc(sh.Shard, noMeta)
		if err == nil {
			return nil
		}

		var siErr *object.SplitInfoError

		switch {
		case shard.IsErrNotFound(err):
			continue // ignore, go to next shard
		case errors.As(err, &siErr):
			splitInfo = util.MergeSplitInfo(siErr.SplitInfo(), splitInfo)

			// stop iterating over shards if SplitInfo structure is complete
			if util.IsCompleteSplitInfo(splitInfo) {
				return logicerr.Wrap(object.NewSplitInfoError(splitInfo))
			}
		case shard.IsErrRemoved(err), shard.IsErrOutOfRange(err):
			return err // stop, return it back
		default:
			e.reportShardError(sh, "could not get object from shard", err)
			outErr = err
		}
	}

	if splitInfo != nil {
		return logicerr.Wrap(object.NewSplitInfoError(splitInfo))
	}

	return outErr
}
