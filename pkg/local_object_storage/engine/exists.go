package engine

import (
	"errors"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"go.uber.org/zap"
)

// Exists checks if object is presented in storage engine.
//
// Returns any error encountered that does not allow to
// unambiguously determine the presence of an object.
//
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the object
// was inhumed on any shard.
func (e *StorageEngine) Exists(addr oid.Address) (bool, error) {
	var exists bool

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddExistsDuration)()
		}

		var err error
		exists, err = e.exists(addr)

		return err
	})

	return exists, err
}

func (e *StorageEngine) exists(addr oid.Address) (bool, error) {
	var (
		exists bool
		outErr error
	)

	e.iterateOverSortedShards(addr, func(_ int, sh hashedShard) (stop bool) {
		ok, err := sh.Exists(addr)
		if err != nil {
			if shard.IsErrRemoved(err) {
				outErr = err
				return true
			}

			if errors.As(err, new(*object.SplitInfoError)) {
				// parts of the object are stored here, the parent
				// itself is not
				return false
			}

			if !shard.IsErrNotFound(err) {
				e.reportShardError(sh, "could not check existence of object in shard", err,
					zap.Stringer("address", addr))
			}

			return false
		}

		exists = exists || ok

		return false
	})

	if outErr != nil {
		return false, outErr
	}

	return exists, nil
}
