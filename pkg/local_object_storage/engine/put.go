package engine

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"go.uber.org/zap"
)

var (
	errPutShard = errors.New("could not put object to any shard")

	// ErrOverloaded is returned by Put when all suitable shards are busy.
	ErrOverloaded = logicerr.New("storage engine is overloaded")

	errExists = errors.New("already exists")
)

// Put saves an object to local storage. objBin is an optional binary
// encoding of obj.
//
// Returns any error encountered that
// did not allow to completely save the object.
//
// Returns an error if executions are blocked (see BlockExecution).
//
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if the object has been marked as removed.
func (e *StorageEngine) Put(obj *object.Object, objBin []byte) error {
	return e.execIfNotBlocked(func() error {
		return e.put(obj, objBin)
	})
}

func (e *StorageEngine) put(obj *object.Object, objBin []byte) error {
	if e.metrics != nil {
		defer elapsed(e.metrics.AddPutDuration)()
	}

	addr := obj.Address()

	exists, err := e.exists(addr)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	if obj.Type() == object.TypeTombstone {
		if err := e.inhumeTombstoneMembers(obj); err != nil {
			return err
		}
	}

	var overloaded bool

	for i, sh := range e.sortedShards(addr) {
		err = e.putToShard(sh, i, addr, obj, objBin)
		if err == nil || errors.Is(err, errExists) {
			return nil
		}

		if errors.Is(err, ErrOverloaded) {
			overloaded = true
		}
	}

	if overloaded {
		return ErrOverloaded
	}

	if err == nil {
		return errPutShard
	}

	return fmt.Errorf("%w: %w", errPutShard, err)
}

// inhumeTombstoneMembers marks the objects listed in the tombstone payload
// as removed on all shards.
func (e *StorageEngine) inhumeTombstoneMembers(obj *object.Object) error {
	tomb := object.NewTombstone()

	err := tomb.Unmarshal(obj.Payload())
	if err != nil {
		return fmt.Errorf("decode tombstone %s: %w", obj.Address(), err)
	}

	members := tomb.Members()
	if len(members) == 0 {
		return nil
	}

	addr := obj.Address()
	cnr := addr.Container()

	addrs := make([]oid.Address, 0, len(members))
	for i := range members {
		addrs = append(addrs, oid.NewAddress(cnr, members[i]))
	}

	err = e.inhume(addrs, &addr, tomb.ExpirationEpoch())
	if err != nil {
		return fmt.Errorf("inhume members of tombstone %s: %w", addr, err)
	}

	return nil
}

// putToShard puts object to sh.
// Returns error from shard put or ErrOverloaded (when shard pool can't accept
// the task) or errExists (if object is already stored there).
func (e *StorageEngine) putToShard(sh hashedShard, ind int, addr oid.Address, obj *object.Object, objBin []byte) error {
	var putErr error

	e.mtx.RLock()
	pool, ok := e.shardPools[sh.ID().String()]
	e.mtx.RUnlock()
	if !ok {
		// Shard was concurrently removed, skip.
		return errShardNotFound
	}

	exitCh := make(chan struct{})

	if err := pool.Submit(func() {
		defer close(exitCh)

		exists, err := sh.Exists(addr)
		if err != nil {
			if shard.IsErrRemoved(err) {
				putErr = err
				return
			}

			e.log.Warn("object put: check object existence",
				zap.Stringer("addr", addr),
				zap.Stringer("shard", sh.ID()),
				zap.Error(err))
		}

		if exists {
			putErr = errExists
			return
		}

		putErr = sh.Put(obj, objBin)
		if putErr != nil {
			if errors.Is(putErr, shard.ErrReadOnlyMode) || errors.Is(putErr, shard.ErrDegradedMode) {
				e.log.Warn("could not put object to shard",
					zap.Stringer("shard_id", sh.ID()),
					zap.Int("shard_index", ind),
					zap.String("error", putErr.Error()))
				return
			}

			e.reportShardError(sh, "could not put object to shard", putErr,
				zap.Stringer("address", addr))
		}
	}); err != nil {
		return ErrOverloaded
	}

	<-exitCh

	return putErr
}
