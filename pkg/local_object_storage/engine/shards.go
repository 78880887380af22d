package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/nspcc-dev/hrw"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var errShardNotFound = errors.New("shard not found")

type hashedShard shardWrapper

type metricsWithID struct {
	id string
	mw MetricRegister
}

func (m *metricsWithID) SetShardID(id string) {
	// concurrent settings are not expected =>
	// no mutex protection
	m.id = id
}

func (m *metricsWithID) SetObjectCounter(v uint64) {
	m.mw.SetObjectCounter(m.id, v)
}

func (m *metricsWithID) AddToObjectCounter(delta int) {
	m.mw.AddToObjectCounter(m.id, delta)
}

func (m *metricsWithID) AddToContainerSize(cnr string, size int64) {
	m.mw.AddToContainerSize(cnr, size)
}

func (m *metricsWithID) SetReadonly(readonly bool) {
	m.mw.SetReadonly(m.id, readonly)
}

// AddShard adds a new shard to the storage engine.
//
// Returns any error encountered that did not allow adding a shard.
// Otherwise returns the ID of the added shard.
func (e *StorageEngine) AddShard(opts ...shard.Option) (*shard.ID, error) {
	sh, err := e.createShard(opts)
	if err != nil {
		return nil, fmt.Errorf("could not create a shard: %w", err)
	}

	err = e.addShard(sh)
	if err != nil {
		return nil, fmt.Errorf("could not add %s shard: %w", sh.ID().String(), err)
	}

	if e.cfg.metrics != nil {
		e.cfg.metrics.SetReadonly(sh.ID().String(), sh.GetMode() != mode.ReadWrite)
	}

	return sh.ID(), nil
}

func (e *StorageEngine) createShard(opts []shard.Option) (*shard.Shard, error) {
	id, err := shard.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("could not generate shard ID: %w", err)
	}

	opts = append([]shard.Option{
		shard.WithID(id),
		shard.WithLogger(e.log),
	}, opts...)

	e.mtx.RLock()

	var mw *metricsWithID
	if e.metrics != nil {
		mw = &metricsWithID{
			id: id.String(),
			mw: e.metrics,
		}
		opts = append(opts, shard.WithMetricsWriter(mw))
	}

	e.mtx.RUnlock()

	sh := shard.New(append(opts,
		shard.WithReportErrorFunc(e.reportShardErrorBackground),
	)...)

	if err := sh.UpdateID(); err != nil {
		return nil, fmt.Errorf("could not update shard ID: %w", err)
	}

	if mw != nil {
		mw.SetShardID(sh.ID().String())
	}

	return sh, nil
}

func (e *StorageEngine) addShard(sh *shard.Shard) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	pool, err := ants.NewPool(int(e.shardPoolSize), ants.WithNonblocking(true))
	if err != nil {
		return fmt.Errorf("could not create pool: %w", err)
	}

	strID := sh.ID().String()
	if _, ok := e.shards[strID]; ok {
		pool.Release()
		return fmt.Errorf("shard with id %s was already added", strID)
	}

	e.shards[strID] = shardWrapper{
		errorCount: atomic.NewUint32(0),
		Shard:      sh,
	}

	e.shardPools[strID] = pool

	return nil
}

// removeShards removes specified shards. Skips non-existent shards.
// Logs errors about shards that it could not Close after the removal.
func (e *StorageEngine) removeShards(ids ...string) {
	if len(ids) == 0 {
		return
	}

	ss := make([]hashedShard, 0, len(ids))

	e.mtx.Lock()
	for _, id := range ids {
		sh, found := e.shards[id]
		if !found {
			continue
		}

		ss = append(ss, hashedShard(sh))
		delete(e.shards, id)

		pool, ok := e.shardPools[id]
		if ok {
			pool.Release()
			delete(e.shardPools, id)
		}

		e.log.Info("shard has been removed",
			zap.String("id", id))
	}
	e.mtx.Unlock()

	for _, sh := range ss {
		err := sh.Close()
		if err != nil {
			e.log.Error("could not close removed shard",
				zap.Stringer("id", sh.ID()),
				zap.Error(err),
			)
		}
	}
}

// sortedShards returns shards in the order of HRW weights of their
// identifiers relative to the address.
func (e *StorageEngine) sortedShards(addr oid.Address) []hashedShard {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	ids := make([]string, 0, len(e.shards))
	for id := range e.shards {
		ids = append(ids, id)
	}

	hrw.SortSliceByValue(ids, hrw.Hash([]byte(addr.EncodeToString())))

	shards := make([]hashedShard, 0, len(ids))
	for i := range ids {
		shards = append(shards, hashedShard(e.shards[ids[i]]))
	}

	return shards
}

// unsortedShards returns all shards ordered by their identifiers.
func (e *StorageEngine) unsortedShards() []hashedShard {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	shards := make([]hashedShard, 0, len(e.shards))

	for _, sh := range e.shards {
		shards = append(shards, hashedShard(sh))
	}

	sort.Slice(shards, func(i, j int) bool {
		return shards[i].ID().String() < shards[j].ID().String()
	})

	return shards
}

func (e *StorageEngine) iterateOverSortedShards(addr oid.Address, handler func(int, hashedShard) (stop bool)) {
	for i, sh := range e.sortedShards(addr) {
		if handler(i, sh) {
			break
		}
	}
}

func (e *StorageEngine) iterateOverUnsortedShards(handler func(hashedShard) (stop bool)) {
	for _, sh := range e.unsortedShards() {
		if handler(sh) {
			break
		}
	}
}

// SetShardMode sets mode of the shard with provided identifier.
//
// Returns an error if shard mode was not set, or shard was not found in storage engine.
func (e *StorageEngine) SetShardMode(id *shard.ID, m mode.Mode, resetErrorCounter bool) error {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	for shID, sh := range e.shards {
		if id.String() == shID {
			if resetErrorCounter {
				sh.errorCount.Store(0)
			}
			return sh.SetMode(m)
		}
	}

	return errShardNotFound
}

// HandleNewEpoch notifies every shard about NewEpoch event.
func (e *StorageEngine) HandleNewEpoch(ctx context.Context, epoch uint64) {
	for _, sh := range e.unsortedShards() {
		sh.NotifyNewEpoch(ctx, epoch)
	}
}
