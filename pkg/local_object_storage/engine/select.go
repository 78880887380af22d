package engine

import (
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// Select selects the objects from local storage that match select parameters.
// Objects stored on several shards are returned once.
//
// Returns any error encountered that did not allow to completely select the objects.
//
// Returns an error if executions are blocked (see BlockExecution).
func (e *StorageEngine) Select(cnr cid.ID, filters object.SearchFilters) ([]oid.Address, error) {
	var res []oid.Address

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddSearchDuration)()
		}

		res = e._select(cnr, filters)

		return nil
	})

	return res, err
}

func (e *StorageEngine) _select(cnr cid.ID, filters object.SearchFilters) []oid.Address {
	addrList := make([]oid.Address, 0)
	uniqueMap := make(map[oid.Address]struct{})

	e.iterateOverUnsortedShards(func(sh hashedShard) (stop bool) {
		res, err := sh.Select(cnr, filters)
		if err != nil {
			e.reportShardError(sh, "could not select objects from shard", err)
			return false
		}

		for _, addr := range res {
			if _, ok := uniqueMap[addr]; !ok {
				uniqueMap[addr] = struct{}{}
				addrList = append(addrList, addr)
			}
		}

		return false
	})

	return addrList
}

// List returns up to limit addresses of the objects stored in the engine.
// Zero limit means no limit.
func (e *StorageEngine) List(limit uint64) ([]oid.Address, error) {
	var res []oid.Address

	err := e.execIfNotBlocked(func() error {
		if e.metrics != nil {
			defer elapsed(e.metrics.AddListObjectsDuration)()
		}

		res = e.list(limit)

		return nil
	})

	return res, err
}

func (e *StorageEngine) list(limit uint64) []oid.Address {
	addrList := make([]oid.Address, 0, limit)
	uniqueMap := make(map[oid.Address]struct{})
	ln := uint64(0)

	e.iterateOverUnsortedShards(func(sh hashedShard) (stop bool) {
		res, err := sh.List()
		if err != nil {
			e.reportShardError(sh, "could not list objects of shard", err)
			return false
		}

		for _, addr := range res {
			if _, ok := uniqueMap[addr]; !ok {
				uniqueMap[addr] = struct{}{}
				addrList = append(addrList, addr)

				ln++
				if limit > 0 && ln >= limit {
					return true
				}
			}
		}

		return false
	})

	return addrList
}
