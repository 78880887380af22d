package writecache

import (
	"sort"
	"time"

	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const defaultPersistInterval = time.Second

// persistLoop persists object accumulated in memory to the database.
func (c *cache) persistLoop() {
	defer c.wg.Done()

	tick := time.NewTicker(defaultPersistInterval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			c.modeMtx.RLock()
			if !c.readOnly() {
				c.persistMemoryCache()
			}
			c.modeMtx.RUnlock()
		case <-c.closeCh:
			return
		}
	}
}

// persistMemoryCache moves all in-memory objects to the database. Objects
// which do not fit into the database are written to the main storage.
// `c.modeMtx` must be taken.
func (c *cache) persistMemoryCache() {
	c.persistMtx.Lock()
	defer c.persistMtx.Unlock()

	c.mtx.RLock()
	m := make([]objectInfo, 0, len(c.mem))
	for _, oi := range c.mem {
		m = append(m, oi)
	}
	c.mtx.RUnlock()

	if len(m) == 0 {
		return
	}

	sort.Slice(m, func(i, j int) bool { return m[i].addr < m[j].addr })

	start := time.Now()
	done := c.persistSmallObjects(m)
	c.log.Debug("persisted items to disk",
		zap.Duration("took", time.Since(start)),
		zap.Int("total", len(m)),
		zap.Int("persisted", len(done)))

	c.mtx.Lock()
	for _, oi := range done {
		if _, ok := c.mem[oi.addr]; ok {
			delete(c.mem, oi.addr)
			c.curMemSize -= uint64(len(oi.data))
		}

		storagelog.Write(c.log,
			zap.String("address", oi.addr),
			storagelog.StorageTypeField(wcStorageType),
			storagelog.OpField("in-mem DELETE persist"),
		)
	}
	c.mtx.Unlock()
}

// inMemory checks whether the object is still kept in memory, i.e. it was
// not deleted after objs snapshot had been taken.
func (c *cache) inMemory(addr string) bool {
	c.mtx.RLock()
	_, ok := c.mem[addr]
	c.mtx.RUnlock()
	return ok
}

// persistSmallObjects persists small objects to the write-cache database.
// Objects overflowing the write-cache are put to the main storage directly.
// Objects deleted concurrently are skipped. Returns objects that can be
// removed from memory.
func (c *cache) persistSmallObjects(objs []objectInfo) []objectInfo {
	cacheSize := c.estimateCacheSize()
	overflowIndex := len(objs)
	for i := range objs {
		newSize := c.incSizeDB(cacheSize)
		if c.maxCacheSize < newSize {
			overflowIndex = i
			break
		}
		cacheSize = newSize
	}

	added := make([]bool, overflowIndex)
	deleted := make([]bool, overflowIndex)
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		for i := 0; i < overflowIndex; i++ {
			key := []byte(objs[i].addr)
			if b.Get(key) != nil {
				continue
			}

			// Delete takes the object from memory first and then waits for
			// this transaction to remove it from the database
			if !c.inMemory(objs[i].addr) {
				deleted[i] = true
				continue
			}

			if err := b.Put(key, objs[i].data); err != nil {
				return err
			}
			added[i] = true
		}
		return nil
	})
	if err != nil {
		c.log.Error("can't persist objects to the write-cache database", zap.Error(err))
		overflowIndex = 0
	}

	done := make([]objectInfo, 0, len(objs))
	for i := 0; i < overflowIndex; i++ {
		if deleted[i] {
			continue
		}

		if added[i] {
			storagelog.Write(c.log,
				zap.String("address", objs[i].addr),
				storagelog.StorageTypeField(wcStorageType),
				storagelog.OpField("db PUT"),
			)
			c.objCounters.IncDB()
		}
		done = append(done, objs[i])
	}

	for i := overflowIndex; i < len(objs); i++ {
		if !c.inMemory(objs[i].addr) {
			continue
		}

		err := c.flushObject(objs[i].obj.Address(), objs[i].obj, objs[i].data, StorageTypeMemory)
		if err != nil {
			continue
		}
		done = append(done, objs[i])
	}

	if overflowIndex > 0 {
		c.metrics.SetObjectCount(StorageTypeDB, c.objCounters.DB())
	}

	return done
}
