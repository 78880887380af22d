package writecache

import (
	"errors"
	"time"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	// ErrBigObject is returned when object is too big to be placed in cache.
	ErrBigObject = errors.New("too big object")
	// ErrOutOfSpace is returned when object size is bigger than the write-cache
	// can accept.
	ErrOutOfSpace = errors.New("no space left in the write cache")
)

// Put puts object to write-cache. data is the encoded object, it is
// calculated from obj when nil.
//
// Returns ErrReadOnly if write-cache is in R/O mode.
// Returns ErrOutOfSpace if saving an object leads to WC's size overflow.
// Returns ErrBigObject if an objects exceeds maximum object size.
func (c *cache) Put(addr oid.Address, obj *object.Object, data []byte) error {
	c.modeMtx.RLock()
	defer c.modeMtx.RUnlock()
	if c.readOnly() {
		return ErrReadOnly
	}

	if data == nil {
		data = obj.Marshal()
	}

	sz := uint64(len(data))
	if sz > c.maxObjectSize {
		return ErrBigObject
	}

	oi := objectInfo{
		addr: addr.EncodeToString(),
		obj:  obj,
		data: data,
	}

	start := time.Now()

	if sz < c.smallObjectSize {
		if c.putToMemory(oi) {
			c.metrics.Put(time.Since(start), true, StorageTypeMemory)
			return nil
		}

		err := c.putSmall(oi)
		c.metrics.Put(time.Since(start), err == nil, StorageTypeDB)
		return err
	}

	err := c.putBig(addr, oi)
	c.metrics.Put(time.Since(start), err == nil, StorageTypeFSTree)
	return err
}

func (c *cache) putToMemory(oi objectInfo) bool {
	sz := uint64(len(oi.data))

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.mem[oi.addr]; ok {
		return true
	}

	if c.curMemSize+sz > c.maxMemSize {
		return false
	}

	c.curMemSize += sz
	c.mem[oi.addr] = oi

	storagelog.Write(c.log,
		zap.String("address", oi.addr),
		storagelog.StorageTypeField(wcStorageType),
		storagelog.OpField("in-mem PUT"),
	)

	return true
}

// putSmall persists small object to the write-cache database.
func (c *cache) putSmall(obj objectInfo) error {
	cacheSize := c.estimateCacheSize()
	if c.maxCacheSize < c.incSizeDB(cacheSize) {
		return ErrOutOfSpace
	}

	var added bool
	err := c.db.Batch(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		key := []byte(obj.addr)
		if b.Get(key) != nil {
			return nil
		}

		added = true
		return b.Put(key, obj.data)
	})
	if err != nil {
		return err
	}

	if added {
		storagelog.Write(c.log,
			zap.String("address", obj.addr),
			storagelog.StorageTypeField(wcStorageType),
			storagelog.OpField("db PUT"),
		)
		c.objCounters.IncDB()
	}

	return nil
}

// putBig writes object to FSTree.
func (c *cache) putBig(addr oid.Address, obj objectInfo) error {
	cacheSz := c.estimateCacheSize()
	if c.maxCacheSize < c.incSizeFS(cacheSz) {
		return ErrOutOfSpace
	}

	if res, err := c.fsTree.Exists(common.ExistsPrm{Address: addr}); err == nil && res.Exists {
		return nil
	}

	_, err := c.fsTree.Put(common.PutPrm{Address: addr, RawData: obj.data, DontCompress: true})
	if err != nil {
		return err
	}

	c.objCounters.IncFS()
	storagelog.Write(c.log,
		storagelog.AddressField(addr),
		storagelog.StorageTypeField(wcStorageType),
		storagelog.OpField("fstree PUT"),
	)

	return nil
}
