package writecache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// store represents persistent storage with in-memory LRU cache
// for flushed items on top of it.
type store struct {
	// flushed contains addresses of objects that were already flushed to the main storage.
	// We use LRU cache instead of map here to facilitate removing of unused object in favour of
	// frequently read ones. The value is true for objects stored in the database.
	// MUST NOT be used inside bolt db transaction because it's eviction handler
	// removes untracked items from the database.
	flushed *lru.Cache[string, bool]
	db      *bbolt.DB

	// fsTree contains big files stored directly on file-system.
	fsTree *fstree.FSTree
}

const dbName = "small.bolt"

const defaultFlushedCapacity = 1 << 14

func (c *cache) openStore(readOnly bool) error {
	err := util.MkdirAllX(c.path, os.ModePerm)
	if err != nil {
		return err
	}

	c.db, err = OpenDB(c.path, readOnly)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}

	c.db.MaxBatchSize = c.maxBatchSize
	c.db.MaxBatchDelay = c.maxBatchDelay

	if !readOnly {
		err = c.db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(defaultBucket)
			return err
		})
		if err != nil {
			return fmt.Errorf("could not create default bucket: %w", err)
		}
	}

	c.fsTree = fstree.New(
		fstree.WithPath(c.path),
		fstree.WithPerm(os.ModePerm),
		fstree.WithDepth(1),
		fstree.WithDirNameLen(1),
		fstree.WithNoSync(c.noSync),
		fstree.WithLogger(c.log))
	if err := c.fsTree.Open(readOnly); err != nil {
		return fmt.Errorf("could not open FSTree: %w", err)
	}

	// Write-cache can be opened multiple times during `SetMode`.
	// flushed map must not be re-created in this case.
	if c.flushed == nil {
		c.flushed, _ = lru.NewWithEvict[string, bool](c.flushedCapacity, c.removeFlushed)
	}

	return nil
}

// removeFlushed removes an evicted object from the write-cache.
// The durable copy lives in the main storage already.
// It is used only as an evict callback to LRU cache, all additions to the
// cache are done with `c.modeMtx` taken in a writable mode.
func (c *cache) removeFlushed(key string, fromDB bool) {
	if c.readOnly() {
		return
	}

	if fromDB {
		c.deleteFromDB(key)
	} else {
		var addr oid.Address
		if err := addr.DecodeString(key); err != nil {
			c.log.Error("can't parse address", zap.String("address", key))
			return
		}

		c.deleteFromDisk(addr)
	}
}

func (c *cache) deleteFromDB(key string) bool {
	var removed bool

	err := c.db.Batch(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		removed = b.Get([]byte(key)) != nil
		if !removed {
			return nil
		}

		return b.Delete([]byte(key))
	})
	if err != nil {
		c.log.Error("can't remove object from write-cache database",
			zap.String("address", key),
			zap.Error(err))
		return false
	}

	if removed {
		storagelog.Write(c.log,
			zap.String("address", key),
			storagelog.StorageTypeField(wcStorageType),
			storagelog.OpField("db DELETE"),
		)
		c.objCounters.DecDB()
		c.metrics.Evict(StorageTypeDB)
	}

	return removed
}

func (c *cache) deleteFromDisk(addr oid.Address) bool {
	_, err := c.fsTree.Delete(common.DeletePrm{Address: addr})
	if err != nil {
		if !errors.Is(err, apistatus.ErrObjectNotFound) {
			c.log.Error("can't remove object from write-cache",
				zap.Stringer("address", addr),
				zap.Error(err))
		}

		return false
	}

	storagelog.Write(c.log,
		storagelog.AddressField(addr),
		storagelog.StorageTypeField(wcStorageType),
		storagelog.OpField("fstree DELETE"),
	)
	c.objCounters.DecFS()
	c.metrics.Evict(StorageTypeFSTree)

	return true
}

// OpenDB opens BoltDB instance for write-cache. Opens in read-only mode if ro is true.
func OpenDB(p string, ro bool) (*bbolt.DB, error) {
	return bbolt.Open(filepath.Join(p, dbName), os.ModePerm, &bbolt.Options{
		NoFreelistSync: true,
		NoSync:         true,
		ReadOnly:       ro,
	})
}
