package writecache

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	// flushBatchSize is amount of keys which will be read from cache to be flushed
	// to the main storage. It is used to reduce contention between cache put
	// and cache persist.
	flushBatchSize = 512
	// defaultFlushWorkersCount is number of workers for putting objects in main storage.
	defaultFlushWorkersCount = 20
	// defaultFlushInterval is default time interval between successive flushes.
	defaultFlushInterval = time.Second
)

// flushTask is an object read from the write-cache and waiting to be
// written to the main storage.
type flushTask struct {
	key    string
	obj    *object.Object
	data   []byte
	fromDB bool
}

// runFlushLoop starts background workers which periodically flush objects to the blobstor.
func (c *cache) runFlushLoop() {
	for i := 0; i < c.workersCount; i++ {
		c.wg.Add(1)
		go c.flushWorker(i)
	}

	c.wg.Add(1)
	go c.persistLoop()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		tt := time.NewTimer(defaultFlushInterval)
		defer tt.Stop()

		for {
			select {
			case <-tt.C:
				c.flushSmallObjects()
				c.flushBigObjects()
				tt.Reset(defaultFlushInterval)
			case <-c.closeCh:
				return
			}
		}
	}()
}

func (c *cache) flushSmallObjects() {
	var lastKey []byte
	for {
		select {
		case <-c.closeCh:
			return
		default:
		}

		c.modeMtx.RLock()
		if c.readOnly() {
			c.modeMtx.RUnlock()
			return
		}

		var m []flushTask
		m, lastKey = c.readDBBatch(lastKey, true)
		c.modeMtx.RUnlock()

		if len(m) == 0 {
			return
		}

		if !c.enqueue(m) {
			return
		}
	}
}

// enqueue passes tasks to the flush workers skipping objects which are
// being flushed already. Returns false if the write-cache is closed.
func (c *cache) enqueue(tasks []flushTask) bool {
	for i := range tasks {
		if _, loaded := c.processing.LoadOrStore(tasks[i].key, struct{}{}); loaded {
			continue
		}

		select {
		case c.flushCh <- tasks[i]:
		case <-c.closeCh:
			c.processing.Delete(tasks[i].key)
			return false
		}
	}

	return true
}

// readDBBatch reads next batch of objects from the database starting after
// lastKey. Flushed objects are skipped if skipFlushed is set. Returns the
// key to continue from.
func (c *cache) readDBBatch(lastKey []byte, skipFlushed bool) ([]flushTask, []byte) {
	var m []flushTask

	// We put objects in batches of fixed size to not interfere with main put cycle a lot.
	_ = c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		if b == nil {
			return nil
		}

		cs := b.Cursor()

		var k, v []byte

		if len(lastKey) == 0 {
			k, v = cs.First()
		} else {
			k, v = cs.Seek(lastKey)
			if bytes.Equal(k, lastKey) {
				k, v = cs.Next()
			}
		}

		for ; k != nil && len(m) < flushBatchSize; k, v = cs.Next() {
			lastKey = bytes.Clone(k)

			if skipFlushed {
				if _, ok := c.flushed.Peek(string(k)); ok {
					continue
				}
			}

			obj := object.New()
			if err := obj.Unmarshal(v); err != nil {
				c.log.Error("can't unmarshal an object from the DB",
					zap.String("address", string(k)),
					zap.Error(err))
				continue
			}

			m = append(m, flushTask{
				key:    string(k),
				obj:    obj,
				data:   bytes.Clone(v),
				fromDB: true,
			})
		}
		return nil
	})

	return m, lastKey
}

func (c *cache) flushBigObjects() {
	c.modeMtx.RLock()
	if c.readOnly() {
		c.modeMtx.RUnlock()
		return
	}

	var tasks []flushTask
	_, _ = c.fsTree.Iterate(common.IteratePrm{
		IgnoreErrors: true,
		Handler: func(e common.IterationElement) error {
			key := e.Address.EncodeToString()
			if _, ok := c.flushed.Peek(key); ok {
				return nil
			}

			obj := object.New()
			if err := obj.Unmarshal(e.ObjectData); err != nil {
				c.log.Error("can't unmarshal an object from the FSTree",
					zap.Stringer("address", e.Address),
					zap.Error(err))
				return nil
			}

			tasks = append(tasks, flushTask{key: key, obj: obj, data: e.ObjectData})
			if len(tasks) >= flushBatchSize {
				return common.ErrStop
			}
			return nil
		},
	})
	c.modeMtx.RUnlock()

	c.enqueue(tasks)
}

// flushWorker writes objects to the main storage.
func (c *cache) flushWorker(id int) {
	defer c.wg.Done()

	for {
		select {
		case t := <-c.flushCh:
			c.modeMtx.RLock()
			if !c.readOnly() {
				st := StorageTypeFSTree
				if t.fromDB {
					st = StorageTypeDB
				}

				err := c.flushObject(t.obj.Address(), t.obj, t.data, st)
				if err == nil {
					c.flushed.Add(t.key, t.fromDB)
				} else {
					c.log.Debug("worker can't flush an object",
						zap.Int("worker", id),
						zap.String("address", t.key),
						zap.Error(err))
				}
			}
			c.modeMtx.RUnlock()
			c.processing.Delete(t.key)
		case <-c.closeCh:
			return
		}
	}
}

// flushObject is used to write object directly to the main storage
// and register its storage descriptor in the metabase.
func (c *cache) flushObject(addr oid.Address, obj *object.Object, data []byte, st string) error {
	var err error
	defer func() { c.metrics.Flush(err == nil, st) }()

	res, err := c.blobstor.Put(common.PutPrm{
		Address: addr,
		Object:  obj,
		RawData: data,
	})
	if err != nil {
		if !errors.Is(err, common.ErrNoSpace) && !errors.Is(err, common.ErrReadOnly) {
			c.log.Error("can't flush an object to blobstor",
				zap.Stringer("address", addr),
				zap.Error(err))
		}
		return err
	}

	if c.metabase == nil {
		return nil
	}

	err = c.metabase.UpdateStorageID(addr, res.StorageID)
	if err != nil {
		if errors.Is(err, apistatus.ErrObjectNotFound) || errors.Is(err, apistatus.ErrObjectAlreadyRemoved) {
			err = nil
			return nil
		}

		return fmt.Errorf("update storage ID in the metabase: %w", err)
	}

	return nil
}

// Flush flushes all objects from the write-cache to the main storage.
// Write-cache must be in readonly mode to ensure correctness of an operation and
// to prevent interference with background flush workers.
func (c *cache) Flush(ignoreErrors bool) error {
	c.modeMtx.RLock()
	defer c.modeMtx.RUnlock()

	if !c.readOnly() {
		c.persistMemoryCache()
	}

	return c.flush(ignoreErrors)
}

func (c *cache) flush(ignoreErrors bool) error {
	var lastKey []byte
	for {
		var m []flushTask
		m, lastKey = c.readDBBatch(lastKey, true)
		if len(m) == 0 {
			break
		}

		for i := range m {
			err := c.flushObject(m[i].obj.Address(), m[i].obj, m[i].data, StorageTypeDB)
			if err != nil {
				if ignoreErrors {
					continue
				}
				return err
			}

			c.flushed.Add(m[i].key, true)
		}
	}

	_, err := c.fsTree.Iterate(common.IteratePrm{
		IgnoreErrors: ignoreErrors,
		Handler: func(e common.IterationElement) error {
			key := e.Address.EncodeToString()
			if _, ok := c.flushed.Peek(key); ok {
				return nil
			}

			obj := object.New()
			if err := obj.Unmarshal(e.ObjectData); err != nil {
				if ignoreErrors {
					return nil
				}
				return fmt.Errorf("decode object %s: %w", e.Address, err)
			}

			err := c.flushObject(e.Address, obj, e.ObjectData, StorageTypeFSTree)
			if err != nil {
				if ignoreErrors {
					return nil
				}
				return err
			}

			c.flushed.Add(key, false)
			return nil
		},
	})

	return err
}
