package writecache

import (
	"errors"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.uber.org/zap"
)

// initFlushMarks marks objects which are present in the main storage as
// flushed, objects removed from the main storage are deleted.
// `c.modeMtx` must be taken.
func (c *cache) initFlushMarks() {
	if c.metabase == nil || c.blobstor == nil {
		return
	}

	c.log.Info("filling flush marks for objects in FSTree")

	var toRemove []oid.Address
	_, _ = c.fsTree.Iterate(common.IteratePrm{
		IgnoreErrors: true,
		Handler: func(e common.IterationElement) error {
			flushed, needRemove := c.flushStatus(e.Address)
			if flushed {
				if needRemove {
					toRemove = append(toRemove, e.Address)
				} else {
					c.flushed.Add(e.Address.EncodeToString(), false)
				}
			}
			return nil
		},
	})

	for i := range toRemove {
		c.deleteFromDisk(toRemove[i])
	}

	c.log.Info("filling flush marks for objects in database")

	var lastKey []byte
	for {
		var m []flushTask
		m, lastKey = c.readDBBatch(lastKey, false)
		if len(m) == 0 {
			break
		}

		for i := range m {
			flushed, needRemove := c.flushStatus(m[i].obj.Address())
			if !flushed {
				continue
			}

			if needRemove {
				c.deleteFromDB(m[i].key)
			} else {
				c.flushed.Add(m[i].key, true)
			}
		}
	}

	c.log.Info("finished updating flush marks")
}

// flushStatus returns info about the object state in the main storage.
// First return value is true iff object exists.
// Second return value is true iff object can be safely removed.
func (c *cache) flushStatus(addr oid.Address) (bool, bool) {
	_, err := c.metabase.Exists(addr)
	if err != nil {
		needRemove := errors.Is(err, apistatus.ErrObjectAlreadyRemoved)
		if !needRemove && !errors.Is(err, apistatus.ErrObjectNotFound) {
			c.log.Debug("can't check object presence in the metabase",
				zap.Stringer("address", addr),
				zap.Error(err))
		}
		return needRemove, needRemove
	}

	sid, _ := c.metabase.StorageID(addr)
	res, err := c.blobstor.Exists(common.ExistsPrm{Address: addr, StorageID: sid})
	return err == nil && res.Exists, false
}
