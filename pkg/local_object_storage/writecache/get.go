package writecache

import (
	"bytes"
	"errors"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"go.etcd.io/bbolt"
)

// Get returns object from write-cache.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing in write-cache.
func (c *cache) Get(addr oid.Address) (*object.Object, error) {
	data, err := c.getBytes(addr)
	if err != nil {
		return nil, err
	}

	// We unmarshal object instead of using cached value to avoid possibility
	// of unintentional object corruption by caller.
	obj := object.New()
	return obj, obj.Unmarshal(data)
}

func (c *cache) getBytes(addr oid.Address) ([]byte, error) {
	saddr := addr.EncodeToString()

	c.mtx.RLock()
	oi, ok := c.mem[saddr]
	c.mtx.RUnlock()
	if ok {
		// It is safe to use without mutex, as storage under data slices is not reused.
		return oi.data, nil
	}

	value, err := Get(c.db, []byte(saddr))
	if err == nil {
		c.flushed.Get(saddr)
		return value, nil
	}

	res, err := c.fsTree.Get(common.GetPrm{Address: addr, Raw: true})
	if err != nil {
		if errors.Is(err, apistatus.ErrObjectNotFound) {
			return nil, logicerr.Wrap(apistatus.ErrObjectNotFound)
		}
		return nil, err
	}

	c.flushed.Get(saddr)
	return res.RawData, nil
}

// Head returns object header from write-cache.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing in write-cache.
func (c *cache) Head(addr oid.Address) (*object.Object, error) {
	obj, err := c.Get(addr)
	if err != nil {
		return nil, err
	}

	return obj.CutPayload(), nil
}

// Get fetches object from the underlying database.
// Key should be a stringified address.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is missing in db.
func Get(db *bbolt.DB, key []byte) ([]byte, error) {
	var value []byte
	err := db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		if b == nil {
			return ErrNoDefaultBucket
		}
		value = b.Get(key)
		if value == nil {
			return logicerr.Wrap(apistatus.ErrObjectNotFound)
		}
		value = bytes.Clone(value)
		return nil
	})
	return value, err
}
