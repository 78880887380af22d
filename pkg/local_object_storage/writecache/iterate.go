package writecache

import (
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"go.etcd.io/bbolt"
)

// ErrNoDefaultBucket is returned by IterateDB when default bucket for objects is missing.
var ErrNoDefaultBucket = errors.New("no default bucket")

// IterationPrm contains iteration parameters.
type IterationPrm struct {
	// Handler is called for every object stored in the write-cache. It must
	// not modify the write-cache. Returning common.ErrStop stops the
	// iteration without an error.
	Handler func(oid.Address, []byte) error
	// IgnoreErrors makes Iterate skip objects which can't be read.
	IgnoreErrors bool
}

// Iterate iterates over all objects present in write cache.
// This is very difficult to do correctly unless write-cache is put in read-only mode.
// Flushed objects are not iterated over.
func (c *cache) Iterate(prm IterationPrm) error {
	c.modeMtx.RLock()
	defer c.modeMtx.RUnlock()

	err := c.iterate(prm)
	if errors.Is(err, common.ErrStop) {
		return nil
	}

	return err
}

func (c *cache) iterate(prm IterationPrm) error {
	c.mtx.RLock()
	mem := make([]objectInfo, 0, len(c.mem))
	for _, oi := range c.mem {
		mem = append(mem, oi)
	}
	c.mtx.RUnlock()

	var addr oid.Address
	for i := range mem {
		if err := addr.DecodeString(mem[i].addr); err != nil {
			continue
		}

		if err := prm.Handler(addr, mem[i].data); err != nil {
			return err
		}
	}

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, data []byte) error {
			if _, ok := c.flushed.Peek(string(k)); ok {
				return nil
			}

			if err := addr.DecodeString(string(k)); err != nil {
				if prm.IgnoreErrors {
					return nil
				}
				return fmt.Errorf("could not parse object address: %w", err)
			}

			return prm.Handler(addr, data)
		})
	})
	if err != nil {
		return err
	}

	_, err = c.fsTree.Iterate(common.IteratePrm{
		IgnoreErrors: prm.IgnoreErrors,
		Handler: func(e common.IterationElement) error {
			if _, ok := c.flushed.Peek(e.Address.EncodeToString()); ok {
				return nil
			}

			return prm.Handler(e.Address, e.ObjectData)
		},
	})

	return err
}

// IterateDB iterates over all objects stored in bbolt.DB instance and passes them to f until error return.
// It is assumed that db is an underlying database of some WriteCache instance.
//
// Returns ErrNoDefaultBucket if there is no default bucket in db.
//
// DB must not be nil and should be opened.
func IterateDB(db *bbolt.DB, f func(oid.Address) error) error {
	return db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		if b == nil {
			return ErrNoDefaultBucket
		}

		var addr oid.Address

		return b.ForEach(func(k, _ []byte) error {
			err := addr.DecodeString(string(k))
			if err != nil {
				return fmt.Errorf("could not parse object address: %w", err)
			}

			return f(addr)
		})
	})
}
