package blobovnicza

import (
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
)

func (b *Blobovnicza) iterateBuckets(tx *bbolt.Tx, f func(uint64, uint64, *bbolt.Bucket) (bool, error)) error {
	return b.iterateBucketKeys(func(lower uint64, upper uint64, key []byte) (bool, error) {
		buck := tx.Bucket(key)
		if buck == nil {
			// expected to happen:
			//  - before initialization step (incorrect usage by design)
			//  - if DB is corrupted (in future this case should be handled)
			return false, fmt.Errorf("(%T) could not get bucket %s", b, stringifyBounds(lower, upper))
		}

		return f(lower, upper, buck)
	})
}

// iterateAllBuckets is the same as iterateBuckets but skips missing
// buckets. It is used on read-only databases created with another object
// size limit.
func (b *Blobovnicza) iterateAllBuckets(tx *bbolt.Tx, f func(uint64, uint64, *bbolt.Bucket) (bool, error)) error {
	err := tx.ForEach(func(_ []byte, buck *bbolt.Bucket) error {
		stop, err := f(0, 0, buck)
		if err != nil {
			return err
		} else if stop {
			return errStopBuckets
		}

		return nil
	})
	if errors.Is(err, errStopBuckets) {
		return nil
	}

	return err
}

var errStopBuckets = errors.New("stop bucket iteration")

func (b *Blobovnicza) iterateBucketKeys(f func(uint64, uint64, []byte) (bool, error)) error {
	return b.iterateBounds(func(lower, upper uint64) (bool, error) {
		return f(lower, upper, bucketKeyFromBounds(upper))
	})
}

func (b *Blobovnicza) iterateBounds(f func(uint64, uint64) (bool, error)) error {
	// the last bucket covers the object size limit
	lastBound := upperPowerOfTwo(b.objSizeLimit)

	for upper := firstBucketBound; upper <= lastBound; upper *= 2 {
		var lower uint64

		if upper == firstBucketBound {
			lower = 0
		} else {
			lower = upper/2 + 1
		}

		if stop, err := f(lower, upper); err != nil {
			return err
		} else if stop {
			break
		}
	}

	return nil
}

// IteratePrm groups the parameters of Iterate operation.
type IteratePrm struct {
	withoutData bool

	ignoreErrs bool

	handler func(oid.Address, []byte) error
}

// SetHandler sets handler to be called for each stored object. Returning
// ErrStopIteration stops Iterate without an error.
func (x *IteratePrm) SetHandler(f func(oid.Address, []byte) error) {
	x.handler = f
}

// WithoutData makes Iterate pass nil data to the handler.
func (x *IteratePrm) WithoutData() {
	x.withoutData = true
}

// IgnoreErrors makes Iterate skip keys that cannot be decoded or data that
// cannot be decompressed.
func (x *IteratePrm) IgnoreErrors() {
	x.ignoreErrs = true
}

// IterateRes groups the resulting values of Iterate operation.
type IterateRes struct{}

// ErrStopIteration may be returned from the iteration handler to stop
// Iterate without an error.
var ErrStopIteration = errors.New("stop iteration")

// Iterate iterates over all objects stored in Blobovnicza and passes their
// addresses and decompressed data to the handler.
func (b *Blobovnicza) Iterate(prm IteratePrm) (IterateRes, error) {
	err := b.boltDB.View(func(tx *bbolt.Tx) error {
		return b.iterateAllBuckets(tx, func(_, _ uint64, buck *bbolt.Bucket) (bool, error) {
			return false, buck.ForEach(func(k, v []byte) error {
				var addr oid.Address

				if err := addr.Unmarshal(k); err != nil {
					if prm.ignoreErrs {
						return nil
					}

					return fmt.Errorf("could not decode address key: %w", err)
				}

				var data []byte

				if !prm.withoutData {
					var err error

					data, err = b.decompress(v)
					if err != nil {
						if prm.ignoreErrs {
							return nil
						}

						return fmt.Errorf("could not decompress object %s: %w", addr, err)
					}
				}

				return prm.handler(addr, data)
			})
		})
	})
	if errors.Is(err, ErrStopIteration) {
		err = nil
	}

	return IterateRes{}, err
}

// IterateAddresses is a helper function which iterates over Blobovnicza
// and passes addresses of the objects to f.
func IterateAddresses(blz *Blobovnicza, f func(oid.Address) error) error {
	var prm IteratePrm

	prm.WithoutData()
	prm.SetHandler(func(addr oid.Address, _ []byte) error {
		return f(addr)
	})

	_, err := blz.Iterate(prm)

	return err
}
