package meta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
)

// GarbageObject represents descriptor of the
// object that has been marked with GC.
type GarbageObject struct {
	addr oid.Address
}

// Address returns garbage object address.
func (g GarbageObject) Address() oid.Address {
	return g.addr
}

// GarbageHandler is a GarbageObject handling function.
type GarbageHandler func(GarbageObject) error

// IterateOverGarbage iterates over all objects marked with GC mark.
//
// If h returns ErrInterruptIterator, nil returns immediately.
// Returns other errors of h directly.
func (db *DB) IterateOverGarbage(h GarbageHandler) error {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return ErrDegradedMode
	}

	return db.boltDB.View(func(tx *bbolt.Tx) error {
		return iterateBucket(tx, garbageBucketName, func(k, _ []byte) error {
			var g GarbageObject

			if err := decodeAddressFromKey(&g.addr, k); err != nil {
				return fmt.Errorf("could not parse address of the garbage object: %w", err)
			}

			return h(g)
		})
	})
}

// TombstonedObject represents descriptor of the
// object that has been covered with tombstone.
type TombstonedObject struct {
	addr           oid.Address
	tomb           oid.Address
	tombExpiration uint64
}

// Address returns tombstoned object address.
func (g TombstonedObject) Address() oid.Address {
	return g.addr
}

// Tombstone returns address of a tombstone that
// covers object.
func (g TombstonedObject) Tombstone() oid.Address {
	return g.tomb
}

// TombstoneExpiration returns tombstone's expiration. Zero means the
// tombstone does not expire.
func (g TombstonedObject) TombstoneExpiration() uint64 {
	return g.tombExpiration
}

// TombstonedHandler is a TombstonedObject handling function.
type TombstonedHandler func(object TombstonedObject) error

// IterateOverGraveyard iterates over all graves in DB.
//
// If h returns ErrInterruptIterator, nil returns immediately.
// Returns other errors of h directly.
func (db *DB) IterateOverGraveyard(h TombstonedHandler) error {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return ErrDegradedMode
	}

	return db.boltDB.View(func(tx *bbolt.Tx) error {
		return iterateBucket(tx, graveyardBucketName, func(k, v []byte) error {
			g, err := decodeGrave(k, v)
			if err != nil {
				return err
			}

			return h(g)
		})
	})
}

func decodeGrave(k, v []byte) (TombstonedObject, error) {
	var g TombstonedObject

	if err := decodeAddressFromKey(&g.addr, k); err != nil {
		return g, fmt.Errorf("could not parse address of the tombstoned object: %w", err)
	}

	if len(v) != addressKeySize+8 {
		return g, fmt.Errorf("invalid graveyard value length %d", len(v))
	}

	if err := decodeAddressFromKey(&g.tomb, v[:addressKeySize]); err != nil {
		return g, fmt.Errorf("could not parse address of the tombstone: %w", err)
	}

	g.tombExpiration = binary.LittleEndian.Uint64(v[addressKeySize:])

	return g, nil
}

func iterateBucket(tx *bbolt.Tx, name []byte, f func(k, v []byte) error) error {
	bkt := tx.Bucket(name)
	if bkt == nil {
		return nil
	}

	err := bkt.ForEach(f)
	if errors.Is(err, ErrInterruptIterator) {
		err = nil
	}

	return err
}

// DropExpiredGraves removes graveyard records of the tombstones expired
// before the epoch. Only records of objects without physical copies are
// dropped. Returns number of removed records.
func (db *DB) DropExpiredGraves(epoch uint64) (int, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return 0, ErrDegradedMode
	} else if db.mode.ReadOnly() {
		return 0, ErrReadOnlyMode
	}

	var dropped int

	err := db.boltDB.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(graveyardBucketName)
		if bkt == nil {
			return nil
		}

		var expired [][]byte

		err := bkt.ForEach(func(k, v []byte) error {
			g, err := decodeGrave(k, v)
			if err != nil {
				return err
			}

			if g.tombExpiration == 0 || g.tombExpiration >= epoch {
				return nil
			}

			if physicalHeader(tx, g.addr.Container(), objectKey(g.addr.Object())) != nil {
				return nil
			}

			expired = append(expired, bytes.Clone(k))

			return nil
		})
		if err != nil {
			return err
		}

		garbageBKT := tx.Bucket(garbageBucketName)

		for i := range expired {
			if err := bkt.Delete(expired[i]); err != nil {
				return err
			}

			if garbageBKT != nil {
				if err := garbageBKT.Delete(expired[i]); err != nil {
					return err
				}
			}
		}

		dropped = len(expired)

		return nil
	})

	return dropped, err
}
