package meta

import (
	"encoding/binary"
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"go.etcd.io/bbolt"
)

// InhumePrm encapsulates parameters for Inhume operation.
type InhumePrm struct {
	tomb    *oid.Address
	tombExp uint64

	target []oid.Address
}

// InhumeRes encapsulates results of Inhume operation.
type InhumeRes struct {
	availableInhumed uint64
	inhumedSize      uint64
}

// AvailableInhumed return number of physically stored objects
// that have been inhumed.
func (i InhumeRes) AvailableInhumed() uint64 {
	return i.availableInhumed
}

// InhumedSize returns total payload size of the inhumed physical objects.
func (i InhumeRes) InhumedSize() uint64 {
	return i.inhumedSize
}

// SetAddresses sets a list of object addresses that should be inhumed.
func (p *InhumePrm) SetAddresses(addrs ...oid.Address) {
	p.target = addrs
}

// SetTombstone sets tombstone address as the reason for inhume operation
// and its expiration epoch.
//
// addr should not be nil.
// Should not be called along with SetGCMark.
func (p *InhumePrm) SetTombstone(addr oid.Address, exp uint64) {
	p.tomb = &addr
	p.tombExp = exp
}

// SetGCMark marks the object to be physically removed.
//
// Should not be called along with SetTombstone.
func (p *InhumePrm) SetGCMark() {
	p.tomb = nil
}

var (
	// ErrTombstoneContainerMismatch is returned when the tombstone removes an
	// object of another container.
	ErrTombstoneContainerMismatch = logicerr.New("tombstone and inhumed object belong to different containers")

	errTombstoneItself = errors.New("tombstone can't remove itself")
)

// Inhume marks objects as removed but doesn't remove it from metabase.
//
// Objects covered with a tombstone are moved to graveyard and also marked
// as garbage, so their payloads are removed by GC. GC-marked objects are
// only marked as garbage.
func (db *DB) Inhume(prm InhumePrm) (InhumeRes, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return InhumeRes{}, ErrDegradedMode
	} else if db.mode.ReadOnly() {
		return InhumeRes{}, ErrReadOnlyMode
	}

	var res InhumeRes

	err := db.boltDB.Update(func(tx *bbolt.Tx) error {
		garbageBKT, err := tx.CreateBucketIfNotExists(garbageBucketName)
		if err != nil {
			return err
		}

		graveyardBKT, err := tx.CreateBucketIfNotExists(graveyardBucketName)
		if err != nil {
			return err
		}

		var value []byte
		if prm.tomb != nil {
			value = make([]byte, addressKeySize+8)
			copy(value, addressKey(*prm.tomb))
			binary.LittleEndian.PutUint64(value[addressKeySize:], prm.tombExp)
		}

		for i := range prm.target {
			addr := prm.target[i]
			if prm.tomb != nil {
				if addr.Container() != prm.tomb.Container() {
					return ErrTombstoneContainerMismatch
				}

				if addr == *prm.tomb {
					return logicerr.Wrap(fmt.Errorf("%w: %s", errTombstoneItself, addr))
				}
			}

			key := addressKey(addr)

			if data := physicalHeader(tx, addr.Container(), objectKey(addr.Object())); data != nil &&
				objectStatus(tx, addr) == statusAvailable {
				res.availableInhumed++

				hdr, err := db.get(tx, addr, false, true)
				if err == nil {
					res.inhumedSize += hdr.PayloadSize()
				}
			}

			if prm.tomb != nil {
				err = graveyardBKT.Put(key, value)
				if err != nil {
					return err
				}
			}

			// garbage collector removes physical objects of both
			// tombstoned and GC-marked objects
			err = garbageBKT.Put(key, zeroValue)
			if err != nil {
				return err
			}
		}

		return nil
	})

	return res, err
}
