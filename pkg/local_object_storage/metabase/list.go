package meta

import (
	"bytes"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
)

// Cursor is a type for continuous object listing.
type Cursor struct {
	bucketName     []byte
	inBucketOffset []byte
}

// ListWithCursor lists physical objects available in metabase starting from
// cursor. Includes objects of all types. Does not include inhumed objects.
// Use cursor value from response for consecutive requests.
//
// Returns ErrEndOfListing if there are no more objects to return or count
// parameter set to zero.
func (db *DB) ListWithCursor(count int, cursor *Cursor) ([]oid.Address, *Cursor, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return nil, nil, ErrDegradedMode
	}

	if count <= 0 {
		return nil, nil, ErrEndOfListing
	}

	var (
		res  []oid.Address
		next *Cursor
	)

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		var err error
		res, next, err = db.listWithCursor(tx, make([]oid.Address, 0, count), count, cursor)
		return err
	})

	return res, next, err
}

func (db *DB) listWithCursor(tx *bbolt.Tx, result []oid.Address, count int, cursor *Cursor) ([]oid.Address, *Cursor, error) {
	var (
		offset []byte
		c      = tx.Cursor()
		name   []byte
	)

	if cursor != nil {
		name = cursor.bucketName
		offset = cursor.inBucketOffset
	}

	var k []byte
	if name == nil {
		k, _ = c.First()
	} else {
		k, _ = c.Seek(name)
		if !bytes.Equal(k, name) {
			offset = nil
		}
	}

	for ; k != nil; k, _ = c.Next() {
		var cnr cid.ID
		if !isPhysicalBucket(k, &cnr) {
			offset = nil
			continue
		}

		bkt := tx.Bucket(k)
		if bkt != nil {
			result, offset = selectNFromBucket(tx, bkt, cnr, result, count, offset)
		}

		if len(result) >= count {
			return result, &Cursor{
				bucketName:     bytes.Clone(k),
				inBucketOffset: offset,
			}, nil
		}

		offset = nil
	}

	if len(result) == 0 {
		return nil, nil, ErrEndOfListing
	}

	// the next call returns ErrEndOfListing
	return result, &Cursor{bucketName: []byte{0xFF}}, nil
}

// selectNFromBucket similar to selectAllFromBucket but uses cursor to find
// object to start selecting from. Ignores inhumed objects.
func selectNFromBucket(tx *bbolt.Tx, bkt *bbolt.Bucket, cnr cid.ID, to []oid.Address, limit int, offset []byte) ([]oid.Address, []byte) {
	c := bkt.Cursor()

	var k []byte
	if offset == nil {
		k, _ = c.First()
	} else {
		k, _ = c.Seek(offset)
		if bytes.Equal(k, offset) {
			k, _ = c.Next()
		}
	}

	for ; k != nil; k, _ = c.Next() {
		if len(to) >= limit {
			break
		}

		var obj oid.ID
		if err := obj.Decode(k); err != nil {
			continue
		}

		addr := oid.NewAddress(cnr, obj)
		if objectStatus(tx, addr) != statusAvailable {
			continue
		}

		to = append(to, addr)
		offset = bytes.Clone(k)
	}

	return to, offset
}
