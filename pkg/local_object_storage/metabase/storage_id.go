package meta

import (
	"bytes"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
)

// StorageID returns storage descriptor for objects from the blobstor.
// It is put together with the object can makes get/delete operation faster.
// Nil result means the locator is unknown.
func (db *DB) StorageID(addr oid.Address) ([]byte, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return nil, ErrDegradedMode
	}

	var id []byte

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		id = db.storageID(tx, addr)

		return nil
	})

	return id, err
}

func (db *DB) storageID(tx *bbolt.Tx, addr oid.Address) []byte {
	storageID := getFromBucket(tx, smallBucketName(addr.Container()), objectKey(addr.Object()))
	if storageID == nil {
		return nil
	}

	return bytes.Clone(storageID)
}

// UpdateStorageID updates storage descriptor for objects from the blobstor.
func (db *DB) UpdateStorageID(addr oid.Address, id []byte) error {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return ErrDegradedMode
	} else if db.mode.ReadOnly() {
		return ErrReadOnlyMode
	}

	return db.boltDB.Batch(func(tx *bbolt.Tx) error {
		exists, err := db.exists(tx, addr)
		if err == nil && exists {
			err = putInBucket(tx, smallBucketName(addr.Container()), objectKey(addr.Object()), id)
		}

		return err
	})
}
