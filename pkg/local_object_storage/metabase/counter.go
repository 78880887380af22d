package meta

import (
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"go.etcd.io/bbolt"
)

// ObjectCounter returns the number of objects stored physically: regular
// objects and tombstones, virtual parents are not counted.
func (db *DB) ObjectCounter() (uint64, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return 0, ErrDegradedMode
	}

	var n uint64

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			var cnr cid.ID
			if isPhysicalBucket(name, &cnr) {
				n += uint64(b.Stats().KeyN)
			}

			return nil
		})
	})

	return n, err
}
