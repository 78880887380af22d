package meta

import (
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"go.etcd.io/bbolt"
)

// Containers returns list of containers which have physically stored
// objects in the metabase.
func (db *DB) Containers() (list []cid.ID, err error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return nil, ErrDegradedMode
	}

	err = db.boltDB.View(func(tx *bbolt.Tx) error {
		list, err = db.containers(tx)

		return err
	})

	return list, err
}

func (db *DB) containers(tx *bbolt.Tx) ([]cid.ID, error) {
	result := make([]cid.ID, 0)
	unique := make(map[cid.ID]struct{})

	err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
		var cnr cid.ID

		if isPhysicalBucket(name, &cnr) {
			if _, ok := unique[cnr]; !ok {
				result = append(result, cnr)
				unique[cnr] = struct{}{}
			}
		}

		return nil
	})

	return result, err
}

// ContainerSize returns the sum of payload sizes of the stored REGULAR
// objects of the container.
func (db *DB) ContainerSize(id cid.ID) (size uint64, err error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return 0, ErrDegradedMode
	}

	err = db.boltDB.View(func(tx *bbolt.Tx) error {
		key := make([]byte, cidSize)
		id.Encode(key)

		size = parseContainerSize(getFromBucket(tx, containerVolumeBucketName, key))

		return nil
	})

	return size, err
}
