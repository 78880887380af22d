package meta

import (
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"go.etcd.io/bbolt"
)

// Object statuses of the graveyard and garbage buckets.
const (
	statusAvailable = iota
	statusGCMarked
	statusTombstoned
)

// Exists returns ErrAlreadyRemoved if addr was marked as removed. Otherwise it
// returns true if addr is in primary index or false if it is not.
//
// Returns an object.SplitInfoError if the object is a virtual parent of
// the stored parts.
func (db *DB) Exists(addr oid.Address) (bool, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return false, ErrDegradedMode
	}

	var exists bool

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		var err error
		exists, err = db.exists(tx, addr)

		return err
	})

	return exists, err
}

func (db *DB) exists(tx *bbolt.Tx, addr oid.Address) (bool, error) {
	// check graveyard and object expiration first
	switch objectStatus(tx, addr) {
	case statusGCMarked:
		return false, logicerr.Wrap(apistatus.ErrObjectNotFound)
	case statusTombstoned:
		return false, logicerr.Wrap(apistatus.ErrObjectAlreadyRemoved)
	}

	cnr := addr.Container()
	key := objectKey(addr.Object())

	// if graveyard is empty, then check if object exists in primary bucket
	if physicalHeader(tx, cnr, key) != nil {
		return true, nil
	}

	// if primary bucket is empty, then check if object exists in parent bucket
	if si := getSplitInfo(tx, cnr, key); si != nil {
		return false, logicerr.Wrap(object.NewSplitInfoError(si))
	}

	// object is not found
	return false, nil
}

// objectStatus returns:
//   - statusAvailable if object is available for the user;
//   - statusGCMarked if object is marked with GC mark;
//   - statusTombstoned if object is covered with tombstone.
func objectStatus(tx *bbolt.Tx, addr oid.Address) int {
	key := addressKey(addr)

	if inBucket(tx, graveyardBucketName, key) {
		return statusTombstoned
	}

	if inBucket(tx, garbageBucketName, key) {
		return statusGCMarked
	}

	return statusAvailable
}

// getSplitInfo returns SplitInfo structure from root index. Returns nil
// if the object is not a virtual parent.
func getSplitInfo(tx *bbolt.Tx, cnr cid.ID, key []byte) *object.SplitInfo {
	rawSplitInfo := getFromBucket(tx, rootBucketName(cnr), key)
	if !isVirtualRoot(rawSplitInfo) {
		return nil
	}

	splitInfo := object.NewSplitInfo()

	if err := splitInfo.Unmarshal(rawSplitInfo); err != nil {
		return nil
	}

	return splitInfo
}
