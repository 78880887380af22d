package meta

import (
	"fmt"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"go.etcd.io/bbolt"
)

// Get returns object header for specified address.
//
// "raw" flag controls virtual object processing, when false (default) a
// proper object header is returned, when true only SplitInfo of virtual
// object is returned.
//
// Returns an error of type apistatus.ErrObjectNotFound if object is missing in DB.
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if object has been placed in graveyard.
// Returns object.SplitInfoError if raw and the object is a virtual parent.
func (db *DB) Get(addr oid.Address, raw bool) (*object.Object, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return nil, ErrDegradedMode
	}

	var hdr *object.Object

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		var err error
		hdr, err = db.get(tx, addr, true, raw)

		return err
	})

	return hdr, err
}

func (db *DB) get(tx *bbolt.Tx, addr oid.Address, checkStatus, raw bool) (*object.Object, error) {
	if checkStatus {
		switch objectStatus(tx, addr) {
		case statusGCMarked:
			return nil, logicerr.Wrap(apistatus.ErrObjectNotFound)
		case statusTombstoned:
			return nil, logicerr.Wrap(apistatus.ErrObjectAlreadyRemoved)
		}
	}

	cnr := addr.Container()
	key := objectKey(addr.Object())

	if data := physicalHeader(tx, cnr, key); data != nil {
		obj := object.New()
		if err := obj.Unmarshal(data); err != nil {
			return nil, fmt.Errorf("decode header of %s: %w", addr, err)
		}

		return obj, nil
	}

	// if not found then check if object is a virtual
	return getVirtualObject(tx, cnr, key, raw)
}

func getVirtualObject(tx *bbolt.Tx, cnr cid.ID, key []byte, raw bool) (*object.Object, error) {
	if raw {
		return nil, getSplitInfoError(tx, cnr, key)
	}

	parentHdr := virtualHeader(tx, cnr, key)
	if parentHdr == nil {
		return nil, getSplitInfoError(tx, cnr, key)
	}

	return parentHdr, nil
}

// virtualHeader returns parent header carried by any of the stored children
// of the object. Returns nil if none of them carries it.
func virtualHeader(tx *bbolt.Tx, cnr cid.ID, key []byte) *object.Object {
	parentBucket := tx.Bucket(parentBucketName(cnr))
	if parentBucket == nil {
		return nil
	}

	children := parentBucket.Bucket(key)
	if children == nil {
		return nil
	}

	var res *object.Object

	_ = children.ForEach(func(childKey, _ []byte) error {
		data := physicalHeader(tx, cnr, childKey)
		if data == nil {
			return nil
		}

		child := object.New()
		if err := child.Unmarshal(data); err != nil {
			return nil
		}

		if par := child.Parent(); par != nil {
			res = par
			return ErrInterruptIterator
		}

		return nil
	})

	return res
}

func getSplitInfoError(tx *bbolt.Tx, cnr cid.ID, key []byte) error {
	splitInfo := getSplitInfo(tx, cnr, key)
	if splitInfo != nil {
		return logicerr.Wrap(object.NewSplitInfoError(splitInfo))
	}

	return logicerr.Wrap(apistatus.ErrObjectNotFound)
}
