package meta

import (
	"encoding/binary"
	"errors"
	"fmt"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util"
	"go.etcd.io/bbolt"
)

var (
	ErrUnknownObjectType   = errors.New("unknown object type")
	ErrIncorrectRootObject = errors.New("invalid root object")
	errMissingContainer    = errors.New("missing container ID")
	errMissingID           = errors.New("missing object ID")
)

// Put saves object header in metabase. Object payload is expected to be cut.
//
// storageID is the locator of the object in the blob storage, nil if
// unknown.
//
// Returns an error of type apistatus.ErrObjectAlreadyRemoved if object has been placed in graveyard.
func (db *DB) Put(obj *object.Object, storageID []byte) error {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return ErrDegradedMode
	} else if db.mode.ReadOnly() {
		return ErrReadOnlyMode
	}

	err := db.boltDB.Batch(func(tx *bbolt.Tx) error {
		return db.put(tx, obj, storageID)
	})
	if err == nil {
		storagelog.Write(db.log,
			storagelog.AddressField(obj.Address()),
			storagelog.OpField("metabase PUT"),
			storagelog.StorageIDField(storageID))
	}

	return err
}

func (db *DB) put(tx *bbolt.Tx, obj *object.Object, id []byte) error {
	cnr, ok := obj.Container()
	if !ok {
		return errMissingContainer
	}

	if _, ok := obj.ID(); !ok {
		return errMissingID
	}

	addr := obj.Address()

	exists, err := db.exists(tx, addr)

	switch {
	case exists:
		return nil
	case errors.As(err, new(*object.SplitInfoError)):
		// virtual parent can't be stored physically
		return nil
	case errors.Is(err, apistatus.ErrObjectNotFound):
		// OK, we're putting here.
	case err != nil:
		return err // removed objects are not accepted
	}

	if par := obj.Parent(); par != nil {
		if _, ok := par.ID(); ok { // skip the first object without useful info
			parentSI, err := splitInfoFromObject(obj)
			if err != nil {
				return err
			}

			err = db.putParent(tx, par, parentSI)
			if err != nil {
				return err
			}
		}
	}

	err = putUniqueIndexes(tx, obj, id)
	if err != nil {
		return fmt.Errorf("can't put unique indexes: %w", err)
	}

	err = putParentIndex(tx, obj)
	if err != nil {
		return fmt.Errorf("can't put parent index: %w", err)
	}

	// update container volume size estimation
	if obj.Type() == object.TypeRegular {
		err = changeContainerSize(tx, cnr, obj.PayloadSize(), true)
		if err != nil {
			return err
		}
	}

	return nil
}

// putParent saves split info of the virtual parent merging it with the
// already known one.
func (db *DB) putParent(tx *bbolt.Tx, par *object.Object, si *object.SplitInfo) error {
	addr := par.Address()

	exists, err := db.exists(tx, addr)

	var siErr *object.SplitInfoError

	switch {
	case exists:
		return ErrIncorrectRootObject
	case errors.As(err, &siErr):
		si = util.MergeSplitInfo(si, siErr.SplitInfo())
	case errors.Is(err, apistatus.ErrObjectNotFound):
	case err != nil:
		return err
	}

	bkt, err := tx.CreateBucketIfNotExists(rootBucketName(addr.Container()))
	if err != nil {
		return fmt.Errorf("can't create root bucket: %w", err)
	}

	return bkt.Put(objectKey(addr.Object()), si.Marshal())
}

func putUniqueIndexes(tx *bbolt.Tx, obj *object.Object, id []byte) error {
	addr := obj.Address()
	cnr := addr.Container()
	objKey := objectKey(addr.Object())

	var name []byte

	switch obj.Type() {
	case object.TypeRegular:
		name = primaryBucketName(cnr)
	case object.TypeTombstone:
		name = tombstoneBucketName(cnr)
	default:
		return ErrUnknownObjectType
	}

	err := putInBucket(tx, name, objKey, obj.CutPayload().Marshal())
	if err != nil {
		return err
	}

	// index storageID if it is present
	if id != nil {
		err = putInBucket(tx, smallBucketName(cnr), objKey, id)
		if err != nil {
			return err
		}
	}

	// index root object
	if !obj.HasParent() {
		err = putInBucket(tx, rootBucketName(cnr), objKey, zeroValue)
		if err != nil {
			return err
		}
	}

	return nil
}

func putParentIndex(tx *bbolt.Tx, obj *object.Object) error {
	parID, ok := obj.ParentID()
	if !ok {
		return nil
	}

	addr := obj.Address()

	parentBucket, err := tx.CreateBucketIfNotExists(parentBucketName(addr.Container()))
	if err != nil {
		return fmt.Errorf("can't create parent bucket: %w", err)
	}

	children, err := parentBucket.CreateBucketIfNotExists(objectKey(parID))
	if err != nil {
		return fmt.Errorf("can't create children bucket: %w", err)
	}

	return children.Put(objectKey(addr.Object()), zeroValue)
}

func putInBucket(tx *bbolt.Tx, name, key, value []byte) error {
	bkt, err := tx.CreateBucketIfNotExists(name)
	if err != nil {
		return fmt.Errorf("can't create bucket %v: %w", name, err)
	}

	return bkt.Put(key, value)
}

func changeContainerSize(tx *bbolt.Tx, cnr cid.ID, delta uint64, increase bool) error {
	containerVolume, err := tx.CreateBucketIfNotExists(containerVolumeBucketName)
	if err != nil {
		return err
	}

	key := make([]byte, cidSize)
	cnr.Encode(key)

	size := parseContainerSize(containerVolume.Get(key))
	if increase {
		size += delta
	} else if size > delta {
		size -= delta
	} else {
		size = 0
	}

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, size)

	return containerVolume.Put(key, buf)
}

func parseContainerSize(v []byte) uint64 {
	if len(v) == 0 {
		return 0
	}

	return binary.LittleEndian.Uint64(v)
}

// splitInfoFromObject returns split info based on last or linking object.
func splitInfoFromObject(obj *object.Object) (*object.SplitInfo, error) {
	if obj.Parent() == nil {
		return nil, nil
	}

	info := object.NewSplitInfo()
	info.SetSplitID(obj.SplitID())

	id, ok := obj.ID()
	if !ok {
		return nil, errMissingID
	}

	switch {
	case isLinkObject(obj):
		info.SetLink(id)
	case isLastObject(obj):
		info.SetLastPart(id)
	default:
		return nil, ErrIncorrectRootObject // should never happen
	}

	return info, nil
}

// isLinkObject returns true if object contains parent header and list
// of children.
func isLinkObject(obj *object.Object) bool {
	return len(obj.Children()) > 0 && obj.Parent() != nil
}

// isLastObject returns true if object contains only parent header without list
// of children.
func isLastObject(obj *object.Object) bool {
	return len(obj.Children()) == 0 && obj.Parent() != nil
}
