package meta

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"go.etcd.io/bbolt"
)

// DeleteRes groups the resulting values of Delete operation.
type DeleteRes struct {
	rawRemoved   uint64
	removedSizes []uint64
}

// RawObjectsRemoved returns the number of removed raw objects.
func (d DeleteRes) RawObjectsRemoved() uint64 {
	return d.rawRemoved
}

// RemovedObjectSizes returns the sizes of removed objects.
// The order of the sizes is the same as in addresses'
// slice that was provided in the params.
func (d DeleteRes) RemovedObjectSizes() []uint64 {
	return d.removedSizes
}

// Delete removed object records from metabase indexes. Missing objects
// are skipped. Graveyard records are kept, so removed objects stay removed.
func (db *DB) Delete(addrs []oid.Address) (DeleteRes, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return DeleteRes{}, ErrDegradedMode
	} else if db.mode.ReadOnly() {
		return DeleteRes{}, ErrReadOnlyMode
	}

	var (
		rawRemoved uint64
		sizes      = make([]uint64, len(addrs))
	)

	err := db.boltDB.Update(func(tx *bbolt.Tx) error {
		for i := range addrs {
			removed, size, err := db.delete(tx, addrs[i])
			if err != nil {
				return fmt.Errorf("delete %s: %w", addrs[i], err)
			}

			if removed {
				rawRemoved++
				sizes[i] = size
			}
		}

		return nil
	})
	if err == nil {
		for i := range addrs {
			storagelog.Write(db.log,
				storagelog.AddressField(addrs[i]),
				storagelog.OpField("metabase DELETE"))
		}
	}

	return DeleteRes{
		rawRemoved:   rawRemoved,
		removedSizes: sizes,
	}, err
}

// delete removes object indexes from the metabase. Returns true if the
// object was stored physically and its payload size.
func (db *DB) delete(tx *bbolt.Tx, addr oid.Address) (bool, uint64, error) {
	cnr := addr.Container()
	key := objectKey(addr.Object())
	addrKey := addressKey(addr)

	// the object is not garbage anymore
	if garbageBKT := tx.Bucket(garbageBucketName); garbageBKT != nil {
		if err := garbageBKT.Delete(addrKey); err != nil {
			return false, 0, err
		}
	}

	data := physicalHeader(tx, cnr, key)
	if data == nil {
		return false, 0, nil
	}

	obj := object.New()
	if err := obj.Unmarshal(data); err != nil {
		return false, 0, fmt.Errorf("decode header: %w", err)
	}

	for _, name := range [][]byte{
		primaryBucketName(cnr),
		tombstoneBucketName(cnr),
		smallBucketName(cnr),
	} {
		if err := delFromBucket(tx, name, key); err != nil {
			return false, 0, err
		}
	}

	rootBKT := tx.Bucket(rootBucketName(cnr))
	if rootBKT != nil && !isVirtualRoot(rootBKT.Get(key)) {
		if err := rootBKT.Delete(key); err != nil {
			return false, 0, err
		}
	}

	if err := deleteFromParentIndex(tx, obj); err != nil {
		return false, 0, err
	}

	if obj.Type() == object.TypeRegular {
		if err := changeContainerSize(tx, cnr, obj.PayloadSize(), false); err != nil {
			return false, 0, err
		}
	}

	return true, obj.PayloadSize(), nil
}

// deleteFromParentIndex removes the child record of the parent. If it was
// the last stored child, the virtual parent is removed too.
func deleteFromParentIndex(tx *bbolt.Tx, obj *object.Object) error {
	parID, ok := obj.ParentID()
	if !ok {
		return nil
	}

	addr := obj.Address()
	cnr := addr.Container()

	parentBKT := tx.Bucket(parentBucketName(cnr))
	if parentBKT == nil {
		return nil
	}

	parKey := objectKey(parID)

	children := parentBKT.Bucket(parKey)
	if children == nil {
		return nil
	}

	if err := children.Delete(objectKey(addr.Object())); err != nil {
		return err
	}

	if k, _ := children.Cursor().First(); k != nil {
		return nil
	}

	if err := parentBKT.DeleteBucket(parKey); err != nil {
		return err
	}

	return delFromBucket(tx, rootBucketName(cnr), parKey)
}

func delFromBucket(tx *bbolt.Tx, name, key []byte) error {
	bkt := tx.Bucket(name)
	if bkt == nil {
		return nil
	}

	return bkt.Delete(key)
}
