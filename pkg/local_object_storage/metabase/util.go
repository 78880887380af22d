package meta

import (
	"bytes"
	"fmt"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
)

var (
	// graveyardBucketName stores rows with the objects that have been
	// covered with Tombstone objects. That objects should not be returned
	// from the node and should not be accepted by the node from other
	// nodes.
	graveyardBucketName = []byte{graveyardPrefix}
	// garbageBucketName stores rows with the objects that should be physically
	// deleted by the node (Garbage Collector routine).
	garbageBucketName         = []byte{garbagePrefix}
	containerVolumeBucketName = []byte{containerVolumePrefix}
	shardInfoBucket           = []byte{shardInfoPrefix}

	zeroValue = []byte{0xFF}
)

// Prefix bytes for database keys. All ids and addresses are encoded in binary
// unless specified otherwise.
const (
	// graveyardPrefix is used for the graveyard bucket.
	// 	Key: object address
	// 	Value: tombstone address + little-endian expiration epoch
	graveyardPrefix = iota
	// garbagePrefix is used for the garbage objects bucket.
	// 	Key: object address
	// 	Value: dummy value
	garbagePrefix
	// containerVolumePrefix is used for storing container size estimations.
	//	Key: container ID
	//  Value: container size in bytes as little-endian uint64
	containerVolumePrefix
	// shardInfoPrefix is used for storing shard ID and metabase version.
	shardInfoPrefix

	//======================
	// Unique index buckets.
	//======================

	// primaryPrefix is used for prefixing buckets containing objects of REGULAR type.
	//  Key: object ID
	//  Value: marshalled object header
	primaryPrefix
	// tombstonePrefix is used for prefixing buckets containing objects of TOMBSTONE type.
	//  Key: object ID
	//  Value: marshaled object header
	tombstonePrefix
	// smallPrefix is used for prefixing buckets mapping objects to the blobovniczas they are stored in.
	//  Key: object ID
	//  Value: blobovnicza ID
	smallPrefix
	// rootPrefix is used for prefixing buckets of root objects.
	//  Key: object ID
	//  Value: zeroValue for physical root objects, split info for virtual ones
	rootPrefix

	//====================
	// FKBT index buckets.
	//====================

	// parentPrefix is used for prefixing buckets mapping parent ID to the bucket of its children.
	//  Key: parent ID
	//  Value: bucket containing children IDs as keys
	parentPrefix
)

const (
	cidSize        = cid.Size
	bucketKeySize  = 1 + cidSize
	objectKeySize  = oid.Size
	addressKeySize = cidSize + objectKeySize
)

func bucketName(cnr cid.ID, prefix byte) []byte {
	key := make([]byte, bucketKeySize)
	key[0] = prefix
	cnr.Encode(key[1:])
	return key
}

// primaryBucketName returns <CID>.
func primaryBucketName(cnr cid.ID) []byte {
	return bucketName(cnr, primaryPrefix)
}

// tombstoneBucketName returns <CID>_TS.
func tombstoneBucketName(cnr cid.ID) []byte {
	return bucketName(cnr, tombstonePrefix)
}

// smallBucketName returns <CID>_small.
func smallBucketName(cnr cid.ID) []byte {
	return bucketName(cnr, smallPrefix)
}

// rootBucketName returns <CID>_root.
func rootBucketName(cnr cid.ID) []byte {
	return bucketName(cnr, rootPrefix)
}

// parentBucketName returns <CID>_parent.
func parentBucketName(cnr cid.ID) []byte {
	return bucketName(cnr, parentPrefix)
}

// addressKey returns key for K-V tables when key is a whole address.
func addressKey(addr oid.Address) []byte {
	return addr.Marshal()
}

// parses object address formed by addressKey.
func decodeAddressFromKey(dst *oid.Address, k []byte) error {
	if len(k) != addressKeySize {
		return fmt.Errorf("invalid length %d", len(k))
	}

	return dst.Unmarshal(k)
}

// objectKey returns key for K-V tables when key is an object id.
func objectKey(obj oid.ID) []byte {
	key := make([]byte, objectKeySize)
	obj.Encode(key)
	return key
}

func inBucket(tx *bbolt.Tx, name, key []byte) bool {
	bkt := tx.Bucket(name)
	if bkt == nil {
		return false
	}

	return bkt.Get(key) != nil
}

func getFromBucket(tx *bbolt.Tx, name, key []byte) []byte {
	bkt := tx.Bucket(name)
	if bkt == nil {
		return nil
	}

	return bkt.Get(key)
}

// physicalHeader returns stored header of the REGULAR or TOMBSTONE object.
func physicalHeader(tx *bbolt.Tx, cnr cid.ID, key []byte) []byte {
	data := getFromBucket(tx, primaryBucketName(cnr), key)
	if data == nil {
		data = getFromBucket(tx, tombstoneBucketName(cnr), key)
	}

	return data
}

// isPhysicalBucket checks whether the top-level bucket stores object
// headers and returns its container.
func isPhysicalBucket(name []byte, cnr *cid.ID) bool {
	if len(name) != bucketKeySize || (name[0] != primaryPrefix && name[0] != tombstonePrefix) {
		return false
	}

	return cnr.Decode(name[1:]) == nil
}

func isVirtualRoot(v []byte) bool {
	return v != nil && !bytes.Equal(v, zeroValue)
}
