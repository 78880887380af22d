package blobovnicza

import (
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
)

// Exists check if object with the specified address is stored in b.
func (b *Blobovnicza) Exists(addr oid.Address) (bool, error) {
	var (
		exists  bool
		addrKey = addressKey(addr)
	)

	err := b.boltDB.View(func(tx *bbolt.Tx) error {
		return b.iterateAllBuckets(tx, func(_, _ uint64, buck *bbolt.Bucket) (bool, error) {
			exists = buck.Get(addrKey) != nil
			return exists, nil
		})
	})

	return exists, err
}
