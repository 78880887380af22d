package meta

import (
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

type filterGroup struct {
	rootOnly bool
	phyOnly  bool

	headerFilters object.SearchFilters
}

// Select returns list of addresses of objects that match search filters.
// Removed objects are not returned. Virtual parents of split objects are
// returned unless PHY filter is set.
func (db *DB) Select(cnr cid.ID, filters object.SearchFilters) ([]oid.Address, error) {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return nil, ErrDegradedMode
	}

	group := groupFilters(filters)

	var res []oid.Address

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		res = db.selectObjects(tx, cnr, group)

		return nil
	})

	return res, err
}

func (db *DB) selectObjects(tx *bbolt.Tx, cnr cid.ID, group filterGroup) []oid.Address {
	var res []oid.Address

	rootBKT := tx.Bucket(rootBucketName(cnr))

	for _, name := range [][]byte{primaryBucketName(cnr), tombstoneBucketName(cnr)} {
		bkt := tx.Bucket(name)
		if bkt == nil {
			continue
		}

		_ = bkt.ForEach(func(k, v []byte) error {
			if group.rootOnly && (rootBKT == nil || rootBKT.Get(k) == nil) {
				return nil
			}

			addr, ok := addressFromObjectKey(cnr, k)
			if !ok || objectStatus(tx, addr) != statusAvailable {
				return nil
			}

			if len(group.headerFilters) > 0 {
				hdr := object.New()
				if err := hdr.Unmarshal(v); err != nil {
					db.log.Debug("can't decode stored header",
						zap.Stringer("address", addr),
						zap.Error(err))
					return nil
				}

				if !matchHeader(hdr, group.headerFilters) {
					return nil
				}
			}

			res = append(res, addr)

			return nil
		})
	}

	if group.phyOnly || rootBKT == nil {
		return res
	}

	// virtual parents
	_ = rootBKT.ForEach(func(k, v []byte) error {
		if !isVirtualRoot(v) {
			return nil
		}

		addr, ok := addressFromObjectKey(cnr, k)
		if !ok || objectStatus(tx, addr) != statusAvailable {
			return nil
		}

		if len(group.headerFilters) > 0 {
			hdr := virtualHeader(tx, cnr, k)
			if hdr == nil || !matchHeader(hdr, group.headerFilters) {
				return nil
			}
		}

		res = append(res, addr)

		return nil
	})

	return res
}

func groupFilters(filters object.SearchFilters) filterGroup {
	var res filterGroup

	for i := range filters {
		switch filters[i].Key {
		case object.FilterRoot:
			res.rootOnly = true
		case object.FilterPhysical:
			res.phyOnly = true
		default:
			res.headerFilters = append(res.headerFilters, filters[i])
		}
	}

	return res
}

func matchHeader(hdr *object.Object, fs object.SearchFilters) bool {
	for i := range fs {
		if !fs[i].Match(hdr) {
			return false
		}
	}

	return true
}

func addressFromObjectKey(cnr cid.ID, k []byte) (oid.Address, bool) {
	var obj oid.ID
	if err := obj.Decode(k); err != nil {
		return oid.Address{}, false
	}

	return oid.NewAddress(cnr, obj), true
}
