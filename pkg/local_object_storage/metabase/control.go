package meta

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var errBreakBucketForEach = errors.New("bucket ForEach break")

// Open boltDB instance for metabase.
func (db *DB) Open(readOnly bool) error {
	db.modeMtx.Lock()
	defer db.modeMtx.Unlock()

	err := db.openDB(readOnly)
	if err != nil {
		return err
	}

	if readOnly {
		db.mode = mode.ReadOnly
	} else {
		db.mode = mode.ReadWrite
	}

	return nil
}

func (db *DB) openDB(readOnly bool) error {
	err := util.MkdirAllX(filepath.Dir(db.info.Path), db.info.Permission)
	if err != nil {
		return fmt.Errorf("can't create dir %s for metabase: %w", db.info.Path, err)
	}

	db.log.Debug("created directory for Metabase", zap.String("path", db.info.Path))

	opts := *bbolt.DefaultOptions
	if db.boltOptions != nil {
		opts = *db.boltOptions
	}
	opts.ReadOnly = readOnly

	db.boltDB, err = bbolt.Open(db.info.Path, db.info.Permission, &opts)
	if err != nil {
		return fmt.Errorf("can't open boltDB database: %w", err)
	}
	db.boltDB.MaxBatchDelay = db.boltBatchDelay
	db.boltDB.MaxBatchSize = db.boltBatchSize

	db.log.Debug("opened boltDB instance for Metabase")

	db.log.Debug("checking metabase version")
	return db.boltDB.View(func(tx *bbolt.Tx) error {
		// The safest way to check if the metabase is fresh is to check if it has no buckets.
		// However, shard info can be present. So here we check that the number of buckets is
		// at most 1.
		var n int
		err := tx.ForEach(func([]byte, *bbolt.Bucket) error {
			if n++; n >= 2 { // do not iterate a lot
				return errBreakBucketForEach
			}
			return nil
		})

		if errors.Is(err, errBreakBucketForEach) {
			db.initialized = true
			err = nil
		}
		return err
	})
}

// Init initializes metabase. It creates static (CID-independent) buckets in underlying BoltDB instance.
//
// Does nothing if metabase has already been initialized and filled. To roll back the database to its initial state,
// use Reset.
func (db *DB) Init() error {
	return db.init(false)
}

// Reset resets metabase. Works similar to Init but cleans up all static buckets and
// removes all dynamic (CID-dependent) ones in non-blank BoltDB instances.
func (db *DB) Reset() error {
	db.modeMtx.RLock()
	defer db.modeMtx.RUnlock()

	if db.mode.NoMetabase() {
		return ErrDegradedMode
	}

	return db.init(true)
}

func (db *DB) init(reset bool) error {
	if db.boltDB.IsReadOnly() {
		return nil
	}

	mStaticBuckets := map[string]struct{}{
		string(containerVolumeBucketName): {},
		string(graveyardBucketName):       {},
		string(garbageBucketName):         {},
		string(shardInfoBucket):           {},
	}

	return db.boltDB.Update(func(tx *bbolt.Tx) error {
		if !reset {
			// Normal open, check version and update if not initialized.
			err := checkVersion(tx, db.initialized)
			if err != nil {
				return err
			}
		}

		for k := range mStaticBuckets {
			if reset {
				if tx.Bucket([]byte(k)) != nil && k != string(shardInfoBucket) {
					if err := tx.DeleteBucket([]byte(k)); err != nil {
						return fmt.Errorf("could not reset static bucket %s: %w", k, err)
					}
				}
			}

			_, err := tx.CreateBucketIfNotExists([]byte(k))
			if err != nil {
				return fmt.Errorf("could not create static bucket %s: %w", k, err)
			}
		}

		if !reset {
			return nil
		}

		var dynamic [][]byte
		err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if _, ok := mStaticBuckets[string(name)]; !ok {
				dynamic = append(dynamic, bytes.Clone(name))
			}

			return nil
		})
		if err != nil {
			return err
		}

		for i := range dynamic {
			if err := tx.DeleteBucket(dynamic[i]); err != nil {
				return err
			}
		}

		return updateVersion(tx, version)
	})
}

// Close closes boltDB instance.
func (db *DB) Close() error {
	if db.boltDB != nil {
		err := db.boltDB.Close()
		db.boltDB = nil
		return err
	}
	return nil
}
