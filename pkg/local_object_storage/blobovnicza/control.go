package blobovnicza

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Open opens an internal database at configured path with configured permissions.
//
// If the database file does not exist then it will be created automatically.
func (b *Blobovnicza) Open() error {
	b.log.Debug("creating directory for BoltDB",
		zap.String("path", b.path),
		zap.Bool("ro", b.boltOptions.ReadOnly),
	)

	var err error

	if !b.boltOptions.ReadOnly {
		err = os.MkdirAll(filepath.Dir(b.path), b.perm)
		if err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	b.log.Debug("opening BoltDB",
		zap.String("path", b.path),
		zap.Stringer("permissions", b.perm),
	)

	b.boltDB, err = bbolt.Open(b.path, b.perm, b.boltOptions)
	if err != nil {
		return fmt.Errorf("open BoltDB: %w", err)
	}

	return nil
}

// Init initializes internal database structure and restores the fullness
// counter.
//
// If Blobovnicza is already initialized, only the counter is restored.
func (b *Blobovnicza) Init() error {
	b.log.Debug("initializing...",
		zap.Uint64("object size limit", b.objSizeLimit),
		zap.Uint64("storage size limit", b.fullSizeLimit),
	)

	if !b.boltOptions.ReadOnly {
		err := b.boltDB.Update(func(tx *bbolt.Tx) error {
			return b.iterateBucketKeys(func(lower, upper uint64, key []byte) (bool, error) {
				b.log.Debug("creating bucket for size range",
					zap.String("range", stringifyBounds(lower, upper)),
				)

				_, err := tx.CreateBucketIfNotExists(key)
				if err != nil {
					return false, fmt.Errorf("(%T) could not create bucket for bounds [%d:%d]: %w",
						b, lower, upper, err)
				}

				return false, nil
			})
		})
		if err != nil {
			return err
		}
	}

	return b.syncFullnessCounter()
}

func (b *Blobovnicza) syncFullnessCounter() error {
	var sz uint64

	err := b.boltDB.View(func(tx *bbolt.Tx) error {
		return b.iterateAllBuckets(tx, func(_, _ uint64, buck *bbolt.Bucket) (bool, error) {
			return false, buck.ForEach(func(_, v []byte) error {
				sz += uint64(len(v))
				return nil
			})
		})
	})
	if err != nil {
		return fmt.Errorf("could not sync fullness counter: %w", err)
	}

	b.filled.Store(sz)

	return nil
}

// Close releases all internal database resources.
func (b *Blobovnicza) Close() error {
	if b.boltDB == nil {
		return nil
	}

	b.log.Debug("closing BoltDB",
		zap.String("path", b.path),
	)

	err := b.boltDB.Close()
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return nil
	}

	return err
}
