package shard

import (
	"errors"
	"fmt"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
)

// Cursor is a type for continuous object listing.
type Cursor = meta.Cursor

// ErrEndOfListing is returned from object listing with cursor
// when storage can't return any more objects after provided
// cursor. Use nil cursor object to start listing again.
var ErrEndOfListing = meta.ErrEndOfListing

// List returns all objects physically stored in the Shard.
func (s *Shard) List() ([]oid.Address, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	if s.info.Mode.NoMetabase() {
		return nil, ErrDegradedMode
	}

	var (
		res    []oid.Address
		cursor *Cursor
	)

	for {
		addrs, c, err := s.metaBase.ListWithCursor(1000, cursor)
		if err != nil {
			if errors.Is(err, meta.ErrEndOfListing) {
				return res, nil
			}

			return nil, fmt.Errorf("could not list objects: %w", err)
		}

		res = append(res, addrs...)
		cursor = c
	}
}

// ListContainers returns identifiers of the containers with objects
// physically stored in the shard.
func (s *Shard) ListContainers() ([]cid.ID, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	if s.info.Mode.NoMetabase() {
		return nil, ErrDegradedMode
	}

	containers, err := s.metaBase.Containers()
	if err != nil {
		return nil, fmt.Errorf("could not get list of containers: %w", err)
	}

	return containers, nil
}

// ListWithCursor lists physical objects available in shard starting from
// cursor. Includes regular and tombstone objects. Does not include
// inhumed objects. Use cursor value from response for consecutive requests.
//
// Returns ErrEndOfListing if there are no more objects to return or count
// parameter set to zero.
func (s *Shard) ListWithCursor(count int, cursor *Cursor) ([]oid.Address, *Cursor, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	if s.info.Mode.NoMetabase() {
		return nil, nil, ErrDegradedMode
	}

	addrs, c, err := s.metaBase.ListWithCursor(count, cursor)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get list of objects: %w", err)
	}

	return addrs, c, nil
}
