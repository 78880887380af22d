package shard

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// ID represents Shard identifier.
//
// Each shard should have the unique ID within
// a single instance of local storage.
type ID []byte

// NewIDFromBytes constructs ID from byte slice.
func NewIDFromBytes(v []byte) *ID {
	id := ID(v)
	return &id
}

// GenerateID returns new random shard identifier.
func GenerateID() (*ID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	bin, err := u.MarshalBinary()
	if err != nil {
		return nil, err
	}

	return NewIDFromBytes(bin), nil
}

func (id ID) String() string {
	return base58.Encode(id)
}

// ID returns Shard identifier.
func (s *Shard) ID() *ID {
	return s.info.ID
}

// UpdateID reads shard ID saved in the metabase and updates it if it is missing.
func (s *Shard) UpdateID() (err error) {
	m := s.GetMode()
	if m.NoMetabase() {
		if s.info.ID == nil {
			s.info.ID, err = GenerateID()
		}

		return err
	}

	if err = s.metaBase.Open(m.ReadOnly()); err != nil {
		return err
	}
	defer func() {
		cErr := s.metaBase.Close()
		if err == nil {
			err = cErr
		}
	}()

	id, err := s.metaBase.ReadShardID()
	if err != nil {
		return fmt.Errorf("read shard ID: %w", err)
	}

	if len(id) != 0 {
		s.info.ID = NewIDFromBytes(id)
	}

	if s.info.ID == nil {
		if s.info.ID, err = GenerateID(); err != nil {
			return fmt.Errorf("generate shard ID: %w", err)
		}
	}

	s.log = s.log.With(zap.Stringer("shard_id", s.info.ID))
	s.metaBase.SetLogger(s.log)
	s.blobStor.SetLogger(s.log)
	if s.hasWriteCache() {
		s.writeCache.SetLogger(s.log)
	}

	if len(id) != 0 || m.ReadOnly() {
		return nil
	}

	return s.metaBase.WriteShardID(*s.info.ID)
}
