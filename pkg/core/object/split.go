package object

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kestrelfs/kestrel-node/internal/protobuf"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// SplitID is an identifier of the split chain shared by all its parts.
type SplitID struct {
	uuid uuid.UUID
}

// NewSplitID returns random split identifier.
func NewSplitID() *SplitID {
	return &SplitID{uuid: uuid.New()}
}

// NewSplitIDFromBytes decodes split identifier from its binary form.
func NewSplitIDFromBytes(v []byte) (*SplitID, error) {
	u, err := uuid.FromBytes(v)
	if err != nil {
		return nil, fmt.Errorf("invalid split ID: %w", err)
	}

	return &SplitID{uuid: u}, nil
}

// NewSplitIDFromString decodes split identifier from its text form.
func NewSplitIDFromString(s string) (*SplitID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid split ID: %w", err)
	}

	return &SplitID{uuid: u}, nil
}

// ToBytes returns binary form of the identifier. Nil SplitID returns nil.
func (id *SplitID) ToBytes() []byte {
	if id == nil {
		return nil
	}

	b := id.uuid
	return b[:]
}

// String returns text form of the identifier.
func (id *SplitID) String() string {
	if id == nil {
		return ""
	}

	return id.uuid.String()
}

// Equals checks whether two split identifiers are the same.
func (id *SplitID) Equals(other *SplitID) bool {
	if id == nil || other == nil {
		return id == other
	}

	return id.uuid == other.uuid
}

// SplitInfo describes known parts of a virtual (split) object.
type SplitInfo struct {
	splitID  *SplitID
	lastPart oid.ID
	link     oid.ID
}

// NewSplitInfo returns empty SplitInfo.
func NewSplitInfo() *SplitInfo {
	return new(SplitInfo)
}

// SplitID returns identifier of the split chain.
func (s *SplitInfo) SplitID() *SplitID {
	return s.splitID
}

// SetSplitID sets identifier of the split chain.
func (s *SplitInfo) SetSplitID(v *SplitID) {
	s.splitID = v
}

// LastPart returns identifier of the last part of the chain. The second
// value is false if it is unknown.
func (s *SplitInfo) LastPart() (oid.ID, bool) {
	return s.lastPart, !s.lastPart.IsZero()
}

// SetLastPart sets identifier of the last part of the chain.
func (s *SplitInfo) SetLastPart(v oid.ID) {
	s.lastPart = v
}

// Link returns identifier of the link object. The second value is false if
// it is unknown.
func (s *SplitInfo) Link() (oid.ID, bool) {
	return s.link, !s.link.IsZero()
}

// SetLink sets identifier of the link object.
func (s *SplitInfo) SetLink(v oid.ID) {
	s.link = v
}

// Marshal encodes SplitInfo into a binary form.
func (s *SplitInfo) Marshal() []byte {
	var b []byte

	b = protobuf.AppendBytesField(b, 1, s.splitID.ToBytes())

	if !s.lastPart.IsZero() {
		b = protobuf.AppendBytesField(b, 2, s.lastPart[:])
	}

	if !s.link.IsZero() {
		b = protobuf.AppendBytesField(b, 3, s.link[:])
	}

	return b
}

// Unmarshal decodes SplitInfo from its binary form.
func (s *SplitInfo) Unmarshal(data []byte) error {
	*s = SplitInfo{}

	return protobuf.IterateFields(data, func(f protobuf.Field) error {
		v, err := f.BytesValue()
		if err != nil {
			return err
		}

		switch f.Num {
		case 1:
			s.splitID, err = NewSplitIDFromBytes(v)
		case 2:
			err = s.lastPart.Decode(v)
		case 3:
			err = s.link.Decode(v)
		}

		return err
	})
}

// SplitInfoError is returned by raw Head and Get requests of a virtual
// object. It carries the known parts of the split chain.
type SplitInfoError struct {
	si *SplitInfo
}

const splitInfoErrorMsg = "object not found, split info has been provided"

// NewSplitInfoError wraps SplitInfo into the error.
func NewSplitInfoError(v *SplitInfo) *SplitInfoError {
	return &SplitInfoError{si: v}
}

// Error implements error interface.
func (s *SplitInfoError) Error() string {
	return splitInfoErrorMsg
}

// SplitInfo returns split information carried by the error.
func (s *SplitInfoError) SplitInfo() *SplitInfo {
	return s.si
}
