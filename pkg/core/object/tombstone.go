package object

import (
	"github.com/kestrelfs/kestrel-node/internal/protobuf"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// Tombstone is a payload of TOMBSTONE object: a list of objects of the same
// container marked as removed.
type Tombstone struct {
	exp     uint64
	splitID *SplitID
	members []oid.ID
}

// NewTombstone returns empty Tombstone.
func NewTombstone() *Tombstone {
	return new(Tombstone)
}

// ExpirationEpoch returns the last epoch the tombstone is kept.
func (t *Tombstone) ExpirationEpoch() uint64 {
	return t.exp
}

// SetExpirationEpoch sets the last epoch the tombstone is kept.
func (t *Tombstone) SetExpirationEpoch(v uint64) {
	t.exp = v
}

// SplitID returns split chain identifier if the tombstone removes
// a whole split object.
func (t *Tombstone) SplitID() *SplitID {
	return t.splitID
}

// SetSplitID sets split chain identifier.
func (t *Tombstone) SetSplitID(v *SplitID) {
	t.splitID = v
}

// Members returns identifiers of removed objects.
func (t *Tombstone) Members() []oid.ID {
	return t.members
}

// SetMembers sets identifiers of removed objects.
func (t *Tombstone) SetMembers(v ...oid.ID) {
	t.members = v
}

// Marshal encodes Tombstone into a binary form.
func (t *Tombstone) Marshal() []byte {
	var b []byte

	b = protobuf.AppendUint64Field(b, 1, t.exp)
	b = protobuf.AppendBytesField(b, 2, t.splitID.ToBytes())

	for i := range t.members {
		b = protobuf.AppendBytesField(b, 3, t.members[i][:])
	}

	return b
}

// Unmarshal decodes Tombstone from its binary form.
func (t *Tombstone) Unmarshal(data []byte) error {
	*t = Tombstone{}

	return protobuf.IterateFields(data, func(f protobuf.Field) error {
		var err error

		switch f.Num {
		case 1:
			t.exp, err = f.Uint64Value()
		case 2:
			var v []byte
			if v, err = f.BytesValue(); err == nil {
				t.splitID, err = NewSplitIDFromBytes(v)
			}
		case 3:
			var v []byte
			if v, err = f.BytesValue(); err == nil {
				var id oid.ID
				if err = id.Decode(v); err == nil {
					t.members = append(t.members, id)
				}
			}
		}

		return err
	})
}
