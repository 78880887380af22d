package object

import (
	"crypto/sha256"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/nspcc-dev/tzhash/tz"
)

// Type is an object type.
type Type uint32

const (
	// TypeRegular is an object carrying user data.
	TypeRegular Type = iota
	// TypeTombstone is an object whose payload lists removed objects.
	TypeTombstone
)

// String returns type name.
func (t Type) String() string {
	switch t {
	case TypeRegular:
		return "REGULAR"
	case TypeTombstone:
		return "TOMBSTONE"
	default:
		return "UNKNOWN"
	}
}

// Well-known attribute keys.
const (
	AttributeContentType = "Content-Type"
	AttributeFileName    = "FileName"
	AttributeTimestamp   = "Timestamp"
)

// Attribute is a key-value pair of the object header.
type Attribute struct {
	Key   string
	Value string
}

// Object represents object header and payload. Object is immutable once
// its identifier is calculated.
type Object struct {
	id  oid.ID
	cnr cid.ID

	owner []byte
	epoch uint64
	typ   Type
	attrs []Attribute

	payloadLen uint64
	checksum   []byte
	homoHash   []byte

	split splitHeader

	payload []byte
}

type splitHeader struct {
	parentID oid.ID
	parent   *Object
	previous oid.ID
	children []oid.ID
	splitID  *SplitID
}

// New returns new empty object.
func New() *Object {
	return new(Object)
}

// ID returns object identifier. The second value is false if the
// identifier is not set.
func (o *Object) ID() (oid.ID, bool) {
	return o.id, !o.id.IsZero()
}

// SetID sets object identifier.
func (o *Object) SetID(id oid.ID) {
	o.id = id
}

// ResetID unsets object identifier.
func (o *Object) ResetID() {
	o.id = oid.ID{}
}

// Container returns container identifier. The second value is false if the
// identifier is not set.
func (o *Object) Container() (cid.ID, bool) {
	return o.cnr, !o.cnr.IsZero()
}

// SetContainer sets container identifier.
func (o *Object) SetContainer(id cid.ID) {
	o.cnr = id
}

// Address returns object address. Both identifiers must be set.
func (o *Object) Address() oid.Address {
	return oid.NewAddress(o.cnr, o.id)
}

// OwnerID returns binary identifier of the object owner.
func (o *Object) OwnerID() []byte {
	return o.owner
}

// SetOwnerID sets binary identifier of the object owner.
func (o *Object) SetOwnerID(v []byte) {
	o.owner = v
}

// CreationEpoch returns epoch of the object creation.
func (o *Object) CreationEpoch() uint64 {
	return o.epoch
}

// SetCreationEpoch sets epoch of the object creation.
func (o *Object) SetCreationEpoch(v uint64) {
	o.epoch = v
}

// Type returns object type.
func (o *Object) Type() Type {
	return o.typ
}

// SetType sets object type.
func (o *Object) SetType(v Type) {
	o.typ = v
}

// Attributes returns object attributes.
func (o *Object) Attributes() []Attribute {
	return o.attrs
}

// SetAttributes sets object attributes.
func (o *Object) SetAttributes(v ...Attribute) {
	o.attrs = v
}

// Attribute returns value of the attribute with the given key or an empty
// string.
func (o *Object) Attribute(key string) string {
	for i := range o.attrs {
		if o.attrs[i].Key == key {
			return o.attrs[i].Value
		}
	}

	return ""
}

// PayloadSize returns declared payload length.
func (o *Object) PayloadSize() uint64 {
	return o.payloadLen
}

// SetPayloadSize sets declared payload length.
func (o *Object) SetPayloadSize(v uint64) {
	o.payloadLen = v
}

// PayloadChecksum returns SHA-256 checksum of the payload. The second
// value is false if the checksum is not set.
func (o *Object) PayloadChecksum() ([sha256.Size]byte, bool) {
	var cs [sha256.Size]byte
	if len(o.checksum) != sha256.Size {
		return cs, false
	}

	copy(cs[:], o.checksum)

	return cs, true
}

// SetPayloadChecksum sets SHA-256 checksum of the payload.
func (o *Object) SetPayloadChecksum(v [sha256.Size]byte) {
	o.checksum = v[:]
}

// PayloadHomomorphicHash returns Tillich-Zemor hash of the payload. The
// second value is false if the hash is not set.
func (o *Object) PayloadHomomorphicHash() ([tz.Size]byte, bool) {
	var h [tz.Size]byte
	if len(o.homoHash) != tz.Size {
		return h, false
	}

	copy(h[:], o.homoHash)

	return h, true
}

// SetPayloadHomomorphicHash sets Tillich-Zemor hash of the payload.
func (o *Object) SetPayloadHomomorphicHash(v [tz.Size]byte) {
	o.homoHash = v[:]
}

// Payload returns object payload.
func (o *Object) Payload() []byte {
	return o.payload
}

// SetPayload sets object payload. Payload length and checksums are not
// updated.
func (o *Object) SetPayload(v []byte) {
	o.payload = v
}

// Parent returns header of the parent object if the object is a part of
// a split chain that carries it.
func (o *Object) Parent() *Object {
	if o.split.parent == nil {
		return nil
	}

	par := *o.split.parent
	par.id = o.split.parentID

	return &par
}

// SetParent sets header of the parent object. Parent payload is dropped.
func (o *Object) SetParent(par *Object) {
	if par == nil {
		o.split.parent = nil
		return
	}

	o.split.parentID = par.id

	hdr := par.CutPayload()
	hdr.id = oid.ID{}
	o.split.parent = hdr
}

// ParentID returns identifier of the parent object. The second value is
// false if the object has no parent.
func (o *Object) ParentID() (oid.ID, bool) {
	return o.split.parentID, !o.split.parentID.IsZero()
}

// SetParentID sets identifier of the parent object.
func (o *Object) SetParentID(id oid.ID) {
	o.split.parentID = id
}

// PreviousID returns identifier of the previous part in the split chain.
func (o *Object) PreviousID() (oid.ID, bool) {
	return o.split.previous, !o.split.previous.IsZero()
}

// SetPreviousID sets identifier of the previous part in the split chain.
func (o *Object) SetPreviousID(id oid.ID) {
	o.split.previous = id
}

// Children returns identifiers of the split chain parts listed by the link
// object.
func (o *Object) Children() []oid.ID {
	return o.split.children
}

// SetChildren sets identifiers of the split chain parts.
func (o *Object) SetChildren(v ...oid.ID) {
	o.split.children = v
}

// SplitID returns identifier of the split chain or nil.
func (o *Object) SplitID() *SplitID {
	return o.split.splitID
}

// SetSplitID sets identifier of the split chain.
func (o *Object) SetSplitID(v *SplitID) {
	o.split.splitID = v
}

// HasParent checks whether the object is a part of the split chain.
func (o *Object) HasParent() bool {
	return o.split.splitID != nil || !o.split.parentID.IsZero() || o.split.parent != nil
}

// CutPayload returns shallow copy of the object without payload.
func (o *Object) CutPayload() *Object {
	cp := *o
	cp.payload = nil

	return &cp
}

// CalculateID computes object identifier from its header.
func (o *Object) CalculateID() oid.ID {
	return sha256.Sum256(o.marshalHeader())
}

// CalculateAndSetID computes and sets object identifier.
func (o *Object) CalculateAndSetID() {
	o.id = o.CalculateID()
}

// CalculateAndSetPayloadChecksum fills payload length and both payload
// checksums from the current payload.
func (o *Object) CalculateAndSetPayloadChecksum() {
	o.payloadLen = uint64(len(o.payload))
	o.SetPayloadChecksum(sha256.Sum256(o.payload))
	o.SetPayloadHomomorphicHash(tz.Sum(o.payload))
}
