package objecttest

import (
	"crypto/rand"
	"strconv"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// Object returns random regular object with a small payload.
func Object() *object.Object {
	return ObjectWithCID(cidtest.ID())
}

// ObjectWithCID returns random regular object of the given container.
func ObjectWithCID(cnr cid.ID) *object.Object {
	return ObjectWithPayload(cnr, RandomPayload(32))
}

// ObjectWithPayload returns object of the given container with the given
// payload. Checksums and identifier are calculated.
func ObjectWithPayload(cnr cid.ID, payload []byte) *object.Object {
	owner := make([]byte, 25)
	_, _ = rand.Read(owner)

	obj := object.New()
	obj.SetContainer(cnr)
	obj.SetOwnerID(owner)
	obj.SetAttributes(object.Attribute{Key: object.AttributeTimestamp, Value: strconv.Itoa(1700000000)})
	obj.SetPayload(payload)
	obj.CalculateAndSetPayloadChecksum()
	obj.CalculateAndSetID()

	return obj
}

// RandomPayload returns random bytes of the given size.
func RandomPayload(sz int) []byte {
	data := make([]byte, sz)
	_, _ = rand.Read(data)

	return data
}

// AddAttribute appends attribute to the object and recalculates its
// identifier.
func AddAttribute(obj *object.Object, key, val string) {
	obj.SetAttributes(append(obj.Attributes(), object.Attribute{Key: key, Value: val})...)
	obj.CalculateAndSetID()
}

// AddPayload sets payload of the given size and recalculates checksums and
// the identifier.
func AddPayload(obj *object.Object, size int) {
	obj.SetPayload(RandomPayload(size))
	obj.CalculateAndSetPayloadChecksum()
	obj.CalculateAndSetID()
}

// SetParent makes obj a part of the split chain of parent and recalculates
// its identifier.
func SetParent(obj, parent *object.Object, splitID *object.SplitID) {
	obj.SetParent(parent)
	obj.SetSplitID(splitID)
	obj.CalculateAndSetID()
}

// Tombstone returns TOMBSTONE object removing members of the container.
func Tombstone(cnr cid.ID, exp uint64, members ...oid.ID) *object.Object {
	ts := object.NewTombstone()
	ts.SetExpirationEpoch(exp)
	ts.SetMembers(members...)

	obj := ObjectWithPayload(cnr, ts.Marshal())
	obj.SetType(object.TypeTombstone)
	obj.CalculateAndSetID()

	return obj
}
