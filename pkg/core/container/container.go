package container

import (
	"errors"

	"github.com/kestrelfs/kestrel-node/internal/protobuf"
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
)

// ErrNotFound is returned by Source if the container is missing.
var ErrNotFound = errors.New("container not found")

// Attribute is a key-value pair of the container.
type Attribute struct {
	Key   string
	Value string
}

// Container describes a group of objects sharing the storage policy.
type Container struct {
	Owner      []byte
	Nonce      []byte
	Attributes []Attribute
	Policy     netmap.PlacementPolicy
}

// PlacementPolicy returns storage policy of the container.
func (c Container) PlacementPolicy() netmap.PlacementPolicy {
	return c.Policy
}

// Source is an interface that wraps
// basic container receiving method.
type Source interface {
	// Get reads the container from the storage by its identifier.
	// It returns the pointer to the requested container and any error encountered.
	//
	// Get must return exactly one non-nil value.
	// Get must return ErrNotFound if the container is not in the storage.
	//
	// Implementations must not retain the container pointer and modify
	// the container through it.
	Get(cid.ID) (*Container, error)
}

// CalculateID calculates container identifier from its binary form.
func CalculateID(c Container) cid.ID {
	return cid.FromBinary(c.Marshal())
}

// Marshal encodes container into a deterministic binary form.
func (c Container) Marshal() []byte {
	var b []byte

	b = protobuf.AppendBytesField(b, 1, c.Owner)
	b = protobuf.AppendBytesField(b, 2, c.Nonce)

	for i := range c.Attributes {
		var a []byte
		a = protobuf.AppendStringField(a, 1, c.Attributes[i].Key)
		a = protobuf.AppendStringField(a, 2, c.Attributes[i].Value)
		b = protobuf.AppendBytesField(b, 3, a)
	}

	return protobuf.AppendBytesField(b, 4, marshalPolicy(c.Policy))
}

func marshalPolicy(p netmap.PlacementPolicy) []byte {
	var b []byte

	for i := range p.Replicas {
		var r []byte
		r = protobuf.AppendUint64Field(r, 1, uint64(p.Replicas[i].Count))
		r = protobuf.AppendStringField(r, 2, p.Replicas[i].Selector)
		b = protobuf.AppendBytesField(b, 1, r)
	}

	b = protobuf.AppendUint64Field(b, 2, uint64(p.BackupFactor))

	for i := range p.Selectors {
		s := p.Selectors[i]

		var sb []byte
		sb = protobuf.AppendStringField(sb, 1, s.Name)
		sb = protobuf.AppendUint64Field(sb, 2, uint64(s.Count))
		sb = protobuf.AppendUint64Field(sb, 3, uint64(s.Clause))
		sb = protobuf.AppendStringField(sb, 4, s.Attribute)
		sb = protobuf.AppendStringField(sb, 5, s.Filter)
		b = protobuf.AppendBytesField(b, 3, sb)
	}

	for i := range p.Filters {
		b = protobuf.AppendBytesField(b, 4, marshalFilter(p.Filters[i]))
	}

	return b
}

func marshalFilter(f netmap.Filter) []byte {
	var b []byte

	b = protobuf.AppendStringField(b, 1, f.Name)
	b = protobuf.AppendStringField(b, 2, f.Key)
	b = protobuf.AppendUint64Field(b, 3, uint64(f.Op))
	b = protobuf.AppendStringField(b, 4, f.Value)

	for i := range f.Filters {
		b = protobuf.AppendBytesField(b, 5, marshalFilter(f.Filters[i]))
	}

	return b
}
