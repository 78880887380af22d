package client

import (
	"context"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/network"
)

// Client is an interface of the remote storage node object protocol.
type Client interface {
	// PutObject stores the object on the remote node only, without
	// further distribution.
	PutObject(ctx context.Context, obj *object.Object) error

	// GetObject reads the whole object.
	GetObject(ctx context.Context, addr oid.Address) (*object.Object, error)

	// HeadObject reads the object header. If raw is set and the object
	// is virtual, *object.SplitInfoError is returned.
	HeadObject(ctx context.Context, addr oid.Address, raw bool) (*object.Object, error)

	// GetRange reads ln bytes of the object payload starting from off.
	GetRange(ctx context.Context, addr oid.Address, off, ln uint64) ([]byte, error)

	// DeleteObject marks the object to be removed.
	DeleteObject(ctx context.Context, addr oid.Address) error
}

// MultiAddressClient is an interface of Client working over a group of
// network addresses of the same node.
type MultiAddressClient interface {
	Client

	// RawForAddress must call f with Client connected to the given address.
	RawForAddress(network.Address, func(Client) error) error
}

// NodeInfo groups information about storage node needed for Client construction.
type NodeInfo struct {
	addrGroup network.AddressGroup

	key []byte
}

// SetAddressGroup sets group of network addresses.
func (x *NodeInfo) SetAddressGroup(v network.AddressGroup) {
	x.addrGroup = v
}

// AddressGroup returns group of network addresses.
func (x NodeInfo) AddressGroup() network.AddressGroup {
	return x.addrGroup
}

// SetPublicKey sets public key in a binary format.
//
// Argument must not be mutated.
func (x *NodeInfo) SetPublicKey(v []byte) {
	x.key = v
}

// PublicKey returns public key in a binary format.
//
// Result must not be mutated.
func (x NodeInfo) PublicKey() []byte {
	return x.key
}

// String returns text representation of the node addresses.
func (x NodeInfo) String() string {
	return network.StringifyGroup(x.addrGroup)
}
