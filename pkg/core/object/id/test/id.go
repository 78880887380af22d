package oidtest

import (
	"crypto/rand"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// ID returns random oid.ID.
func ID() oid.ID {
	var id oid.ID

	_, _ = rand.Read(id[:])

	return id
}

// Address returns random oid.Address.
func Address() oid.Address {
	return oid.NewAddress(cidtest.ID(), ID())
}

// AddressWithContainer returns random oid.Address in the given container.
func AddressWithContainer(cnr cid.ID) oid.Address {
	return oid.NewAddress(cnr, ID())
}
