package replicator

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// Task represents group of Replicator task parameters.
type Task struct {
	quantity uint32

	addr oid.Address

	obj *object.Object

	nodes netmap.Nodes
}

// SetCopiesNumber sets number of copies to replicate.
func (t *Task) SetCopiesNumber(v uint32) {
	t.quantity = v
}

// SetObjectAddress sets address of local object.
func (t *Task) SetObjectAddress(v oid.Address) {
	t.addr = v
}

// SetObject sets object to avoid fetching it from the local storage.
func (t *Task) SetObject(obj *object.Object) {
	t.obj = obj
}

// SetNodes sets a list of potential object holders.
func (t *Task) SetNodes(v netmap.Nodes) {
	t.nodes = v
}

// CopiesNumber returns number of copies to replicate.
func (t Task) CopiesNumber() uint32 {
	return t.quantity
}

// ObjectAddress returns address of the local object.
func (t Task) ObjectAddress() oid.Address {
	return t.addr
}

// Nodes returns potential object holders.
func (t Task) Nodes() netmap.Nodes {
	return t.nodes
}
