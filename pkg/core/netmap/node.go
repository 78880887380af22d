package netmap

import (
	"bytes"
	"encoding/hex"
	"strconv"

	"github.com/nspcc-dev/hrw"
)

// NodeState is a state of the storage node in the network map.
type NodeState uint32

const (
	// StateOnline is a state of the node serving requests.
	StateOnline NodeState = iota
	// StateOffline is a state of the node not available in the network.
	StateOffline
	// StateMaintenance is a state of the node under maintenance.
	StateMaintenance
)

// ParseNodeState parses text form of the state.
func ParseNodeState(s string) (NodeState, bool) {
	switch s {
	case "ONLINE", "":
		return StateOnline, true
	case "OFFLINE":
		return StateOffline, true
	case "MAINTENANCE":
		return StateMaintenance, true
	default:
		return 0, false
	}
}

// String returns text form of the state.
func (s NodeState) String() string {
	switch s {
	case StateOnline:
		return "ONLINE"
	case StateOffline:
		return "OFFLINE"
	case StateMaintenance:
		return "MAINTENANCE"
	default:
		return "UNKNOWN"
	}
}

// Well-known node attributes.
const (
	AttrCapacity = "Capacity"
	AttrPrice    = "Price"
	AttrCountry  = "Country"
	AttrLocation = "Location"
)

// NodeAttribute is a key-value pair describing the storage node.
type NodeAttribute struct {
	Key   string
	Value string
}

// NodeInfo describes a single storage node in the network map.
type NodeInfo struct {
	PublicKeyBytes []byte
	Endpoints      []string
	Attrs          []NodeAttribute
	State          NodeState
}

// PublicKey returns public key bound to the storage node.
//
// Return value MUST NOT be mutated, make a copy first.
func (x NodeInfo) PublicKey() []byte {
	return x.PublicKeyBytes
}

// StringifyPublicKey returns hex form of the node public key.
func StringifyPublicKey(x NodeInfo) string {
	return hex.EncodeToString(x.PublicKeyBytes)
}

// IterateAddresses iterates over all announced network addresses
// and passes them into f. Breaks on f's true return.
func (x NodeInfo) IterateAddresses(f func(string) bool) {
	for i := range x.Endpoints {
		if f(x.Endpoints[i]) {
			return
		}
	}
}

// NumberOfAddresses returns number of announced network addresses.
func (x NodeInfo) NumberOfAddresses() int {
	return len(x.Endpoints)
}

// Attribute returns value of the node attribute or an empty string.
func (x NodeInfo) Attribute(key string) string {
	for i := range x.Attrs {
		if x.Attrs[i].Key == key {
			return x.Attrs[i].Value
		}
	}

	return ""
}

// Capacity returns node capacity in GB declared by the Capacity attribute.
func (x NodeInfo) Capacity() uint64 {
	return x.uintAttribute(AttrCapacity)
}

// Price returns storage price declared by the Price attribute.
func (x NodeInfo) Price() uint64 {
	return x.uintAttribute(AttrPrice)
}

func (x NodeInfo) uintAttribute(key string) uint64 {
	v := x.Attribute(key)
	if v == "" {
		return 0
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// IsOnline checks whether the node is in ONLINE state.
func (x NodeInfo) IsOnline() bool {
	return x.State == StateOnline
}

// Hash implements hrw.Hasher: nodes are ordered by the hash of their
// public keys.
func (x NodeInfo) Hash() uint64 {
	return hrw.Hash(x.PublicKeyBytes)
}

// Equal checks whether both nodes have the same public key.
func (x NodeInfo) Equal(other NodeInfo) bool {
	return bytes.Equal(x.PublicKeyBytes, other.PublicKeyBytes)
}

// Nodes is a list of storage nodes.
type Nodes []NodeInfo

// NetMap is an immutable snapshot of the storage nodes of the network at
// the particular epoch.
type NetMap struct {
	epoch uint64
	nodes Nodes
}

// NewNetMap constructs network map of the epoch.
func NewNetMap(epoch uint64, nodes Nodes) *NetMap {
	return &NetMap{epoch: epoch, nodes: nodes}
}

// Epoch returns epoch of the network map.
func (m *NetMap) Epoch() uint64 {
	return m.epoch
}

// Nodes returns all nodes of the network map. Must not be mutated.
func (m *NetMap) Nodes() Nodes {
	return m.nodes
}
