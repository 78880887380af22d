package util

import (
	"bytes"
	"fmt"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/services/object_manager/placement"
)

// NodeKeys is an interface of the local node identity checker.
type NodeKeys interface {
	// IsLocalKey must return true if the key belongs to the local node.
	IsLocalKey([]byte) bool
}

// LocalKey is NodeKeys of the single known local public key.
type LocalKey []byte

// IsLocalKey checks whether the key equals to the local one.
func (k LocalKey) IsLocalKey(key []byte) bool {
	return bytes.Equal(k, key)
}

type localPlacement struct {
	builder placement.Builder

	netmapKeys NodeKeys
}

type remotePlacement struct {
	builder placement.Builder

	netmapKeys NodeKeys
}

// NewLocalPlacement creates, initializes and returns placement builder that
// forms placement only from the local node. Returns an error if the local
// node is not in the container placement.
func NewLocalPlacement(b placement.Builder, s NodeKeys) placement.Builder {
	return &localPlacement{
		builder:    b,
		netmapKeys: s,
	}
}

func (p *localPlacement) BuildPlacement(cnr cid.ID, obj *oid.ID, policy netmap.PlacementPolicy) ([]netmap.Nodes, error) {
	vs, err := p.builder.BuildPlacement(cnr, obj, policy)
	if err != nil {
		return nil, fmt.Errorf("(%T) could not build object placement: %w", p, err)
	}

	for i := range vs {
		for j := range vs[i] {
			if p.netmapKeys.IsLocalKey(vs[i][j].PublicKey()) {
				return []netmap.Nodes{{vs[i][j]}}, nil
			}
		}
	}

	return nil, fmt.Errorf("(%T) local node is outside of object placement", p)
}

// NewRemotePlacementBuilder creates, initializes and returns placement builder that
// excludes local node from any placement vector.
func NewRemotePlacementBuilder(b placement.Builder, s NodeKeys) placement.Builder {
	return &remotePlacement{
		builder:    b,
		netmapKeys: s,
	}
}

func (p *remotePlacement) BuildPlacement(cnr cid.ID, obj *oid.ID, policy netmap.PlacementPolicy) ([]netmap.Nodes, error) {
	vs, err := p.builder.BuildPlacement(cnr, obj, policy)
	if err != nil {
		return nil, fmt.Errorf("(%T) could not build object placement: %w", p, err)
	}

	for i := range vs {
		for j := 0; j < len(vs[i]); j++ {
			if p.netmapKeys.IsLocalKey(vs[i][j].PublicKey()) {
				vs[i] = append(vs[i][:j], vs[i][j+1:]...)
				j--
			}
		}
	}

	return vs, nil
}
