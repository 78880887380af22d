package placement

import (
	"crypto/sha256"
	"fmt"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

type netMapBuilder struct {
	nmSrc netmap.Source
}

type netMapSrc struct {
	netmap.Source

	nm *netmap.NetMap
}

// NewNetworkMapBuilder returns Builder over the fixed network map.
func NewNetworkMapBuilder(nm *netmap.NetMap) Builder {
	return &netMapBuilder{
		nmSrc: &netMapSrc{nm: nm},
	}
}

// NewNetworkMapSourceBuilder returns Builder over the latest network map of
// the source.
func NewNetworkMapSourceBuilder(nmSrc netmap.Source) Builder {
	return &netMapBuilder{
		nmSrc: nmSrc,
	}
}

func (s *netMapSrc) GetNetMap(uint64) (*netmap.NetMap, error) {
	return s.nm, nil
}

func (b *netMapBuilder) BuildPlacement(cnr cid.ID, obj *oid.ID, p netmap.PlacementPolicy) ([]netmap.Nodes, error) {
	nm, err := netmap.GetLatestNetworkMap(b.nmSrc)
	if err != nil {
		return nil, fmt.Errorf("could not get network map: %w", err)
	}

	binCnr := make([]byte, sha256.Size)
	cnr.Encode(binCnr)

	cn, err := ContainerNodes(nm, p, binCnr)
	if err != nil {
		return nil, fmt.Errorf("could not get container nodes: %w", err)
	}

	return BuildObjectPlacement(nm, cn, obj)
}

// BuildObjectPlacement sorts container nodes in the order of the object
// placement. Returns container nodes as is if id is nil.
func BuildObjectPlacement(nm *netmap.NetMap, cnrNodes []netmap.Nodes, id *oid.ID) ([]netmap.Nodes, error) {
	if id == nil {
		return cnrNodes, nil
	}

	binObj := make([]byte, sha256.Size)
	id.Encode(binObj)

	return PlacementVectors(nm, cnrNodes, binObj), nil
}

// FlattenNodes appends each row to the flat list.
func FlattenNodes(ns []netmap.Nodes) netmap.Nodes {
	var sz int

	for i := range ns {
		sz += len(ns[i])
	}

	result := make(netmap.Nodes, 0, sz)
	for i := range ns {
		result = append(result, ns[i]...)
	}

	return result
}
