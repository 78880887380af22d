package container

import (
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/stretchr/testify/require"
)

func TestCalculateID(t *testing.T) {
	c := Container{
		Owner: []byte("owner"),
		Nonce: []byte{1, 2, 3},
		Policy: netmap.PlacementPolicy{
			Replicas:  []netmap.ReplicaDescriptor{{Count: 2, Selector: "X"}},
			Selectors: []netmap.Selector{{Name: "X", Count: 2, Filter: netmap.MatchAll}},
		},
	}

	id := CalculateID(c)
	require.Equal(t, id, CalculateID(c))

	c.Policy.Replicas[0].Count = 3
	require.NotEqual(t, id, CalculateID(c))
}
