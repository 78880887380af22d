package placement

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/nspcc-dev/hrw"
)

// weightFunc calculates the HRW weight of the node.
type weightFunc func(netmap.NodeInfo) float64

// newWeightFunc returns weight function preferring nodes with bigger
// capacity and lower price relative to the given nodes. Nodes without
// declared capacity get zero weight, so they are ordered by hash only.
func newWeightFunc(ns netmap.Nodes) weightFunc {
	var (
		maxCapacity uint64
		minPrice    uint64
		priceSet    bool
	)

	for i := range ns {
		if c := ns[i].Capacity(); c > maxCapacity {
			maxCapacity = c
		}

		if p := ns[i].Price(); p > 0 && (!priceSet || p < minPrice) {
			minPrice = p
			priceSet = true
		}
	}

	capNorm := func(v uint64) float64 {
		if maxCapacity == 0 {
			return 0
		}

		return float64(v) / float64(maxCapacity)
	}

	priceNorm := func(v uint64) float64 {
		if v == 0 {
			return 1
		}

		return float64(minPrice) / float64(v)
	}

	return func(n netmap.NodeInfo) float64 {
		return capNorm(n.Capacity()) * priceNorm(n.Price())
	}
}

func meanWeight(ns netmap.Nodes, wf weightFunc) float64 {
	if len(ns) == 0 {
		return 0
	}

	var sum float64
	for i := range ns {
		sum += wf(ns[i])
	}

	return sum / float64(len(ns))
}

// sortKeys sorts keys by HRW. Weights are taken into account only if they
// differ, uniform weights carry no preference.
func sortKeys(keys []string, weights []float64, pivot uint64) {
	for i := 1; i < len(weights); i++ {
		if weights[i] != weights[0] {
			hrw.SortSliceByWeightValue(keys, weights, pivot)
			return
		}
	}

	hrw.SortSliceByValue(keys, pivot)
}
