package placement

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/nspcc-dev/hrw"
)

// ErrNotEnoughNodes is returned when the network map doesn't contain enough
// nodes satisfying the policy.
var ErrNotEnoughNodes = errors.New("not enough nodes to SELECT from")

// selectionContext holds intermediate results of the policy evaluation
// over the particular network map.
type selectionContext struct {
	nodes netmap.Nodes

	filters map[string]netmap.Filter

	// selections are nodes chosen by every selector, grouped into buckets.
	selections map[string][]netmap.Nodes

	pivot     []byte
	pivotHash uint64

	cbf uint32

	weight weightFunc
}

// ContainerNodes returns nodes of the container by its storage policy. pivot
// seeds the HRW sorting, so the same pivot gives the same result on the same
// network map. Only ONLINE nodes are taken into account.
func ContainerNodes(nm *netmap.NetMap, p netmap.PlacementPolicy, pivot []byte) ([]netmap.Nodes, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid placement policy: %w", err)
	}

	ctx := newSelectionContext(nm, p, pivot)

	for _, s := range p.Selectors {
		sel, err := ctx.getSelection(s)
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", s.Name, err)
		}

		ctx.selections[s.Name] = sel
	}

	result := make([]netmap.Nodes, len(p.Replicas))

	for i, r := range p.Replicas {
		if r.Selector != "" {
			result[i] = FlattenNodes(ctx.selections[r.Selector])
			continue
		}

		if len(p.Selectors) == 0 {
			sel, err := ctx.getSelection(netmap.Selector{
				Count:  r.Count,
				Filter: netmap.MatchAll,
			})
			if err != nil {
				return nil, fmt.Errorf("replica #%d: %w", i, err)
			}

			result[i] = FlattenNodes(sel)

			continue
		}

		for _, s := range p.Selectors {
			result[i] = append(result[i], FlattenNodes(ctx.selections[s.Name])...)
		}
	}

	return result, nil
}

// PlacementVectors sorts each container node vector by HRW over the pivot
// (usually object ID).
func PlacementVectors(nm *netmap.NetMap, vectors []netmap.Nodes, pivot []byte) []netmap.Nodes {
	wf := newWeightFunc(nm.Nodes())
	h := hrw.Hash(pivot)

	result := make([]netmap.Nodes, len(vectors))

	for i := range vectors {
		result[i] = make(netmap.Nodes, len(vectors[i]))
		copy(result[i], vectors[i])

		sortNodes(result[i], wf, h)
	}

	return result
}

func newSelectionContext(nm *netmap.NetMap, p netmap.PlacementPolicy, pivot []byte) *selectionContext {
	online := make(netmap.Nodes, 0, len(nm.Nodes()))

	for _, n := range nm.Nodes() {
		if n.IsOnline() {
			online = append(online, n)
		}
	}

	filters := make(map[string]netmap.Filter, len(p.Filters))
	for _, f := range p.Filters {
		filters[f.Name] = f
	}

	return &selectionContext{
		nodes:      online,
		filters:    filters,
		selections: make(map[string][]netmap.Nodes, len(p.Selectors)),
		pivot:      pivot,
		pivotHash:  hrw.Hash(pivot),
		cbf:        p.ContainerBackupFactor(),
		weight:     newWeightFunc(online),
	}
}

// nodesCount returns the amount of buckets and the minimum number of nodes
// in every bucket for the given selector.
func nodesCount(s netmap.Selector) (int, int) {
	switch s.Clause {
	case netmap.ClauseSame:
		return 1, int(s.Count)
	default:
		return int(s.Count), 1
	}
}

type bucket struct {
	attr  string
	nodes netmap.Nodes
}

// getSelection returns nodes grouped by the selector attribute.
func (c *selectionContext) getSelection(s netmap.Selector) ([]netmap.Nodes, error) {
	bucketCount, nodesInBucket := nodesCount(s)
	buckets := c.getSelectionBase(s)

	if len(buckets) < bucketCount {
		return nil, fmt.Errorf("%w: '%s'", ErrNotEnoughNodes, s.Name)
	}

	// We need deterministic output in case there is no pivot.
	// If pivot is set, buckets are sorted by HRW.
	if len(c.pivot) == 0 {
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].attr < buckets[j].attr
		})
	}

	maxNodesInBucket := nodesInBucket * int(c.cbf)

	res := make([]bucket, 0, len(buckets))
	fallback := make([]bucket, 0, len(buckets))

	for i := range buckets {
		ns := buckets[i].nodes
		if len(ns) >= maxNodesInBucket {
			res = append(res, bucket{attr: buckets[i].attr, nodes: ns[:maxNodesInBucket]})
		} else if len(ns) >= nodesInBucket {
			fallback = append(fallback, buckets[i])
		}
	}

	if len(res) < bucketCount {
		// backup factor can't be satisfied, fall back to 1
		res = append(res, fallback...)
		if len(res) < bucketCount {
			return nil, fmt.Errorf("%w: '%s'", ErrNotEnoughNodes, s.Name)
		}
	}

	if len(c.pivot) != 0 {
		sortBuckets(res, c.weight, c.pivotHash)
	}

	if s.Attribute == "" {
		// single-node buckets are merged to reach the backup factor
		res, fallback = res[:bucketCount], res[bucketCount:]
		for i := range fallback {
			idx := i % bucketCount
			if len(res[idx].nodes) >= maxNodesInBucket {
				break
			}

			res[idx].nodes = append(res[idx].nodes, fallback[i].nodes...)
		}
	}

	nodes := make([]netmap.Nodes, 0, bucketCount)
	for i := 0; i < bucketCount; i++ {
		nodes = append(nodes, res[i].nodes)
	}

	return nodes, nil
}

// getSelectionBase returns nodes matching the selector filter grouped by
// the selector attribute. Nodes without the attribute are grouped
// individually.
func (c *selectionContext) getSelectionBase(s netmap.Selector) []bucket {
	var (
		f      = c.filters[s.Filter]
		isMain = s.Filter == netmap.MatchAll
		result []bucket
		index  = make(map[string]int)
	)

	for _, n := range c.nodes {
		if !isMain && !c.match(f, n) {
			continue
		}

		key := s.Attribute
		if key == "" {
			result = append(result, bucket{
				attr:  hex.EncodeToString(n.PublicKey()),
				nodes: netmap.Nodes{n},
			})

			continue
		}

		v := n.Attribute(key)

		if i, ok := index[v]; ok {
			result[i].nodes = append(result[i].nodes, n)
		} else {
			index[v] = len(result)
			result = append(result, bucket{
				attr:  v,
				nodes: netmap.Nodes{n},
			})
		}
	}

	if len(c.pivot) != 0 {
		for i := range result {
			sortNodes(result[i].nodes, c.weight, c.pivotHash)
		}
	}

	return result
}

// sortNodes sorts nodes by weighted HRW of their public keys.
func sortNodes(ns netmap.Nodes, wf weightFunc, pivot uint64) {
	keys := make([]string, len(ns))
	weights := make([]float64, len(ns))
	byKey := make(map[string]netmap.NodeInfo, len(ns))

	for i := range ns {
		keys[i] = hex.EncodeToString(ns[i].PublicKey())
		weights[i] = wf(ns[i])
		byKey[keys[i]] = ns[i]
	}

	sortKeys(keys, weights, pivot)

	for i := range keys {
		ns[i] = byKey[keys[i]]
	}
}

// sortBuckets sorts buckets by weighted HRW of their attributes. Bucket
// weight is the mean weight of its nodes.
func sortBuckets(bs []bucket, wf weightFunc, pivot uint64) {
	keys := make([]string, len(bs))
	weights := make([]float64, len(bs))
	byKey := make(map[string]bucket, len(bs))

	for i := range bs {
		keys[i] = bs[i].attr
		weights[i] = meanWeight(bs[i].nodes, wf)
		byKey[keys[i]] = bs[i]
	}

	sortKeys(keys, weights, pivot)

	for i := range keys {
		bs[i] = byKey[keys[i]]
	}
}
