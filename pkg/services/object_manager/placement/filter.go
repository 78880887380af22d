package placement

import (
	"strconv"

	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
)

// match checks whether the node satisfies the filter.
func (c *selectionContext) match(f netmap.Filter, n netmap.NodeInfo) bool {
	switch f.Op {
	case netmap.OpAND, netmap.OpOR:
		for _, sub := range f.Filters {
			if sub.Op == netmap.OpUnspecified && sub.Name != "" {
				sub = c.filters[sub.Name]
			}

			ok := c.match(sub, n)
			if ok == (f.Op == netmap.OpOR) {
				return ok
			}
		}

		return f.Op == netmap.OpAND
	default:
		return matchKeyValue(f, n)
	}
}

func matchKeyValue(f netmap.Filter, n netmap.NodeInfo) bool {
	switch f.Op {
	case netmap.OpEQ:
		return n.Attribute(f.Key) == f.Value
	case netmap.OpNE:
		return n.Attribute(f.Key) != f.Value
	case netmap.OpGT, netmap.OpGE, netmap.OpLT, netmap.OpLE:
		attr, err := strconv.ParseUint(n.Attribute(f.Key), 10, 64)
		if err != nil {
			return false
		}

		val, err := strconv.ParseUint(f.Value, 10, 64)
		if err != nil {
			return false
		}

		switch f.Op {
		case netmap.OpGT:
			return attr > val
		case netmap.OpGE:
			return attr >= val
		case netmap.OpLT:
			return attr < val
		default:
			return attr <= val
		}
	default:
		return false
	}
}
