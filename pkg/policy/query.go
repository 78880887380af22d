// Package policy implements the human-readable placement policy language:
//
//	REP 2 IN SPB
//	CBF 2
//	SELECT 4 IN SAME City FROM Russia AS SPB
//	FILTER Country EQ Russia AS Russia
package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
)

var (
	ErrInvalidNumber   = errors.New("policy: expected positive integer")
	ErrUnknownClause   = errors.New("policy: unknown clause")
	ErrUnknownOp       = errors.New("policy: unknown operation")
	ErrUnknownFilter   = errors.New("policy: filter not found")
	ErrUnknownSelector = errors.New("policy: selector not found")
)

func parse(s string) (*query, error) {
	q := new(query)
	err := parser.Parse(strings.NewReader(s), q)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Parse parses s into a placement policy. The result is validated.
func Parse(s string) (netmap.PlacementPolicy, error) {
	q, err := parse(s)
	if err != nil {
		return netmap.PlacementPolicy{}, err
	}

	seenFilters := map[string]bool{}
	fs := make([]netmap.Filter, 0, len(q.Filters))
	for _, qf := range q.Filters {
		f, err := filterFromOrChain(qf.Value, seenFilters)
		if err != nil {
			return netmap.PlacementPolicy{}, err
		}
		f.Name = qf.Name
		fs = append(fs, f)
		seenFilters[qf.Name] = true
	}

	seenSelectors := map[string]bool{}
	ss := make([]netmap.Selector, 0, len(q.Selectors))
	for _, qs := range q.Selectors {
		if qs.Filter != netmap.MatchAll && !seenFilters[qs.Filter] {
			return netmap.PlacementPolicy{}, fmt.Errorf("%w: '%s'", ErrUnknownFilter, qs.Filter)
		}

		var s netmap.Selector
		switch len(qs.Bucket) {
		case 1: // only bucket
			s.Attribute = qs.Bucket[0]
		case 2: // clause + bucket
			s.Clause, err = clauseFromString(qs.Bucket[0])
			if err != nil {
				return netmap.PlacementPolicy{}, err
			}
			s.Attribute = qs.Bucket[1]
		}
		s.Name = qs.Name
		seenSelectors[qs.Name] = true
		s.Filter = qs.Filter
		if qs.Count == 0 {
			return netmap.PlacementPolicy{}, fmt.Errorf("%w: SELECT", ErrInvalidNumber)
		}
		s.Count = qs.Count
		ss = append(ss, s)
	}

	rs := make([]netmap.ReplicaDescriptor, 0, len(q.Replicas))
	for _, qr := range q.Replicas {
		var r netmap.ReplicaDescriptor
		if qr.Selector != "" {
			if !seenSelectors[qr.Selector] {
				return netmap.PlacementPolicy{}, fmt.Errorf("%w: '%s'", ErrUnknownSelector, qr.Selector)
			}
			r.Selector = qr.Selector
		}
		if qr.Count <= 0 {
			return netmap.PlacementPolicy{}, fmt.Errorf("%w: REP", ErrInvalidNumber)
		}
		r.Count = uint32(qr.Count)
		rs = append(rs, r)
	}

	p := netmap.PlacementPolicy{
		Replicas:     rs,
		BackupFactor: q.CBF,
		Selectors:    ss,
		Filters:      fs,
	}

	if err := p.Validate(); err != nil {
		return netmap.PlacementPolicy{}, err
	}

	return p, nil
}

func clauseFromString(s string) (netmap.Clause, error) {
	switch strings.ToUpper(s) {
	case "SAME":
		return netmap.ClauseSame, nil
	case "DISTINCT":
		return netmap.ClauseDistinct, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownClause, s)
	}
}

func filterFromOrChain(expr *orChain, seen map[string]bool) (netmap.Filter, error) {
	var fs []netmap.Filter
	for _, ac := range expr.Clauses {
		f, err := filterFromAndChain(ac, seen)
		if err != nil {
			return netmap.Filter{}, err
		}
		fs = append(fs, f)
	}
	if len(fs) == 1 {
		return fs[0], nil
	}

	return netmap.Filter{Op: netmap.OpOR, Filters: fs}, nil
}

func filterFromAndChain(expr *andChain, seen map[string]bool) (netmap.Filter, error) {
	var fs []netmap.Filter
	for _, fe := range expr.Clauses {
		var f netmap.Filter
		if fe.Expr != nil {
			var err error

			f, err = filterFromSimpleExpr(fe.Expr)
			if err != nil {
				return netmap.Filter{}, err
			}
		} else {
			if !seen[fe.Reference] {
				return netmap.Filter{}, fmt.Errorf("%w: '%s'", ErrUnknownFilter, fe.Reference)
			}
			f.Name = fe.Reference
		}
		fs = append(fs, f)
	}
	if len(fs) == 1 {
		return fs[0], nil
	}

	return netmap.Filter{Op: netmap.OpAND, Filters: fs}, nil
}

func filterFromSimpleExpr(se *simpleExpr) (netmap.Filter, error) {
	op, err := netmap.ParseOperation(se.Op)
	if err != nil || op == netmap.OpOR || op == netmap.OpAND {
		return netmap.Filter{}, fmt.Errorf("%w: '%s'", ErrUnknownOp, se.Op)
	}

	return netmap.Filter{
		Key:   unquote(se.Key),
		Op:    op,
		Value: unquote(se.Value),
	}, nil
}

func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' {
		return s
	}

	if v, err := strconv.Unquote(s); err == nil {
		return v
	}

	return s
}
