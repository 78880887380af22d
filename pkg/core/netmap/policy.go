package netmap

import (
	"errors"
	"fmt"
)

// Operation is a filter operation.
type Operation uint32

// Filter operations.
const (
	OpUnspecified Operation = iota
	OpEQ
	OpNE
	OpGT
	OpGE
	OpLT
	OpLE
	OpOR
	OpAND
)

var opNames = map[Operation]string{
	OpEQ:  "EQ",
	OpNE:  "NE",
	OpGT:  "GT",
	OpGE:  "GE",
	OpLT:  "LT",
	OpLE:  "LE",
	OpOR:  "OR",
	OpAND: "AND",
}

// String returns operation name.
func (op Operation) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}

	return "UNSPECIFIED"
}

// ParseOperation parses operation name.
func ParseOperation(s string) (Operation, error) {
	for op, name := range opNames {
		if name == s {
			return op, nil
		}
	}

	return 0, fmt.Errorf("unknown filter operation %q", s)
}

// Clause is a selector clause.
type Clause uint32

// Selector clauses.
const (
	ClauseUnspecified Clause = iota
	ClauseSame
	ClauseDistinct
)

// String returns clause name.
func (c Clause) String() string {
	switch c {
	case ClauseSame:
		return "SAME"
	case ClauseDistinct:
		return "DISTINCT"
	default:
		return "UNSPECIFIED"
	}
}

// ParseClause parses clause name. Empty string is ClauseUnspecified.
func ParseClause(s string) (Clause, error) {
	switch s {
	case "":
		return ClauseUnspecified, nil
	case "SAME":
		return ClauseSame, nil
	case "DISTINCT":
		return ClauseDistinct, nil
	default:
		return 0, fmt.Errorf("unknown selector clause %q", s)
	}
}

// MatchAll is the name of the implicit filter passing every node.
const MatchAll = "*"

// Filter is a named condition on node attributes. OR and AND filters
// combine their sub-filters, other operations compare the Key attribute
// with Value.
type Filter struct {
	Name    string
	Key     string
	Op      Operation
	Value   string
	Filters []Filter
}

// Selector selects Count nodes matching the named Filter. If Attribute is
// set, Clause defines whether selected nodes share the attribute value
// (SAME) or have pairwise different values (DISTINCT).
type Selector struct {
	Name      string
	Count     uint32
	Clause    Clause
	Attribute string
	Filter    string
}

// ReplicaDescriptor requires Count copies of the object on nodes of the
// named Selector. Empty selector name means all container nodes.
type ReplicaDescriptor struct {
	Count    uint32
	Selector string
}

// PlacementPolicy describes the storage policy of the container.
type PlacementPolicy struct {
	Replicas []ReplicaDescriptor

	// BackupFactor multiplies the number of nodes taken by every selector.
	// Zero means 1.
	BackupFactor uint32

	Selectors []Selector
	Filters   []Filter
}

// NumberOfReplicas returns number of replica descriptors.
func (p PlacementPolicy) NumberOfReplicas() int {
	return len(p.Replicas)
}

// ReplicaNumberByIndex returns number of object copies required by the i-th
// replica descriptor.
func (p PlacementPolicy) ReplicaNumberByIndex(i int) uint32 {
	return p.Replicas[i].Count
}

// ContainerBackupFactor returns backup factor of the policy.
func (p PlacementPolicy) ContainerBackupFactor() uint32 {
	if p.BackupFactor == 0 {
		return 1
	}

	return p.BackupFactor
}

var (
	// ErrMissingField is returned when a required policy field is empty.
	ErrMissingField = errors.New("netmap: nil field")
	// ErrUnknownFilter is returned when a selector references a missing filter.
	ErrUnknownFilter = errors.New("netmap: filter not found")
	// ErrUnknownSelector is returned when a replica references a missing selector.
	ErrUnknownSelector = errors.New("netmap: selector not found")
	// ErrUnnamedTopFilter is returned when a top-level filter has no name.
	ErrUnnamedTopFilter = errors.New("netmap: all filters on top level must be named")
	// ErrInvalidFilterOp is returned when a filter uses invalid operation.
	ErrInvalidFilterOp = errors.New("netmap: invalid filter operation")
)

// Validate checks policy consistency: every replica references an existing
// selector, every selector references an existing filter or MatchAll,
// filters are well-formed.
func (p PlacementPolicy) Validate() error {
	if len(p.Replicas) == 0 {
		return fmt.Errorf("%w: replicas", ErrMissingField)
	}

	filters := make(map[string]struct{}, len(p.Filters))
	for i := range p.Filters {
		if p.Filters[i].Name == "" {
			return ErrUnnamedTopFilter
		}

		if err := p.Filters[i].validate(); err != nil {
			return fmt.Errorf("filter %q: %w", p.Filters[i].Name, err)
		}

		filters[p.Filters[i].Name] = struct{}{}
	}

	selectors := make(map[string]struct{}, len(p.Selectors))
	for i := range p.Selectors {
		s := p.Selectors[i]
		if s.Count == 0 {
			return fmt.Errorf("%w: selector %q count", ErrMissingField, s.Name)
		}

		if s.Filter != MatchAll {
			if _, ok := filters[s.Filter]; !ok {
				return fmt.Errorf("%w: '%s'", ErrUnknownFilter, s.Filter)
			}
		}

		selectors[s.Name] = struct{}{}
	}

	for i := range p.Replicas {
		r := p.Replicas[i]
		if r.Count == 0 {
			return fmt.Errorf("%w: replica count", ErrMissingField)
		}

		if r.Selector == "" {
			continue
		}

		if _, ok := selectors[r.Selector]; !ok {
			return fmt.Errorf("%w: '%s'", ErrUnknownSelector, r.Selector)
		}
	}

	return nil
}

func (f Filter) validate() error {
	switch f.Op {
	case OpAND, OpOR:
		if len(f.Filters) == 0 {
			return fmt.Errorf("%w: %s without sub-filters", ErrInvalidFilterOp, f.Op)
		}

		for i := range f.Filters {
			// references to named filters are resolved at evaluation
			if f.Filters[i].Op == OpUnspecified && f.Filters[i].Name != "" {
				continue
			}

			if err := f.Filters[i].validate(); err != nil {
				return err
			}
		}
	case OpEQ, OpNE, OpGT, OpGE, OpLT, OpLE:
		if f.Key == "" {
			return fmt.Errorf("%w: filter key", ErrMissingField)
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidFilterOp, f.Op)
	}

	return nil
}
