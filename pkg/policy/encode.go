package policy

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
)

// Encode returns statements of the policy in the form accepted by Parse.
func Encode(p netmap.PlacementPolicy) []string {
	// 1 for container backup factor
	result := make([]string, 0, len(p.Replicas)+len(p.Selectors)+len(p.Filters)+1)

	encodeReplicas(p.Replicas, &result)

	if p.BackupFactor != 0 {
		result = append(result, fmt.Sprintf("CBF %d", p.BackupFactor))
	}

	encodeSelectors(p.Selectors, &result)
	encodeFilters(p.Filters, &result)

	return result
}

// String returns the policy in the form accepted by Parse.
func String(p netmap.PlacementPolicy) string {
	return strings.Join(Encode(p), " ")
}

func encodeReplicas(replicas []netmap.ReplicaDescriptor, dst *[]string) {
	builder := new(strings.Builder)

	for _, replica := range replicas {
		builder.WriteString("REP ")
		builder.WriteString(strconv.FormatUint(uint64(replica.Count), 10))

		if s := replica.Selector; s != "" {
			builder.WriteString(" IN ")
			builder.WriteString(s)
		}

		*dst = append(*dst, builder.String())
		builder.Reset()
	}
}

func encodeSelectors(selectors []netmap.Selector, dst *[]string) {
	builder := new(strings.Builder)

	for _, selector := range selectors {
		builder.WriteString("SELECT ")
		builder.WriteString(strconv.FormatUint(uint64(selector.Count), 10))

		if a := selector.Attribute; a != "" {
			builder.WriteString(" IN")

			switch selector.Clause {
			case netmap.ClauseSame, netmap.ClauseDistinct:
				builder.WriteString(" " + selector.Clause.String() + " ")
			default:
				builder.WriteString(" ")
			}

			builder.WriteString(a)
		}

		if f := selector.Filter; f != "" {
			builder.WriteString(" FROM ")
			builder.WriteString(f)
		}

		if n := selector.Name; n != "" {
			builder.WriteString(" AS ")
			builder.WriteString(n)
		}

		*dst = append(*dst, builder.String())
		builder.Reset()
	}
}

func encodeFilters(filters []netmap.Filter, dst *[]string) {
	for i := range filters {
		*dst = append(*dst, "FILTER "+encodeFilter(filters[i]))
	}
}

func encodeFilter(filter netmap.Filter) string {
	builder := new(strings.Builder)
	unspecified := filter.Op == netmap.OpUnspecified

	if k := filter.Key; k != "" {
		builder.WriteString(quote(k))
		builder.WriteString(" ")
		builder.WriteString(filter.Op.String())
		builder.WriteString(" ")
		builder.WriteString(quote(filter.Value))
	} else if n := filter.Name; unspecified && n != "" {
		builder.WriteString("@")
		builder.WriteString(n)
	}

	for i := range filter.Filters {
		if i != 0 {
			builder.WriteString(" ")
			builder.WriteString(filter.Op.String())
			builder.WriteString(" ")
		}

		builder.WriteString(encodeFilter(filter.Filters[i]))
	}

	if n := filter.Name; n != "" && !unspecified {
		builder.WriteString(" AS ")
		builder.WriteString(n)
	}

	return builder.String()
}

// quote wraps s in quotes unless it is a single word token.
func quote(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		return strconv.Quote(s)
	}

	return s
}
