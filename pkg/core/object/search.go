package object

import (
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
)

// SearchMatchType is an enumeration of the supported search filter
// comparisons.
type SearchMatchType uint32

const (
	MatchUnknown SearchMatchType = iota
	MatchStringEqual
	MatchStringNotEqual
	MatchNotPresent
	MatchCommonPrefix
)

func (m SearchMatchType) String() string {
	switch m {
	case MatchStringEqual:
		return "STRING_EQUAL"
	case MatchStringNotEqual:
		return "STRING_NOT_EQUAL"
	case MatchNotPresent:
		return "NOT_PRESENT"
	case MatchCommonPrefix:
		return "COMMON_PREFIX"
	default:
		return "MATCH_TYPE_UNSPECIFIED"
	}
}

// Reserved filter keys. They address header fields instead of user
// attributes.
const (
	reservedFilterPrefix = "$Object:"

	FilterType          = reservedFilterPrefix + "objectType"
	FilterOwnerID       = reservedFilterPrefix + "ownerID"
	FilterCreationEpoch = reservedFilterPrefix + "creationEpoch"
	FilterPayloadSize   = reservedFilterPrefix + "payloadLength"
	FilterSplitID       = reservedFilterPrefix + "split.splitID"
	FilterParentID      = reservedFilterPrefix + "split.parent"

	// FilterRoot selects objects which are not parts of a split chain
	// (including virtual parents). Value is ignored.
	FilterRoot = reservedFilterPrefix + "ROOT"
	// FilterPhysical selects objects stored physically. Value is ignored.
	FilterPhysical = reservedFilterPrefix + "PHY"
)

// SearchFilter is a single search condition.
type SearchFilter struct {
	Key   string
	Value string
	Op    SearchMatchType
}

// SearchFilters is a conjunction of search conditions.
type SearchFilters []SearchFilter

// AddFilter appends a new filter.
func (f *SearchFilters) AddFilter(key, value string, op SearchMatchType) {
	*f = append(*f, SearchFilter{Key: key, Value: value, Op: op})
}

// AddRootFilter adds filter by ROOT property.
func (f *SearchFilters) AddRootFilter() {
	f.AddFilter(FilterRoot, "", MatchUnknown)
}

// AddPhyFilter adds filter by PHY property.
func (f *SearchFilters) AddPhyFilter() {
	f.AddFilter(FilterPhysical, "", MatchUnknown)
}

// IsReservedKey checks whether the key addresses a header field.
func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, reservedFilterPrefix)
}

// HeaderValue returns the value of the filtered field of the object
// header. The second value is false if the header has no such field.
func HeaderValue(obj *Object, key string) (string, bool) {
	switch key {
	case FilterType:
		return obj.Type().String(), true
	case FilterOwnerID:
		return base58.Encode(obj.OwnerID()), len(obj.OwnerID()) > 0
	case FilterCreationEpoch:
		return strconv.FormatUint(obj.CreationEpoch(), 10), true
	case FilterPayloadSize:
		return strconv.FormatUint(obj.PayloadSize(), 10), true
	case FilterSplitID:
		sid := obj.SplitID()
		return sid.String(), sid != nil
	case FilterParentID:
		id, ok := obj.ParentID()
		if !ok {
			return "", false
		}
		return id.EncodeToString(), true
	}

	for _, a := range obj.Attributes() {
		if a.Key == key {
			return a.Value, true
		}
	}

	return "", false
}

// Match checks whether the header value matches the filter. ROOT and PHY
// filters are not header conditions and are not checked here.
func (f SearchFilter) Match(obj *Object) bool {
	v, ok := HeaderValue(obj, f.Key)

	switch f.Op {
	case MatchStringEqual:
		return ok && v == f.Value
	case MatchStringNotEqual:
		return !ok || v != f.Value
	case MatchNotPresent:
		return !ok
	case MatchCommonPrefix:
		return ok && strings.HasPrefix(v, f.Value)
	default:
		return false
	}
}
