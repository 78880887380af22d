package object_test

import (
	"strconv"
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/stretchr/testify/require"
)

func TestSearchFilter_Match(t *testing.T) {
	obj := objecttest.Object()
	objecttest.AddAttribute(obj, "FileName", "cat.jpg")

	for _, tc := range []struct {
		name string
		f    object.SearchFilter
		ok   bool
	}{
		{"eq", object.SearchFilter{Key: "FileName", Value: "cat.jpg", Op: object.MatchStringEqual}, true},
		{"eq mismatch", object.SearchFilter{Key: "FileName", Value: "dog.jpg", Op: object.MatchStringEqual}, false},
		{"ne", object.SearchFilter{Key: "FileName", Value: "dog.jpg", Op: object.MatchStringNotEqual}, true},
		{"ne missing", object.SearchFilter{Key: "Color", Value: "red", Op: object.MatchStringNotEqual}, true},
		{"prefix", object.SearchFilter{Key: "FileName", Value: "cat", Op: object.MatchCommonPrefix}, true},
		{"prefix missing", object.SearchFilter{Key: "Color", Value: "", Op: object.MatchCommonPrefix}, false},
		{"not present", object.SearchFilter{Key: "Color", Op: object.MatchNotPresent}, true},
		{"present", object.SearchFilter{Key: "FileName", Op: object.MatchNotPresent}, false},
		{"type", object.SearchFilter{Key: object.FilterType, Value: "REGULAR", Op: object.MatchStringEqual}, true},
		{"payload size", object.SearchFilter{
			Key:   object.FilterPayloadSize,
			Value: strconv.FormatUint(obj.PayloadSize(), 10),
			Op:    object.MatchStringEqual,
		}, true},
		{"unknown op", object.SearchFilter{Key: "FileName", Value: "cat.jpg"}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.ok, tc.f.Match(obj))
		})
	}
}

func TestSearchFilters(t *testing.T) {
	var fs object.SearchFilters
	fs.AddRootFilter()
	fs.AddPhyFilter()
	fs.AddFilter("key", "value", object.MatchStringEqual)

	require.Len(t, fs, 3)
	require.True(t, object.IsReservedKey(fs[0].Key))
	require.True(t, object.IsReservedKey(fs[1].Key))
	require.False(t, object.IsReservedKey(fs[2].Key))
}
