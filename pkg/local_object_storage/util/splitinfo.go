package util

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
)

// MergeSplitInfo returns a new SplitInfo with the fields of `to` overwritten
// by non-empty fields of `from`. Conflicts are ignored, `from` wins. Both
// arguments are left untouched; nil arguments are treated as empty.
func MergeSplitInfo(from, to *object.SplitInfo) *object.SplitInfo {
	res := object.NewSplitInfo()

	if to != nil {
		res.SetSplitID(to.SplitID())

		if lp, ok := to.LastPart(); ok {
			res.SetLastPart(lp)
		}

		if link, ok := to.Link(); ok {
			res.SetLink(link)
		}
	}

	if from == nil {
		return res
	}

	if from.SplitID() != nil {
		res.SetSplitID(from.SplitID())
	}

	if lp, ok := from.LastPart(); ok {
		res.SetLastPart(lp)
	}

	if link, ok := from.Link(); ok {
		res.SetLink(link)
	}

	return res
}

// IsCompleteSplitInfo checks whether both the last part and the link of the
// split chain are known.
func IsCompleteSplitInfo(si *object.SplitInfo) bool {
	if si == nil {
		return false
	}

	_, lastOK := si.LastPart()
	_, linkOK := si.Link()

	return lastOK && linkOK
}
