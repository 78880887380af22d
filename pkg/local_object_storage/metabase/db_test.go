package meta_test

import (
	"path/filepath"
	"testing"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newDB(t testing.TB, opts ...meta.Option) *meta.DB {
	p := filepath.Join(t.TempDir(), "metabase")

	bdb := meta.New(append([]meta.Option{
		meta.WithPath(p),
		meta.WithPermissions(0600),
		meta.WithLogger(zaptest.NewLogger(t)),
	}, opts...)...)

	require.NoError(t, bdb.Open(false))
	require.NoError(t, bdb.Init())

	t.Cleanup(func() {
		require.NoError(t, bdb.Close())
	})

	return bdb
}

func putBig(db *meta.DB, obj *object.Object) error {
	return db.Put(obj, nil)
}

// splitObject returns parent object with its last and link parts.
func splitObject(cnr cid.ID) (parent, last, link *object.Object) {
	splitID := object.NewSplitID()

	parent = objecttest.ObjectWithCID(cnr)
	objecttest.AddAttribute(parent, object.AttributeFileName, "parent.txt")

	last = objecttest.ObjectWithCID(cnr)
	objecttest.SetParent(last, parent, splitID)

	lastID, _ := last.ID()

	link = objecttest.ObjectWithCID(cnr)
	link.SetChildren(lastID)
	objecttest.SetParent(link, parent, splitID)

	return parent, last, link
}
