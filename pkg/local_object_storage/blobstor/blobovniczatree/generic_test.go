package blobovniczatree

import (
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/internal/blobstortest"
	"go.uber.org/zap/zaptest"
)

func TestGeneric(t *testing.T) {
	const maxObjectSize = 1 << 16

	newTree := func(t *testing.T) common.Storage {
		return NewBlobovniczaTree(
			WithLogger(zaptest.NewLogger(t)),
			WithObjectSizeLimit(maxObjectSize),
			WithBlobovniczaShallowWidth(2),
			WithBlobovniczaShallowDepth(2),
			WithRootPath(t.TempDir()),
			WithBlobovniczaSize(1<<20))
	}

	blobstortest.TestAll(t, newTree, 1024, maxObjectSize)
}

func TestControl(t *testing.T) {
	const maxObjectSize = 2048

	newTree := func(t *testing.T) common.Storage {
		return NewBlobovniczaTree(
			WithLogger(zaptest.NewLogger(t)),
			WithObjectSizeLimit(maxObjectSize),
			WithBlobovniczaShallowWidth(2),
			WithBlobovniczaShallowDepth(2),
			WithRootPath(t.TempDir()),
			WithBlobovniczaSize(1<<20))
	}

	blobstortest.TestControl(t, newTree, 1024, maxObjectSize)
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()

	blobstortest.TestInfo(t, func(*testing.T) common.Storage {
		return NewBlobovniczaTree(WithRootPath(dir))
	}, Type, dir)
}
