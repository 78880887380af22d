package fstree

import (
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	"github.com/spf13/cobra"
)

var (
	vAddress     string
	vPath        string
	vOut         string
	vPayloadOnly bool
	vDepth       uint64
)

const (
	flagDepth        = "depth"
	flagDepthDefault = 4
)

// Root contains `fstree` command definition.
var Root = &cobra.Command{
	Use:   "fstree",
	Short: "Operations with FSTree storage subsystem",
}

func init() {
	Root.AddCommand(listCMD, getCMD)
}

func addDepthFlag(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&vDepth, flagDepth, flagDepthDefault, "Number of nested directories of the tree")
}

func openFSTree() (*fstree.FSTree, error) {
	cc, err := common.Decompressor()
	if err != nil {
		return nil, err
	}

	fst := fstree.New(
		fstree.WithPath(vPath),
		fstree.WithDepth(vDepth),
	)
	fst.SetCompressor(cc)

	err = fst.Open(true)
	if err != nil {
		return nil, fmt.Errorf("could not open fstree: %w", err)
	}

	return fst, nil
}
