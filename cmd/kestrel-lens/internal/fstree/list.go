package fstree

import (
	"fmt"
	"io"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	blobstorcommon "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "Object listing",
	Long:  `List all objects stored in an FSTree.`,
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

func init() {
	common.AddComponentPathFlag(listCMD, &vPath)
	addDepthFlag(listCMD)
}

func listFunc(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	fst, err := openFSTree()
	if err != nil {
		return err
	}
	defer fst.Close()

	_, err = fst.Iterate(blobstorcommon.IteratePrm{
		Handler: func(e blobstorcommon.IterationElement) error {
			_, err := io.WriteString(w, e.Address.EncodeToString()+"\n")
			return err
		},
		IgnoreErrors: true,
		ErrorHandler: func(addr oid.Address, err error) error {
			cmd.PrintErrf("%s: %v\n", addr, err)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("fstree iterator failure: %w", err)
	}

	return nil
}
