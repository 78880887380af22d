package fstree

import (
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	blobstorcommon "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/spf13/cobra"
)

var getCMD = &cobra.Command{
	Use:   "get",
	Short: "Get object",
	Long:  `Get specific object from an FSTree.`,
	Args:  cobra.NoArgs,
	RunE:  getFunc,
}

func init() {
	common.AddAddressFlag(getCMD, &vAddress)
	common.AddComponentPathFlag(getCMD, &vPath)
	common.AddOutputFileFlag(getCMD, &vOut)
	common.AddPayloadOnlyFlag(getCMD, &vPayloadOnly)
	addDepthFlag(getCMD)
}

func getFunc(cmd *cobra.Command, _ []string) error {
	addr, err := common.ParseAddress(vAddress)
	if err != nil {
		return err
	}

	fst, err := openFSTree()
	if err != nil {
		return err
	}
	defer fst.Close()

	res, err := fst.Get(blobstorcommon.GetPrm{Address: addr, Raw: true})
	if err != nil {
		return fmt.Errorf("could not fetch object: %w", err)
	}

	return common.ReadObject(cmd, res.RawData, vOut, vPayloadOnly)
}
