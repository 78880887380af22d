package blobovnicza

import (
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/spf13/cobra"
)

var getCMD = &cobra.Command{
	Use:   "get",
	Short: "Get object",
	Long:  `Get specific object from a blobovnicza.`,
	Args:  cobra.NoArgs,
	RunE:  getFunc,
}

func init() {
	common.AddAddressFlag(getCMD, &vAddress)
	common.AddComponentPathFlag(getCMD, &vPath)
	common.AddOutputFileFlag(getCMD, &vOut)
	common.AddPayloadOnlyFlag(getCMD, &vPayloadOnly)
}

func getFunc(cmd *cobra.Command, _ []string) error {
	addr, err := common.ParseAddress(vAddress)
	if err != nil {
		return err
	}

	blz, err := openBlobovnicza()
	if err != nil {
		return err
	}
	defer blz.Close()

	var prm blobovnicza.GetPrm
	prm.SetAddress(addr)

	res, err := blz.Get(prm)
	if err != nil {
		return fmt.Errorf("could not fetch object: %w", err)
	}

	return common.ReadObject(cmd, res.Object(), vOut, vPayloadOnly)
}
