package blobovnicza

import (
	"fmt"
	"io"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "Object listing",
	Long:  `List all objects stored in a blobovnicza.`,
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

func init() {
	common.AddComponentPathFlag(listCMD, &vPath)
}

func listFunc(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	blz, err := openBlobovnicza()
	if err != nil {
		return err
	}
	defer blz.Close()

	var prm blobovnicza.IteratePrm
	prm.WithoutData()
	prm.SetHandler(func(addr oid.Address, _ []byte) error {
		_, err := io.WriteString(w, addr.EncodeToString()+"\n")
		return err
	})

	_, err = blz.Iterate(prm)
	if err != nil {
		return fmt.Errorf("blobovnicza iterator failure: %w", err)
	}

	return nil
}
