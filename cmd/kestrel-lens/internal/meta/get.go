package meta

import (
	"errors"
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/spf13/cobra"
)

var getCMD = &cobra.Command{
	Use:   "get",
	Short: "Object inspection",
	Long:  `Get specific object from a metabase.`,
	Args:  cobra.NoArgs,
	RunE:  getFunc,
}

func init() {
	common.AddAddressFlag(getCMD, &vAddress)
	common.AddComponentPathFlag(getCMD, &vPath)
}

func getFunc(cmd *cobra.Command, _ []string) error {
	addr, err := common.ParseAddress(vAddress)
	if err != nil {
		return err
	}

	db, err := openMeta()
	if err != nil {
		return err
	}
	defer db.Close()

	if v, err := db.Version(); err == nil {
		cmd.Printf("Metabase version: %d\n", v)
	}

	id, err := db.StorageID(addr)
	if err != nil {
		return fmt.Errorf("could not check if the obj is small: %w", err)
	}

	if id != nil {
		cmd.Printf("Object storageID: %x (%q)\n\n", id, id)
	} else {
		cmd.Printf("Object does not contain storageID\n\n")
	}

	hdr, err := db.Get(addr, true)

	var siErr *object.SplitInfoError
	if errors.As(err, &siErr) {
		si := siErr.SplitInfo()

		cmd.Println("Object is split")
		if sid := si.SplitID(); sid != nil {
			cmd.Println("\tSplitID:", sid.String())
		}
		if link, ok := si.Link(); ok {
			cmd.Println("\tLink:", link)
		}
		if last, ok := si.LastPart(); ok {
			cmd.Println("\tLast:", last)
		}

		return nil
	}
	if err != nil {
		return fmt.Errorf("could not get object: %w", err)
	}

	common.PrintObjectHeader(cmd, hdr)

	return nil
}
