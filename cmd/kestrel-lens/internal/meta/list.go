package meta

import (
	"errors"
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "List objects in metabase",
	Long:  `List available objects of a metabase page by page.`,
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var vLimit uint32

const limitFlagName = "limit"

func init() {
	listCMD.Flags().Uint32Var(&vLimit, limitFlagName, 0, "Number of objects to list, all objects are listed if zero")

	common.AddComponentPathFlag(listCMD, &vPath)
}

const listPageSize = 1024

func listFunc(cmd *cobra.Command, _ []string) error {
	db, err := openMeta()
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		cursor  *meta.Cursor
		printed uint32
	)

	for vLimit == 0 || printed < vLimit {
		count := listPageSize
		if vLimit > 0 && vLimit-printed < listPageSize {
			count = int(vLimit - printed)
		}

		var addrs []oid.Address

		addrs, cursor, err = db.ListWithCursor(count, cursor)
		if errors.Is(err, meta.ErrEndOfListing) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("metabase listing: %w", err)
		}

		for _, addr := range addrs {
			cmd.Println(addr.EncodeToString())
		}

		printed += uint32(len(addrs))
	}

	return nil
}
