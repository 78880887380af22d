package meta

import (
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/spf13/cobra"
)

var listGraveyardCMD = &cobra.Command{
	Use:   "list-graveyard",
	Short: "Graveyard listing",
	Long:  `List all the objects that have been covered with a Tombstone.`,
	Args:  cobra.NoArgs,
	RunE:  listGraveyardFunc,
}

func init() {
	common.AddComponentPathFlag(listGraveyardCMD, &vPath)
}

func listGraveyardFunc(cmd *cobra.Command, _ []string) error {
	db, err := openMeta()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.IterateOverGraveyard(func(g meta.TombstonedObject) error {
		cmd.Printf(
			"Object: %s\nTS: %s (expires at %d)\n",
			g.Address().EncodeToString(),
			g.Tombstone().EncodeToString(),
			g.TombstoneExpiration(),
		)

		return nil
	})
	if err != nil {
		return fmt.Errorf("could not iterate over graveyard: %w", err)
	}

	return nil
}
