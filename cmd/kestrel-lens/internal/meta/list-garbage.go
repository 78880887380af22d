package meta

import (
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/spf13/cobra"
)

var listGarbageCMD = &cobra.Command{
	Use:   "list-garbage",
	Short: "Garbage listing",
	Long:  `List all the objects that have received GC Mark.`,
	Args:  cobra.NoArgs,
	RunE:  listGarbageFunc,
}

func init() {
	common.AddComponentPathFlag(listGarbageCMD, &vPath)
}

func listGarbageFunc(cmd *cobra.Command, _ []string) error {
	db, err := openMeta()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.IterateOverGarbage(func(g meta.GarbageObject) error {
		cmd.Println(g.Address().EncodeToString())
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not iterate over garbage bucket: %w", err)
	}

	return nil
}
