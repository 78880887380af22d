package meta

import (
	"fmt"
	"time"

	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
)

var (
	vAddress string
	vPath    string
)

// Root contains `meta` command definition.
var Root = &cobra.Command{
	Use:   "meta",
	Short: "Operations with a metabase",
}

func init() {
	Root.AddCommand(
		getCMD,
		listCMD,
		listGraveyardCMD,
		listGarbageCMD,
	)
}

func openMeta() (*meta.DB, error) {
	db := meta.New(
		meta.WithPath(vPath),
		meta.WithBoltDBOptions(&bbolt.Options{
			ReadOnly: true,
			Timeout:  100 * time.Millisecond,
		}),
	)

	err := db.Open(true)
	if err != nil {
		return nil, fmt.Errorf("could not open metabase: %w", err)
	}

	return db, nil
}
