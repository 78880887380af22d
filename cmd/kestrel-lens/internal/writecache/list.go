package writecache

import (
	"fmt"
	"io"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	blobstorcommon "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "Object listing",
	Long:  `List all objects stored in a write-cache.`,
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

func init() {
	common.AddComponentPathFlag(listCMD, &vPath)
}

func listFunc(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	wAddr := func(addr oid.Address) error {
		_, err := io.WriteString(w, addr.EncodeToString()+"\n")
		return err
	}

	db, err := writecache.OpenDB(vPath, true)
	if err != nil {
		return fmt.Errorf("could not open write-cache db: %w", err)
	}
	defer db.Close()

	err = writecache.IterateDB(db, wAddr)
	if err != nil {
		return fmt.Errorf("write-cache iterator failure: %w", err)
	}

	// big objects are kept in a flat file tree next to the database
	fst := fstree.New(
		fstree.WithPath(vPath),
		fstree.WithDepth(1),
		fstree.WithDirNameLen(1),
	)

	_, err = fst.Iterate(blobstorcommon.IteratePrm{
		Handler: func(e blobstorcommon.IterationElement) error {
			return wAddr(e.Address)
		},
		IgnoreErrors: true,
	})
	if err != nil {
		return fmt.Errorf("write-cache file tree iterator failure: %w", err)
	}

	return nil
}
