package blobovnicza

import (
	"fmt"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/spf13/cobra"
)

var (
	vAddress     string
	vPath        string
	vOut         string
	vPayloadOnly bool
)

// Root contains `blobovnicza` command definition.
var Root = &cobra.Command{
	Use:   "blobovnicza",
	Short: "Operations with a blobovnicza",
}

func init() {
	Root.AddCommand(listCMD, getCMD)
}

func openBlobovnicza() (*blobovnicza.Blobovnicza, error) {
	cc, err := common.Decompressor()
	if err != nil {
		return nil, err
	}

	blz := blobovnicza.New(
		blobovnicza.WithPath(vPath),
		blobovnicza.WithReadOnly(true),
		blobovnicza.WithCompressor(cc),
	)

	err = blz.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open blobovnicza: %w", err)
	}

	return blz, nil
}
