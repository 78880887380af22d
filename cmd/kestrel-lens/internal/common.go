package common

import (
	"fmt"
	"os"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/compression"
	"github.com/spf13/cobra"
)

// Errf returns formatted error in errFmt format if err is not nil.
func Errf(errFmt string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf(errFmt, err)
}

// ExitOnErr prints error via cmd and exits with code 1. Does nothing if
// err is nil.
func ExitOnErr(cmd *cobra.Command, err error) {
	if err != nil {
		cmd.PrintErrln(err)
		os.Exit(1)
	}
}

// ParseAddress decodes object address given in "<container>/<object>" form.
func ParseAddress(s string) (oid.Address, error) {
	var addr oid.Address

	err := addr.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("invalid address argument: %w", err)
	}

	return addr, nil
}

// Decompressor returns compression config able to decode objects written
// with any compression settings.
func Decompressor() (*compression.Config, error) {
	var cc compression.Config

	err := cc.Init()
	if err != nil {
		return nil, fmt.Errorf("init decompressor: %w", err)
	}

	return &cc, nil
}
