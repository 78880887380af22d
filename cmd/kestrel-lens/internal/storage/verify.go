package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/cheggaaa/pb"
	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/engine"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var verifyCMD = &cobra.Command{
	Use:   "verify",
	Short: "Verify stored objects",
	Long: `Read every object of the storage engine and check its identifier
and payload checksums. Broken objects are printed.`,
	Args: cobra.NoArgs,
	RunE: verifyFunc,
}

var vNoProgress bool

func init() {
	common.AddConfigFileFlag(verifyCMD, &vConfig)
	verifyCMD.Flags().BoolVar(&vNoProgress, "no-progress", false, "Do not show progress bar")
}

const verifyPageSize = 1024

func verifyFunc(cmd *cobra.Command, _ []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	var (
		addrs  []oid.Address
		cursor *engine.Cursor
		page   []oid.Address
	)

	for {
		page, cursor, err = e.ListWithCursor(verifyPageSize, cursor)
		if errors.Is(err, engine.ErrEndOfListing) {
			break
		}
		if err != nil {
			return fmt.Errorf("storage iterator failure: %w", err)
		}

		addrs = append(addrs, page...)
	}

	var bar *pb.ProgressBar
	if !vNoProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		bar = pb.New(len(addrs))
		bar.Output = cmd.ErrOrStderr()
		bar.Start()
	}

	v := object.NewFormatValidator()

	var broken int

	for _, addr := range addrs {
		obj, err := e.Get(addr)
		if err == nil {
			err = v.Validate(obj, false)
		}

		if err != nil {
			broken++
			cmd.Printf("%s: %v\n", addr.EncodeToString(), err)
		}

		if bar != nil {
			bar.Increment()
		}
	}

	if bar != nil {
		bar.Finish()
	}

	cmd.Printf("Checked %d objects, %d broken\n", len(addrs), broken)

	if broken > 0 {
		return fmt.Errorf("%d broken objects found", broken)
	}

	return nil
}
