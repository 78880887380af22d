package main

import (
	"os"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal/blobovnicza"
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal/fstree"
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal/meta"
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal/storage"
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal/writecache"
	"github.com/kestrelfs/kestrel-node/misc"
	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:           "kestrel-lens",
	Short:         "Kestrel Storage Engine Lens",
	Long:          `Kestrel Storage Engine Lens provides tools to browse the contents of the storage engine of a stopped node.`,
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func entryPoint(cmd *cobra.Command, _ []string) error {
	printVersion, _ := cmd.Flags().GetBool("version")
	if printVersion {
		cmd.Printf("Kestrel Lens\nVersion: %s\nBuild: %s\nDebug: %s\n",
			misc.Version, misc.Build, misc.Debug)

		return nil
	}

	return cmd.Usage()
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)
	command.Flags().Bool("version", false, "Application version")
	command.AddCommand(
		blobovnicza.Root,
		fstree.Root,
		meta.Root,
		storage.Root,
		writecache.Root,
	)
}

func main() {
	err := command.Execute()
	common.ExitOnErr(command, err)
}
