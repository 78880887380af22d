package writecache

import (
	"github.com/spf13/cobra"
)

var vPath string

// Root contains `writecache` command definition.
var Root = &cobra.Command{
	Use:   "writecache",
	Short: "Operations with write-cache",
}

func init() {
	Root.AddCommand(listCMD)
}
