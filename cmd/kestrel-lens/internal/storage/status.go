package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	common "github.com/kestrelfs/kestrel-node/cmd/kestrel-lens/internal"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var statusCMD = &cobra.Command{
	Use:   "status",
	Short: "Storage engine status",
	Long: `Print shards of the storage engine described by the node configuration.
If object address is given, the object header is printed too.`,
	Args: cobra.NoArgs,
	RunE: statusFunc,
}

func init() {
	common.AddConfigFileFlag(statusCMD, &vConfig)
	statusCMD.Flags().StringVar(&vAddress, "address", "", "Object address")
}

func statusFunc(cmd *cobra.Command, _ []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"Shard", "Mode", "Errors", "Metabase", "Blob storages", "Write-cache"})
	out.SetAutoWrapText(false)

	for _, sh := range e.DumpInfo().Shards {
		subs := make([]string, 0, len(sh.BlobStorInfo.SubStorages))
		for _, s := range sh.BlobStorInfo.SubStorages {
			subs = append(subs, s.Type+": "+s.Path)
		}

		out.Append([]string{
			sh.ID.String(),
			sh.Mode.String(),
			strconv.FormatUint(uint64(sh.ErrorCount), 10),
			sh.MetaBaseInfo.Path,
			strings.Join(subs, "\n"),
			sh.WriteCacheInfo.Path,
		})
	}

	out.Render()

	cnrs, err := e.ListContainers()
	if err != nil {
		return fmt.Errorf("could not list containers: %w", err)
	}

	for _, cnr := range cnrs {
		sz, err := e.ContainerSize(cnr)
		if err != nil {
			return fmt.Errorf("could not get size of %s container: %w", cnr, err)
		}

		cmd.Printf("Container %s: %d bytes\n", cnr, sz)
	}

	if vAddress == "" {
		return nil
	}

	addr, err := common.ParseAddress(vAddress)
	if err != nil {
		return err
	}

	hdr, err := e.Head(addr, true)

	var siErr *object.SplitInfoError
	if errors.As(err, &siErr) {
		cmd.Println("Object is virtual, only its parts are stored")
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not fetch object: %w", err)
	}

	common.PrintObjectHeader(cmd, hdr)

	return nil
}
