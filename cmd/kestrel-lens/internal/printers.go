package common

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// PrintObjectHeader prints object header fields as a table.
func PrintObjectHeader(cmd *cobra.Command, obj *object.Object) {
	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"Field", "Value"})
	out.SetAutoWrapText(false)
	out.SetAlignment(tablewriter.ALIGN_LEFT)

	out.AppendBulk(headerRows(obj))
	out.Render()

	if par := obj.Parent(); par != nil {
		cmd.Println("Parent header:")
		PrintObjectHeader(cmd, par)
	}
}

func headerRows(obj *object.Object) [][]string {
	var rows [][]string

	add := func(k, v string) {
		rows = append(rows, []string{k, v})
	}

	if id, ok := obj.ID(); ok {
		add("ID", id.String())
	} else {
		add("ID", "<empty>")
	}

	if cnr, ok := obj.Container(); ok {
		add("Container", cnr.String())
	}

	add("Owner", hex.EncodeToString(obj.OwnerID()))
	add("Type", obj.Type().String())
	add("Creation epoch", strconv.FormatUint(obj.CreationEpoch(), 10))
	add("Payload size", strconv.FormatUint(obj.PayloadSize(), 10))

	if cs, ok := obj.PayloadChecksum(); ok {
		add("Checksum (SHA-256)", hex.EncodeToString(cs[:]))
	}

	if hh, ok := obj.PayloadHomomorphicHash(); ok {
		add("Homomorphic hash", hex.EncodeToString(hh[:]))
	}

	for _, a := range obj.Attributes() {
		add("Attribute "+a.Key, a.Value)
	}

	if sid := obj.SplitID(); sid != nil {
		add("Split ID", sid.String())
	}

	if id, ok := obj.ParentID(); ok {
		add("Parent ID", id.String())
	}

	if id, ok := obj.PreviousID(); ok {
		add("Previous ID", id.String())
	}

	for _, ch := range obj.Children() {
		add("Child", ch.String())
	}

	return rows
}

// WriteObjectToFile writes object data to the file at path. Does nothing
// if path is empty.
func WriteObjectToFile(cmd *cobra.Command, path string, data []byte, payloadOnly bool) error {
	if path == "" {
		return nil
	}

	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("could not write file: %w", err)
	}

	if payloadOnly {
		cmd.Printf("\nSaved payload to '%s' file\n", path)
	} else {
		cmd.Printf("\nSaved object to '%s' file\n", path)
	}

	return nil
}

// ReadObject decodes object and prints its header. Object or its payload
// is saved to out file if it is set.
func ReadObject(cmd *cobra.Command, data []byte, out string, payloadOnly bool) error {
	obj := object.New()

	err := obj.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("could not unmarshal object: %w", err)
	}

	PrintObjectHeader(cmd, obj)

	if payloadOnly {
		return WriteObjectToFile(cmd, out, obj.Payload(), true)
	}

	return WriteObjectToFile(cmd, out, data, false)
}
