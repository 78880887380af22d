package common

import (
	"github.com/spf13/cobra"
)

const (
	flagAddress     = "address"
	flagAddressDesc = "Object address"

	flagEnginePath     = "path"
	flagEnginePathDesc = "Path to storage engine component"

	flagOutFile     = "out"
	flagOutFileDesc = "File to save object payload"

	flagPayloadOnly     = "payload-only"
	flagPayloadOnlyDesc = "Save only object payload"

	flagConfigFile     = "config"
	flagConfigFileDesc = "Path to the node configuration file"
)

// AddAddressFlag adds the address flag to the passed cobra command.
func AddAddressFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagAddress, "", flagAddressDesc)
	_ = cmd.MarkFlagRequired(flagAddress)
}

// AddComponentPathFlag adds the path-to-component flag to the
// passed cobra command.
func AddComponentPathFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagEnginePath, "", flagEnginePathDesc)
	_ = cmd.MarkFlagFilename(flagEnginePath)
	_ = cmd.MarkFlagRequired(flagEnginePath)
}

// AddOutputFileFlag adds the output file flag to the passed cobra
// command.
func AddOutputFileFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagOutFile, "", flagOutFileDesc)
	_ = cmd.MarkFlagFilename(flagOutFile)
}

// AddPayloadOnlyFlag adds the payload-only flag to the passed cobra
// command.
func AddPayloadOnlyFlag(cmd *cobra.Command, v *bool) {
	cmd.Flags().BoolVar(v, flagPayloadOnly, false, flagPayloadOnlyDesc)
}

// AddConfigFileFlag adds the config file flag to the passed cobra command.
func AddConfigFileFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVarP(v, flagConfigFile, "c", "", flagConfigFileDesc)
	_ = cmd.MarkFlagFilename(flagConfigFile)
	_ = cmd.MarkFlagRequired(flagConfigFile)
}
