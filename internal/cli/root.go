package cli

import (
	"github.com/spf13/cobra"
)

var (
	flagDebug    bool
	flagLogLevel string
)

// NewRootCmd creates the root cobra command for the tieredpool CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tieredpool",
		Short: "Drive load through a strict priority worker pool",
		Long: "tieredpool submits load profiles to a three tier dispatcher " +
			"(high, medium, low) and reports how each tier was served.",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error), overrides the profile")

	root.AddCommand(
		newRunCmd(),
		newTiersCmd(),
	)

	return root
}

// logLevel resolves the effective log level, flags first.
func logLevel(profileLevel string) string {
	if flagDebug {
		return "debug"
	}
	if flagLogLevel != "" {
		return flagLogLevel
	}
	return profileLevel
}
