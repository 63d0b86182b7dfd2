package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/tieredpool"
)

func newTiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the dispatcher's tiers and worker counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%-8s  %-7s  %-8s  %s\n", "TIER", "WORKERS", "PARENT", "SERVES")
			fmt.Fprintf(out, "%-8s  %-7s  %-8s  %s\n", "----", "-------", "------", "------")

			// Tiers are chained highest first, each beneath the one before it.
			parent, serves := "-", ""
			for _, tier := range tieredpool.Tiers.All() {
				if serves == "" {
					serves = tier.String()
				} else {
					serves += "," + tier.String()
				}
				fmt.Fprintf(out, "%-8s  %-7d  %-8s  %s\n", tier, tier.Workers(), parent, serves)
				parent = tier.String()
			}
			return nil
		},
	}
}
