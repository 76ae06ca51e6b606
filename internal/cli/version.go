package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/users333/faculty-registry/internal/buildinfo"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintln(c.OutOrStdout(), buildinfo.String())
		},
	}
}
