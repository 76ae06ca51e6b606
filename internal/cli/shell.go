package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/users333/faculty-registry/internal/app/console"
	"github.com/users333/faculty-registry/internal/bootstrap"
)

func shellCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runShell(c, opts)
		},
	}
}

func runShell(c *cobra.Command, opts *globalOptions) error {
	return withApp(c, opts, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		// Run closes the registry itself; the deferred Close in withApp is then a no-op.
		d := console.NewDispatcher(deps.Registry, c.InOrStdin(), c.OutOrStdout(), deps.Logger)
		return d.Run(ctx)
	})
}
