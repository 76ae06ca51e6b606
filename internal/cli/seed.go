package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/users333/faculty-registry/internal/bootstrap"
	"github.com/users333/faculty-registry/internal/seed"
)

func seedCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the configured default faculties that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withApp(c, opts, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				created, err := seed.CreateDefaultData(ctx, deps.Registry, deps.Config.Seed.Faculties, deps.Logger)
				fmt.Fprintf(c.OutOrStdout(), "Created %d of %d default faculties\n", created, len(deps.Config.Seed.Faculties))
				return err
			})
		},
	}
}
