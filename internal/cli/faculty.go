package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/users333/faculty-registry/internal/bootstrap"
	"github.com/users333/faculty-registry/internal/pkg/validation"
)

func facultyCmd(opts *globalOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "faculty",
		Short: "Manage faculties",
	}

	c.AddCommand(facultyCreateCmd(opts), facultyListCmd(opts))
	return c
}

func facultyCreateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME ABBREVIATION DOMAIN",
		Short: "Create a faculty, replacing any faculty with the same name",
		Args:  cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			input := validation.FacultyInput{Name: args[0], Abbreviation: args[1], Domain: args[2]}
			if err := validation.Struct(input); err != nil {
				return err
			}

			return withApp(c, opts, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				if err := deps.Registry.CreateFaculty(ctx, input.Name, input.Abbreviation, input.Domain); err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "Created faculty %s\n", input.Name)
				return nil
			})
		},
	}
}

func facultyListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List faculties",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withApp(c, opts, func(_ context.Context, deps *bootstrap.Dependencies) error {
				out := c.OutOrStdout()
				faculties := deps.Registry.Faculties()
				if len(faculties) == 0 {
					fmt.Fprintln(out, "(no faculties found)")
					return nil
				}
				for _, f := range faculties {
					fmt.Fprintf(out, "%s (%s, %s) - %d students\n", f.Name, f.Abbreviation, f.Domain, f.Students)
				}
				return nil
			})
		},
	}
}
