package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/bootstrap"
	"github.com/users333/faculty-registry/internal/pkg/validation"
)

func studentCmd(opts *globalOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "student",
		Short: "Manage students",
	}

	c.AddCommand(studentAssignCmd(opts), studentListCmd(opts), studentGraduateCmd(opts))
	return c
}

func studentAssignCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign FACULTY SURNAME GIVEN_NAME EMAIL BIRTH_DATE",
		Short: "Assign a new student to a faculty (BIRTH_DATE is YYYY-MM-DD)",
		Args:  cobra.ExactArgs(5),
		RunE: func(c *cobra.Command, args []string) error {
			input := validation.StudentInput{
				Faculty:   args[0],
				Surname:   args[1],
				GivenName: args[2],
				Email:     args[3],
				BirthDate: args[4],
			}
			if err := validation.Struct(input); err != nil {
				return err
			}
			birthDate, err := models.ParseDate(input.BirthDate)
			if err != nil {
				return err
			}

			return withApp(c, opts, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				student := models.NewStudent(input.Surname, input.GivenName, input.Email, birthDate)
				if err := deps.Registry.AssignStudent(ctx, input.Faculty, student); err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "Assigned %s to %s\n", student.Surname, input.Faculty)
				return nil
			})
		},
	}
}

func studentListCmd(opts *globalOptions) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "list FACULTY",
		Short: "List the students of a faculty and the unassigned students",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(c, opts, func(_ context.Context, deps *bootstrap.Dependencies) error {
				out := c.OutOrStdout()
				listing, listErr := deps.Registry.ListStudents(args[0])
				for _, s := range listing.Students {
					printStudent(out, s, showIDs)
				}
				fmt.Fprintln(out, "Unassigned students:")
				for _, s := range listing.Unassigned {
					printStudent(out, s, showIDs)
				}
				return listErr
			})
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "print student ids (stable with SQL backends only)")
	return cmd
}

func printStudent(out io.Writer, s models.Student, showID bool) {
	line := s.DisplayName()
	if s.Graduated {
		line += " (graduated)"
	}
	if showID {
		line = s.ID.String() + "  " + line
	}
	fmt.Fprintln(out, line)
}

func studentGraduateCmd(opts *globalOptions) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "graduate FACULTY [SURNAME]",
		Short: "Mark a student as graduated, by surname or by --id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			if (len(args) == 2) == (id != "") {
				return errors.New("give either SURNAME or --id")
			}

			var studentID uuid.UUID
			if id != "" {
				parsed, err := uuid.Parse(id)
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
				studentID = parsed
			}

			return withApp(c, opts, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				if id != "" {
					return deps.Registry.GraduateByID(ctx, args[0], studentID)
				}
				return deps.Registry.MarkGraduated(ctx, args[0], args[1])
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "student id as printed by 'student list --ids'")
	return cmd
}
