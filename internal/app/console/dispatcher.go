package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/app/services"
	"github.com/users333/faculty-registry/internal/pkg/apperrors"
	"github.com/users333/faculty-registry/internal/pkg/validation"
)

const menu = `Select an operation:
1. Create a new faculty
2. Assign a student to a faculty
3. List all faculties
4. List students of a faculty and unassigned students
5. Mark student graduation
0. Exit
`

// User-facing messages
const (
	MsgInvalidChoice   = "Invalid choice. Please enter a number between 0 and 5."
	MsgFacultyMissing  = "Faculty does not exist."
	MsgStudentMissing  = "Student not found in the specified faculty."
	MsgInvalidDate     = "Invalid date, expected YYYY-MM-DD."
	MsgFacultiesHeader = "Faculties:"
	MsgUnassigned      = "Unassigned students:"
)

// errInputClosed ends the session when the input runs out mid-operation.
var errInputClosed = errors.New("input closed")

// Registry is the part of services.Registry the menu drives
type Registry interface {
	CreateFaculty(ctx context.Context, name, abbreviation, domain string) error
	AssignStudent(ctx context.Context, facultyName string, student *models.Student) error
	MarkGraduated(ctx context.Context, facultyName, surname string) error
	ListFaculties() []string
	ListStudents(facultyName string) (services.StudentListing, error)
	Close() error
}

// Dispatcher runs the numbered menu over a line-oriented reader and writer
type Dispatcher struct {
	registry Registry
	in       *bufio.Scanner
	out      io.Writer
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher reading commands from in and printing to out
func NewDispatcher(registry Registry, in io.Reader, out io.Writer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   logger.With().Str("component", "console").Logger(),
	}
}

// Run loops until the user picks 0 or the input ends, then closes the registry.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		fmt.Fprint(d.out, menu)

		line, err := d.readLine()
		if err != nil {
			return d.finish(err)
		}

		choice, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil {
			d.println(MsgInvalidChoice)
			continue
		}

		switch choice {
		case 0:
			return d.finish(nil)
		case 1:
			err = d.createFaculty(ctx)
		case 2:
			err = d.assignStudent(ctx)
		case 3:
			d.listFaculties()
		case 4:
			err = d.listStudents()
		case 5:
			err = d.markGraduated(ctx)
		default:
			d.println(MsgInvalidChoice)
		}
		if err != nil {
			return d.finish(err)
		}
	}
}

func (d *Dispatcher) finish(err error) error {
	closeErr := d.registry.Close()
	if err != nil && !errors.Is(err, errInputClosed) {
		return errors.Join(err, closeErr)
	}
	return closeErr
}

func (d *Dispatcher) createFaculty(ctx context.Context) error {
	var input validation.FacultyInput
	var err error
	if input.Name, err = d.prompt("Enter the faculty name:"); err != nil {
		return err
	}
	if input.Abbreviation, err = d.prompt("Enter the faculty abbreviation:"); err != nil {
		return err
	}
	if input.Domain, err = d.prompt("Enter the faculty domain:"); err != nil {
		return err
	}

	if err := validation.Struct(input); err != nil {
		d.println(err.Error())
		return nil
	}

	d.report(d.registry.CreateFaculty(ctx, input.Name, input.Abbreviation, input.Domain))
	return nil
}

func (d *Dispatcher) assignStudent(ctx context.Context) error {
	var input validation.StudentInput
	var err error
	if input.Faculty, err = d.prompt("Enter the faculty name:"); err != nil {
		return err
	}
	if input.Surname, err = d.prompt("Enter the student surname:"); err != nil {
		return err
	}
	if input.GivenName, err = d.prompt("Enter the student given name:"); err != nil {
		return err
	}
	if input.Email, err = d.prompt("Enter the student email:"); err != nil {
		return err
	}

	var birthDate models.Date
	for {
		if input.BirthDate, err = d.prompt("Enter the student birth date (YYYY-MM-DD):"); err != nil {
			return err
		}
		if birthDate, err = models.ParseDate(input.BirthDate); err == nil {
			break
		}
		d.println(MsgInvalidDate)
	}

	if err := validation.Struct(input); err != nil {
		d.println(err.Error())
		return nil
	}

	student := models.NewStudent(input.Surname, input.GivenName, input.Email, birthDate)
	d.report(d.registry.AssignStudent(ctx, input.Faculty, student))
	return nil
}

func (d *Dispatcher) listFaculties() {
	d.println(MsgFacultiesHeader)
	for _, name := range d.registry.ListFaculties() {
		d.println(name)
	}
}

func (d *Dispatcher) listStudents() error {
	name, err := d.prompt("Enter the faculty name:")
	if err != nil {
		return err
	}

	listing, err := d.registry.ListStudents(name)
	if err != nil {
		d.report(err)
	}
	for _, s := range listing.Students {
		d.println(s.DisplayName())
	}

	d.println(MsgUnassigned)
	for _, s := range listing.Unassigned {
		d.println(s.DisplayName())
	}
	return nil
}

func (d *Dispatcher) markGraduated(ctx context.Context) error {
	faculty, err := d.prompt("Enter the faculty name:")
	if err != nil {
		return err
	}
	surname, err := d.prompt("Enter the surname of the graduating student:")
	if err != nil {
		return err
	}

	d.report(d.registry.MarkGraduated(ctx, faculty, surname))
	return nil
}

// report prints one line for a failed registry call.
func (d *Dispatcher) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrFacultyNotFound):
		d.println(MsgFacultyMissing)
	case errors.Is(err, apperrors.ErrStudentNotFound):
		d.println(MsgStudentMissing)
	case errors.Is(err, apperrors.ErrPersistence):
		d.println("Error saving data: " + err.Error())
	default:
		d.logger.Error().Err(err).Msg("Operation failed")
		d.println("Operation failed: " + err.Error())
	}
}

func (d *Dispatcher) prompt(question string) (string, error) {
	d.println(question)
	return d.readLine()
}

func (d *Dispatcher) readLine() (string, error) {
	if d.in.Scan() {
		return strings.TrimRight(d.in.Text(), "\r"), nil
	}
	if err := d.in.Err(); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return "", errInputClosed
}

func (d *Dispatcher) println(line string) {
	fmt.Fprintln(d.out, line)
}
