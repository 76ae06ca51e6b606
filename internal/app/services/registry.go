package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/app/repositories"
	"github.com/users333/faculty-registry/internal/pkg/apperrors"
	"github.com/users333/faculty-registry/internal/pkg/oplog"
)

// Options tunes persistence behaviour
type Options struct {
	// LegacyAppendRoster appends a faculty's whole roster to the student
	// store after each student change instead of rewriting the store.
	// Earlier rows are repeated on every save.
	LegacyAppendRoster bool
}

// LoadReport summarizes what Load put in memory
type LoadReport struct {
	Faculties  int
	Students   int
	Unassigned int
	Warnings   []repositories.LoadWarning
}

// FacultySummary is a read-only view of one faculty
type FacultySummary struct {
	Name         string
	Abbreviation string
	Domain       string
	Students     int
}

// StudentListing is the result of ListStudents
type StudentListing struct {
	Faculty    string
	Students   []models.Student
	Unassigned []models.Student
}

// Registry owns every faculty and unassigned student and keeps the store
// and the operation log in step with them.
type Registry struct {
	store  repositories.Store
	sink   oplog.Sink
	logger zerolog.Logger
	opts   Options

	faculties  map[string]*models.Faculty
	order      []string
	unassigned []*models.Student
	closed     bool
}

// NewRegistry creates an empty registry. Call Load to read the store.
func NewRegistry(store repositories.Store, sink oplog.Sink, logger zerolog.Logger, opts Options) *Registry {
	return &Registry{
		store:     store,
		sink:      sink,
		logger:    logger.With().Str("component", "registry").Logger(),
		opts:      opts,
		faculties: make(map[string]*models.Faculty),
	}
}

// Load replaces the in-memory state with the store content. Students whose
// faculty is unknown go to the unassigned list.
func (r *Registry) Load(ctx context.Context) (LoadReport, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return LoadReport{}, fmt.Errorf("error loading registry: %w", err)
	}

	r.faculties = make(map[string]*models.Faculty, len(data.Faculties))
	r.order = nil
	r.unassigned = nil

	for _, f := range data.Faculties {
		r.putFaculty(f)
	}
	for _, s := range data.Students {
		if f, ok := r.faculties[s.FacultyName]; ok {
			f.AddStudent(s)
			continue
		}
		r.unassigned = append(r.unassigned, s)
	}

	report := LoadReport{
		Faculties:  len(r.faculties),
		Students:   len(data.Students),
		Unassigned: len(r.unassigned),
		Warnings:   data.Warnings,
	}
	r.logger.Info().
		Int("faculties", report.Faculties).
		Int("students", report.Students).
		Int("unassigned", report.Unassigned).
		Int("skipped", len(report.Warnings)).
		Msg("Registry loaded")
	return report, nil
}

// CreateFaculty inserts a faculty, replacing (and emptying) any faculty with the same name
func (r *Registry) CreateFaculty(ctx context.Context, name, abbreviation, domain string) error {
	faculty := models.NewFaculty(name, abbreviation, domain)
	replaced := r.putFaculty(faculty)
	if replaced != nil {
		r.logger.Warn().Str("faculty", name).Int("dropped_students", replaced.Len()).Msg("Faculty replaced")
	}
	adopted := r.adoptUnassigned(faculty)
	if adopted > 0 {
		r.logger.Info().Str("faculty", name).Int("students", adopted).Msg("Unassigned students joined faculty")
	}

	if err := r.store.SaveFaculties(ctx, r.facultyList()); err != nil {
		return r.persistenceError("save faculties", err)
	}

	// The stored student order must match the rosters: a dropped roster must
	// not come back and adopted students now sort with their faculty.
	droppedRoster := replaced != nil && replaced.Len() > 0
	if (droppedRoster || adopted > 0) && !r.opts.LegacyAppendRoster {
		if err := r.store.SaveStudents(ctx, r.allStudents()); err != nil {
			return r.persistenceError("save students", err)
		}
	}

	r.LogOperation("Creata facultatea " + name)
	return nil
}

// AssignStudent adds student to the roster of facultyName
func (r *Registry) AssignStudent(ctx context.Context, facultyName string, student *models.Student) error {
	faculty, ok := r.faculties[facultyName]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrFacultyNotFound, facultyName)
	}

	faculty.AddStudent(student)
	if err := r.persistRoster(ctx, faculty); err != nil {
		return err
	}

	r.LogOperation("Atribuit studentul " + student.Surname + " la facultatea " + facultyName)
	return nil
}

// MarkGraduated graduates the first student of facultyName whose surname
// matches exactly. Other students with the same surname are left alone.
func (r *Registry) MarkGraduated(ctx context.Context, facultyName, surname string) error {
	faculty, ok := r.faculties[facultyName]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrFacultyNotFound, facultyName)
	}

	student, matches := faculty.FindBySurname(surname)
	if student == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrStudentNotFound, surname)
	}
	if matches > 1 {
		r.logger.Warn().
			Str("faculty", facultyName).
			Str("surname", surname).
			Int("matches", matches).
			Msg("Surname is ambiguous, graduating the first listed student")
	}

	return r.graduate(ctx, faculty, student)
}

// GraduateByID graduates the student with the given id in facultyName
func (r *Registry) GraduateByID(ctx context.Context, facultyName string, id uuid.UUID) error {
	faculty, ok := r.faculties[facultyName]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrFacultyNotFound, facultyName)
	}

	for _, s := range faculty.Roster() {
		if s.ID == id {
			return r.graduate(ctx, faculty, s)
		}
	}
	return fmt.Errorf("%w: %s", apperrors.ErrStudentNotFound, id)
}

func (r *Registry) graduate(ctx context.Context, faculty *models.Faculty, student *models.Student) error {
	student.MarkGraduated()
	if err := r.persistRoster(ctx, faculty); err != nil {
		return err
	}

	r.LogOperation("Studentul " + student.Surname + " a absolvit la facultatea " + faculty.Name)
	return nil
}

// ListFaculties returns every faculty name in Romanian collation order
func (r *Registry) ListFaculties() []string {
	names := make([]string, 0, len(r.faculties))
	for name := range r.faculties {
		names = append(names, name)
	}
	collate.New(language.Romanian).SortStrings(names)
	return names
}

// Faculties returns a summary of every faculty, ordered like ListFaculties
func (r *Registry) Faculties() []FacultySummary {
	names := r.ListFaculties()
	out := make([]FacultySummary, 0, len(names))
	for _, name := range names {
		f := r.faculties[name]
		out = append(out, FacultySummary{
			Name:         f.Name,
			Abbreviation: f.Abbreviation,
			Domain:       f.Domain,
			Students:     f.Len(),
		})
	}
	return out
}

// ListStudents returns the roster of facultyName and the unassigned students.
// The unassigned list is filled even when the faculty does not exist.
func (r *Registry) ListStudents(facultyName string) (StudentListing, error) {
	listing := StudentListing{
		Faculty:    facultyName,
		Unassigned: copyStudents(r.unassigned),
	}

	faculty, ok := r.faculties[facultyName]
	if !ok {
		return listing, fmt.Errorf("%w: %s", apperrors.ErrFacultyNotFound, facultyName)
	}
	listing.Students = faculty.Students()
	return listing, nil
}

// LogOperation records message in the operation log. Failures are logged, not returned.
func (r *Registry) LogOperation(message string) {
	if err := r.sink.Record(message); err != nil {
		r.logger.Error().Err(err).Str("operation", message).Msg("Error writing operation log")
	}
}

// Close releases the operation log and the store. Later calls do nothing.
func (r *Registry) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if err := r.sink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close operation log: %w", err))
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

// putFaculty stores f under its name and returns the faculty it replaced, if any.
// A replaced faculty keeps its position in the persisted order.
func (r *Registry) putFaculty(f *models.Faculty) *models.Faculty {
	previous, exists := r.faculties[f.Name]
	r.faculties[f.Name] = f
	if !exists {
		r.order = append(r.order, f.Name)
	}
	return previous
}

// adoptUnassigned moves unassigned students recorded under faculty's name
// onto its roster, keeping their order. A reload would do the same.
func (r *Registry) adoptUnassigned(faculty *models.Faculty) int {
	kept := r.unassigned[:0]
	adopted := 0
	for _, s := range r.unassigned {
		if s.FacultyName == faculty.Name {
			faculty.AddStudent(s)
			adopted++
			continue
		}
		kept = append(kept, s)
	}
	r.unassigned = kept
	return adopted
}

func (r *Registry) facultyList() []*models.Faculty {
	out := make([]*models.Faculty, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.faculties[name])
	}
	return out
}

// allStudents lists every owned student: rosters in faculty order, then unassigned.
func (r *Registry) allStudents() []*models.Student {
	var out []*models.Student
	for _, name := range r.order {
		out = append(out, r.faculties[name].Roster()...)
	}
	return append(out, r.unassigned...)
}

func (r *Registry) persistRoster(ctx context.Context, faculty *models.Faculty) error {
	if r.opts.LegacyAppendRoster {
		if appender, ok := r.store.(repositories.RosterAppender); ok {
			if err := appender.AppendRoster(ctx, faculty); err != nil {
				return r.persistenceError("append roster", err)
			}
			return nil
		}
		r.logger.Debug().Msg("Store cannot append rosters, rewriting students instead")
	}

	if err := r.store.SaveStudents(ctx, r.allStudents()); err != nil {
		return r.persistenceError("save students", err)
	}
	return nil
}

func (r *Registry) persistenceError(op string, err error) error {
	r.logger.Error().Err(err).Str("op", op).Msg("Error persisting registry")
	return fmt.Errorf("%w: %s: %w", apperrors.ErrPersistence, op, err)
}

func copyStudents(in []*models.Student) []models.Student {
	out := make([]models.Student, 0, len(in))
	for _, s := range in {
		out = append(out, *s)
	}
	return out
}
