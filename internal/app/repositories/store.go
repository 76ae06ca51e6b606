package repositories

import (
	"context"
	"fmt"

	"github.com/users333/faculty-registry/internal/app/models"
)

// Store persists faculties and students for the registry.
type Store interface {
	// Load returns every faculty and student row in storage order.
	Load(ctx context.Context) (*Dataset, error)
	// SaveFaculties replaces the stored faculties with the given list.
	SaveFaculties(ctx context.Context, faculties []*models.Faculty) error
	// SaveStudents replaces the stored students with the given list.
	SaveStudents(ctx context.Context, students []*models.Student) error
	Close() error
}

// RosterAppender is implemented by stores that can append a faculty's
// whole roster instead of rewriting every student.
type RosterAppender interface {
	AppendRoster(ctx context.Context, faculty *models.Faculty) error
}

// Dataset is the raw content of a store. Students carry the faculty label
// they were saved with; matching them to faculties is up to the caller.
type Dataset struct {
	Faculties []*models.Faculty
	Students  []*models.Student
	Warnings  []LoadWarning
}

// LoadWarning describes a stored row that was skipped.
type LoadWarning struct {
	Source  string
	Line    int
	Content string
	Err     error
}

func (w LoadWarning) String() string {
	return fmt.Sprintf("%s:%d: %v: %s", w.Source, w.Line, w.Err, w.Content)
}
