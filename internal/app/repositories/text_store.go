package repositories

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/pkg/filestorage"
)

// TextStore keeps faculties and students in two comma-delimited text files.
type TextStore struct {
	storage       *filestorage.LocalStorage
	facultiesFile string
	studentsFile  string
	logger        zerolog.Logger
}

var (
	_ Store          = (*TextStore)(nil)
	_ RosterAppender = (*TextStore)(nil)
)

// NewTextStore creates a TextStore over two files inside storage
func NewTextStore(storage *filestorage.LocalStorage, facultiesFile, studentsFile string, logger zerolog.Logger) *TextStore {
	return &TextStore{
		storage:       storage,
		facultiesFile: facultiesFile,
		studentsFile:  studentsFile,
		logger:        logger.With().Str("component", "text_store").Logger(),
	}
}

// Load reads the faculty file, then the student file.
// Faculty rows that are too short are skipped silently; bad student rows
// are skipped and reported as warnings.
func (s *TextStore) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := &Dataset{}

	err := s.storage.ReadLines(s.facultiesFile, func(lineNo int, line string) error {
		fields, err := SplitRecord(line)
		if err != nil || len(fields) < FacultyFields {
			s.logger.Debug().Int("line", lineNo).Str("content", line).Msg("Skipping short faculty row")
			return nil
		}
		faculty, _ := DecodeFaculty(fields)
		data.Faculties = append(data.Faculties, faculty)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error loading faculties: %w", err)
	}

	err = s.storage.ReadLines(s.studentsFile, func(lineNo int, line string) error {
		fields, err := SplitRecord(line)
		if err == nil && fields == nil {
			return nil
		}
		var student *models.Student
		if err == nil {
			student, err = DecodeStudent(fields)
		}
		if err != nil {
			w := LoadWarning{Source: s.studentsFile, Line: lineNo, Content: line, Err: err}
			s.logger.Warn().Int("line", lineNo).Str("content", line).Err(err).Msg("Incorrect line in students file")
			data.Warnings = append(data.Warnings, w)
			return nil
		}
		data.Students = append(data.Students, student)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error loading students: %w", err)
	}

	s.logger.Debug().
		Int("faculties", len(data.Faculties)).
		Int("students", len(data.Students)).
		Int("warnings", len(data.Warnings)).
		Msg("Text store loaded")
	return data, nil
}

// SaveFaculties rewrites the faculty file wholesale
func (s *TextStore) SaveFaculties(ctx context.Context, faculties []*models.Faculty) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.storage.Rewrite(s.facultiesFile, func(w io.Writer) error {
		for _, f := range faculties {
			if _, err := io.WriteString(w, EncodeFaculty(f)+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving faculties: %w", err)
	}
	return nil
}

// SaveStudents rewrites the student file wholesale
func (s *TextStore) SaveStudents(ctx context.Context, students []*models.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.storage.Rewrite(s.studentsFile, func(w io.Writer) error {
		return writeStudents(w, students)
	})
	if err != nil {
		return fmt.Errorf("error saving students: %w", err)
	}
	return nil
}

// AppendRoster appends every student of faculty to the student file
// without looking at what is already there.
func (s *TextStore) AppendRoster(ctx context.Context, faculty *models.Faculty) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.storage.Append(s.studentsFile, func(w io.Writer) error {
		return writeStudents(w, faculty.Roster())
	})
	if err != nil {
		return fmt.Errorf("error appending roster of %s: %w", faculty.Name, err)
	}
	return nil
}

// Close is a no-op; files are opened per operation.
func (s *TextStore) Close() error {
	return nil
}

func writeStudents(w io.Writer, students []*models.Student) error {
	for _, st := range students {
		if _, err := io.WriteString(w, EncodeStudent(st, st.FacultyName)+"\n"); err != nil {
			return err
		}
	}
	return nil
}
