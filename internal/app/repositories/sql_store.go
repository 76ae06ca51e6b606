package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/db"
	"github.com/users333/faculty-registry/internal/pkg/apperrors"
)

// SQLStore keeps faculties and students in two SQL tables.
type SQLStore struct {
	database *db.Database
	sb       squirrel.StatementBuilderType
	logger   zerolog.Logger
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a SQLStore. The schema must already be migrated.
func NewSQLStore(database *db.Database, logger zerolog.Logger) *SQLStore {
	return &SQLStore{
		database: database,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(database.Placeholder),
		logger:   logger.With().Str("component", "sql_store").Str("driver", database.Driver).Logger(),
	}
}

// Load reads both tables in saved order
func (s *SQLStore) Load(ctx context.Context) (*Dataset, error) {
	data := &Dataset{}

	faculties, err := s.loadFaculties(ctx)
	if err != nil {
		return nil, err
	}
	data.Faculties = faculties

	if err := s.loadStudents(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *SQLStore) loadFaculties(ctx context.Context) ([]*models.Faculty, error) {
	query, args, err := s.sb.Select("name", "abbreviation", "domain").
		From("faculties").
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all faculties query: %w", err)
	}

	rows, err := s.database.DB.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error executing get all faculties query")
		return nil, fmt.Errorf("error querying faculties: %w", err)
	}
	defer rows.Close()

	var faculties []*models.Faculty
	for rows.Next() {
		f := &models.Faculty{}
		if err := rows.Scan(&f.Name, &f.Abbreviation, &f.Domain); err != nil {
			return nil, fmt.Errorf("error scanning faculty row: %w", err)
		}
		faculties = append(faculties, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating faculty rows: %w", err)
	}
	return faculties, nil
}

func (s *SQLStore) loadStudents(ctx context.Context, data *Dataset) error {
	query, args, err := s.sb.Select("position", "id", "surname", "given_name", "email", "birth_date", "graduated", "faculty_name").
		From("students").
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build get all students query: %w", err)
	}

	rows, err := s.database.DB.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error executing get all students query")
		return fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			position  int
			id        string
			birthDate string
			st        models.Student
		)
		if err := rows.Scan(&position, &id, &st.Surname, &st.GivenName, &st.Email, &birthDate, &st.Graduated, &st.FacultyName); err != nil {
			return fmt.Errorf("error scanning student row: %w", err)
		}

		date, err := models.ParseDate(birthDate)
		if err != nil {
			data.Warnings = append(data.Warnings, LoadWarning{
				Source:  "students",
				Line:    position,
				Content: st.Surname + " " + birthDate,
				Err:     apperrors.NewCustomError(apperrors.ErrMalformedRecord, err.Error()),
			})
			s.logger.Warn().Int("position", position).Str("birth_date", birthDate).Msg("Skipping student with invalid birth date")
			continue
		}
		st.BirthDate = date

		parsedID, err := uuid.Parse(id)
		if err != nil {
			s.logger.Warn().Int("position", position).Str("id", id).Msg("Student has invalid id, assigning a new one")
			parsedID = uuid.New()
		}
		st.ID = parsedID

		data.Students = append(data.Students, &st)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating student rows: %w", err)
	}
	return nil
}

// SaveFaculties replaces the faculties table inside one transaction
func (s *SQLStore) SaveFaculties(ctx context.Context, faculties []*models.Faculty) error {
	return db.WithTransaction(ctx, s.database.DB, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.exec(ctx, tx, s.sb.Delete("faculties")); err != nil {
			return fmt.Errorf("error clearing faculties: %w", err)
		}
		for i, f := range faculties {
			insert := s.sb.Insert("faculties").
				Columns("name", "abbreviation", "domain", "position").
				Values(f.Name, f.Abbreviation, f.Domain, i)
			if err := s.exec(ctx, tx, insert); err != nil {
				s.logger.Error().Err(err).Str("faculty", f.Name).Msg("Error inserting faculty")
				return fmt.Errorf("error saving faculty %s: %w", f.Name, err)
			}
		}
		return nil
	})
}

// SaveStudents replaces the students table inside one transaction
func (s *SQLStore) SaveStudents(ctx context.Context, students []*models.Student) error {
	return db.WithTransaction(ctx, s.database.DB, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.exec(ctx, tx, s.sb.Delete("students")); err != nil {
			return fmt.Errorf("error clearing students: %w", err)
		}
		for i, st := range students {
			insert := s.sb.Insert("students").
				Columns("position", "id", "surname", "given_name", "email", "birth_date", "graduated", "faculty_name").
				Values(i, st.ID.String(), st.Surname, st.GivenName, st.Email, st.BirthDate.String(), st.Graduated, st.FacultyName)
			if err := s.exec(ctx, tx, insert); err != nil {
				s.logger.Error().Err(err).Str("student", st.Surname).Msg("Error inserting student")
				return fmt.Errorf("error saving student %s: %w", st.Surname, err)
			}
		}
		return nil
	})
}

// Close closes the underlying database
func (s *SQLStore) Close() error {
	return s.database.Close()
}

func (s *SQLStore) exec(ctx context.Context, tx *sql.Tx, builder squirrel.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
