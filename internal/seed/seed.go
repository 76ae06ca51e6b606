package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/users333/faculty-registry/internal/config"
)

// FacultyCreator is the registry surface the seeder needs
type FacultyCreator interface {
	ListFaculties() []string
	CreateFaculty(ctx context.Context, name, abbreviation, domain string) error
}

// CreateDefaultData creates the configured faculties that don't exist yet.
// Existing faculties are left untouched so their rosters survive.
func CreateDefaultData(ctx context.Context, registry FacultyCreator, faculties []config.SeedFaculty, lgr zerolog.Logger) (int, error) {
	lgr.Info().Int("configured", len(faculties)).Msg("Checking/Creating default faculties...")

	existing := make(map[string]struct{})
	for _, name := range registry.ListFaculties() {
		existing[name] = struct{}{}
	}

	created := 0
	var finalErr error // collect errors without stopping the process
	for _, f := range faculties {
		if _, ok := existing[f.Name]; ok {
			lgr.Debug().Str("faculty", f.Name).Msg("Faculty already exists, skipping")
			continue
		}

		if err := registry.CreateFaculty(ctx, f.Name, f.Abbreviation, f.Domain); err != nil {
			lgr.Error().Err(err).Str("faculty", f.Name).Msg("Error creating default faculty")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		existing[f.Name] = struct{}{}
		created++
	}

	lgr.Info().Int("created", created).Msg("Default faculties checked")
	return created, finalErr
}
