package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/users333/faculty-registry/internal/app/migrations"
	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/db"
	"github.com/users333/faculty-registry/internal/pkg/logger"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "registry.db"), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, migrations.NewMigrator(database, logger.Nop()).Migrate(context.Background(), migrations.FS))

	store := NewSQLStore(database, logger.Nop())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_EmptyLoad(t *testing.T) {
	store := newSQLStore(t)
	data, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data.Faculties)
	assert.Empty(t, data.Students)
}

func TestSQLStore_RoundTrip(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	eng := models.NewFaculty("Engineering", "ENG", "Technology")
	med := models.NewFaculty("Medicine", "MED", "Health")
	ana := models.NewStudent("Pop", "Ana", "ana@x.com", models.NewDate(2000, time.January, 1))
	dan := models.NewStudent("Ionescu", "Dan", "dan@x.com", models.NewDate(1999, time.May, 5))
	eng.AddStudent(ana)
	ana.MarkGraduated()
	orphan := models.NewStudent("Lost", "Lia", "lia@x.com", models.NewDate(2001, time.July, 7))
	orphan.FacultyName = "Closed Faculty"
	med.AddStudent(dan)

	require.NoError(t, store.SaveFaculties(ctx, []*models.Faculty{eng, med}))
	require.NoError(t, store.SaveStudents(ctx, []*models.Student{ana, dan, orphan}))

	data, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, data.Faculties, 2)
	assert.Equal(t, "Engineering", data.Faculties[0].Name)
	assert.Equal(t, "MED", data.Faculties[1].Abbreviation)

	require.Len(t, data.Students, 3)
	got := data.Students[0]
	assert.Equal(t, ana.ID, got.ID)
	assert.Equal(t, "Pop", got.Surname)
	assert.Equal(t, "Ana", got.GivenName)
	assert.Equal(t, "ana@x.com", got.Email)
	assert.Equal(t, ana.BirthDate.String(), got.BirthDate.String())
	assert.True(t, got.Graduated)
	assert.Equal(t, "Engineering", got.FacultyName)
	assert.False(t, data.Students[1].Graduated)
	assert.Equal(t, "Closed Faculty", data.Students[2].FacultyName)
}

func TestSQLStore_SaveReplacesRows(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	eng := models.NewFaculty("Engineering", "ENG", "Technology")
	ana := models.NewStudent("Pop", "Ana", "ana@x.com", models.NewDate(2000, time.January, 1))
	eng.AddStudent(ana)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveFaculties(ctx, []*models.Faculty{eng}))
		require.NoError(t, store.SaveStudents(ctx, eng.Roster()))
	}

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Faculties, 1)
	assert.Len(t, data.Students, 1)
}

func TestSQLStore_SkipsBadDates(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	_, err := store.database.DB.Exec(
		`INSERT INTO students (position, id, surname, given_name, email, birth_date, graduated, faculty_name)
		 VALUES (0, 'not-a-uuid', 'Pop', 'Ana', 'ana@x.com', '2000-01-01', 0, 'Engineering'),
		        (1, 'x', 'Bad', 'Row', 'b@x.com', 'yesterday', 0, 'Engineering')`)
	require.NoError(t, err)

	data, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, data.Students, 1)
	assert.NotEqual(t, "", data.Students[0].ID.String())
	require.Len(t, data.Warnings, 1)
	assert.Equal(t, 1, data.Warnings[0].Line)
}
