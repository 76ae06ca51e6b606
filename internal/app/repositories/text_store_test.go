package repositories

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/pkg/filestorage"
	"github.com/users333/faculty-registry/internal/pkg/logger"
)

func newTextStore(t *testing.T) (*TextStore, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir, logger.Nop())
	require.NoError(t, err)
	return NewTextStore(storage, "facultati.txt", "studenti.txt", logger.Nop()), dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readLines(t *testing.T, dir, name string) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestTextStore_LoadMissingFiles(t *testing.T) {
	store, _ := newTextStore(t)
	data, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data.Faculties)
	assert.Empty(t, data.Students)
	assert.Empty(t, data.Warnings)
}

func TestTextStore_LoadSkipsAndReports(t *testing.T) {
	store, dir := newTextStore(t)
	writeFile(t, dir, "facultati.txt", "Engineering,ENG,Technology\nbroken,row\n\nMedicine,MED,Health,extra\n")
	writeFile(t, dir, "studenti.txt", strings.Join([]string{
		"Pop,Ana,ana@x.com,2000-01-01,false,Engineering",
		"Short,Row,x@y.z",
		"Bad,Date,b@d.com,2000-02-30,false,Engineering",
		"",
		"Ionescu,Dan,dan@x.com,1999-05-05,true,Nowhere",
	}, "\n")+"\n")

	data, err := store.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, data.Faculties, 2)
	assert.Equal(t, "Engineering", data.Faculties[0].Name)
	assert.Equal(t, "Medicine", data.Faculties[1].Name)
	assert.Equal(t, "Health", data.Faculties[1].Domain)

	require.Len(t, data.Students, 2)
	assert.Equal(t, "Pop", data.Students[0].Surname)
	assert.Equal(t, "Nowhere", data.Students[1].FacultyName)
	assert.True(t, data.Students[1].Graduated)

	require.Len(t, data.Warnings, 2)
	assert.Equal(t, 2, data.Warnings[0].Line)
	assert.Equal(t, 3, data.Warnings[1].Line)
	assert.Contains(t, data.Warnings[0].String(), "studenti.txt:2")
}

func TestTextStore_FacultyRoundTrip(t *testing.T) {
	store, dir := newTextStore(t)
	ctx := context.Background()
	in := []*models.Faculty{
		models.NewFaculty("Engineering", "ENG", "Technology"),
		models.NewFaculty("Letters, History", "LH", "Humanities"),
	}

	require.NoError(t, store.SaveFaculties(ctx, in))
	require.NoError(t, store.SaveFaculties(ctx, in))

	assert.Equal(t, []string{"Engineering,ENG,Technology", `"Letters, History",LH,Humanities`}, readLines(t, dir, "facultati.txt"))

	data, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, data.Faculties, 2)
	for i := range in {
		assert.Equal(t, in[i].Name, data.Faculties[i].Name)
		assert.Equal(t, in[i].Abbreviation, data.Faculties[i].Abbreviation)
		assert.Equal(t, in[i].Domain, data.Faculties[i].Domain)
	}
}

func TestTextStore_SaveStudentsRewrites(t *testing.T) {
	store, dir := newTextStore(t)
	ctx := context.Background()

	f := models.NewFaculty("Engineering", "ENG", "Technology")
	f.AddStudent(models.NewStudent("Pop", "Ana", "ana@x.com", models.NewDate(2000, time.January, 1)))
	require.NoError(t, store.SaveStudents(ctx, f.Roster()))

	f.AddStudent(models.NewStudent("Ionescu", "Dan", "dan@x.com", models.NewDate(1999, time.May, 5)))
	require.NoError(t, store.SaveStudents(ctx, f.Roster()))

	assert.Equal(t, []string{
		"Pop,Ana,ana@x.com,2000-01-01,false,Engineering",
		"Ionescu,Dan,dan@x.com,1999-05-05,false,Engineering",
	}, readLines(t, dir, "studenti.txt"))
}

func TestTextStore_AppendRosterDuplicates(t *testing.T) {
	store, dir := newTextStore(t)
	ctx := context.Background()

	f := models.NewFaculty("Engineering", "ENG", "Technology")
	f.AddStudent(models.NewStudent("Pop", "Ana", "ana@x.com", models.NewDate(2000, time.January, 1)))
	require.NoError(t, store.AppendRoster(ctx, f))

	f.AddStudent(models.NewStudent("Ionescu", "Dan", "dan@x.com", models.NewDate(1999, time.May, 5)))
	require.NoError(t, store.AppendRoster(ctx, f))

	assert.Equal(t, []string{
		"Pop,Ana,ana@x.com,2000-01-01,false,Engineering",
		"Pop,Ana,ana@x.com,2000-01-01,false,Engineering",
		"Ionescu,Dan,dan@x.com,1999-05-05,false,Engineering",
	}, readLines(t, dir, "studenti.txt"))
}

func TestTextStore_HonoursCancelledContext(t *testing.T) {
	store, _ := newTextStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.SaveFaculties(ctx, nil), context.Canceled)
}

func TestTextStore_LoadUnbalancedQuote(t *testing.T) {
	store, dir := newTextStore(t)
	writeFile(t, dir, "studenti.txt", `"Pop,Ana,ana@x.com,2000-01-01,false,Law`+"\n")

	data, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, data.Students, 1)
	assert.Equal(t, `"Pop`, data.Students[0].Surname)
	assert.Equal(t, "Law", data.Students[0].FacultyName)
	assert.Empty(t, data.Warnings)
}
