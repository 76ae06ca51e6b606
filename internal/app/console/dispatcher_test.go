package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/users333/faculty-registry/internal/app/repositories"
	"github.com/users333/faculty-registry/internal/app/services"
	"github.com/users333/faculty-registry/internal/pkg/filestorage"
	"github.com/users333/faculty-registry/internal/pkg/logger"
	"github.com/users333/faculty-registry/internal/pkg/oplog"
)

type session struct {
	dir  string
	sink *oplog.MemorySink
	reg  *services.Registry
}

func newSession(t *testing.T) *session {
	t.Helper()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir, logger.Nop())
	require.NoError(t, err)

	sink := &oplog.MemorySink{}
	reg := services.NewRegistry(
		repositories.NewTextStore(storage, "facultati.txt", "studenti.txt", logger.Nop()),
		sink, logger.Nop(), services.Options{},
	)
	_, err = reg.Load(context.Background())
	require.NoError(t, err)
	return &session{dir: dir, sink: sink, reg: reg}
}

func (s *session) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	input := strings.Join(lines, "\n") + "\n"
	d := NewDispatcher(s.reg, strings.NewReader(input), &out, logger.Nop())
	require.NoError(t, d.Run(context.Background()))
	return out.String()
}

func TestDispatcher_ExampleSession(t *testing.T) {
	s := newSession(t)
	out := s.run(t,
		"1", "Engineering", "ENG", "Technology",
		"2", "Engineering", "Pop", "Ana", "ana@x.com", "2000-01-01",
		"5", "Engineering", "Pop",
		"3",
		"4", "Engineering",
		"0",
	)

	assert.Contains(t, out, MsgFacultiesHeader+"\nEngineering\n")
	assert.Contains(t, out, "Pop Ana - ana@x.com\n"+MsgUnassigned+"\n")

	b, err := os.ReadFile(filepath.Join(s.dir, "studenti.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Pop,Ana,ana@x.com,2000-01-01,true,Engineering\n", string(b))

	assert.Equal(t, []string{
		"Creata facultatea Engineering",
		"Atribuit studentul Pop la facultatea Engineering",
		"Studentul Pop a absolvit la facultatea Engineering",
	}, s.sink.Entries())
	assert.True(t, s.sink.Closed())
}

func TestDispatcher_InvalidChoices(t *testing.T) {
	s := newSession(t)
	out := s.run(t, "abc", "9", "-1", "0")

	assert.Equal(t, 3, strings.Count(out, MsgInvalidChoice))
	assert.Equal(t, 4, strings.Count(out, "0. Exit"))
}

func TestDispatcher_MissingFacultyPrintsOnce(t *testing.T) {
	s := newSession(t)
	out := s.run(t,
		"2", "Law", "Pop", "Ana", "ana@x.com", "2000-01-01",
		"5", "Law", "Pop",
		"0",
	)

	assert.Equal(t, 2, strings.Count(out, MsgFacultyMissing))
	assert.NotContains(t, out, MsgStudentMissing)
	assert.Empty(t, s.sink.Entries())
}

func TestDispatcher_MissingStudent(t *testing.T) {
	s := newSession(t)
	out := s.run(t,
		"1", "Engineering", "ENG", "Technology",
		"5", "Engineering", "Nobody",
		"0",
	)

	assert.Equal(t, 1, strings.Count(out, MsgStudentMissing))
	assert.NotContains(t, out, MsgFacultyMissing)
}

func TestDispatcher_ListStudentsOfMissingFaculty(t *testing.T) {
	s := newSession(t)
	out := s.run(t, "4", "Law", "0")

	assert.Contains(t, out, MsgFacultyMissing+"\n"+MsgUnassigned+"\n")
}

func TestDispatcher_BadDateReprompts(t *testing.T) {
	s := newSession(t)
	out := s.run(t,
		"1", "Engineering", "ENG", "Technology",
		"2", "Engineering", "Pop", "Ana", "ana@x.com", "2000-02-30", "01/01/2000", "2000-01-01",
		"0",
	)

	assert.Equal(t, 2, strings.Count(out, MsgInvalidDate))
	listing, err := s.reg.ListStudents("Engineering")
	require.NoError(t, err)
	require.Len(t, listing.Students, 1)
	assert.Equal(t, "2000-01-01", listing.Students[0].BirthDate.String())
}

func TestDispatcher_ValidationRejectsStudent(t *testing.T) {
	s := newSession(t)
	out := s.run(t,
		"1", "Engineering", "ENG", "Technology",
		"2", "Engineering", "", "Ana", "not-an-email", "2000-01-01",
		"0",
	)

	assert.Contains(t, out, "Surname is required")
	assert.Contains(t, out, "Email must be a valid email address")
	listing, err := s.reg.ListStudents("Engineering")
	require.NoError(t, err)
	assert.Empty(t, listing.Students)
}

func TestDispatcher_EOFExits(t *testing.T) {
	s := newSession(t)
	var out bytes.Buffer
	d := NewDispatcher(s.reg, strings.NewReader("1\nEngineering\n"), &out, logger.Nop())

	require.NoError(t, d.Run(context.Background()))
	assert.True(t, s.sink.Closed())
	assert.Empty(t, s.reg.ListFaculties())
}
