package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/users333/faculty-registry/internal/app/console"
	"github.com/users333/faculty-registry/internal/pkg/apperrors"
)

func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()

	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.yaml"), "--data-dir", dir}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"shell", "faculty", "student", "seed", "version"} {
		assert.Truef(t, names[expected], "expected subcommand %q to be registered", expected)
	}
	for _, flag := range []string{"config", "data-dir", "backend"} {
		assert.NotNilf(t, cmd.PersistentFlags().Lookup(flag), "expected --%s flag", flag)
	}
}

func TestFacultyAndStudentCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "faculty", "create", "Engineering", "ENG", "Technology")
	require.NoError(t, err)
	assert.Contains(t, out, "Created faculty Engineering")

	_, err = run(t, dir, "", "student", "assign", "Engineering", "Pop", "Ana", "ana@x.com", "2000-01-01")
	require.NoError(t, err)

	_, err = run(t, dir, "", "student", "graduate", "Engineering", "Pop")
	require.NoError(t, err)

	out, err = run(t, dir, "", "student", "list", "Engineering")
	require.NoError(t, err)
	assert.Equal(t, "Pop Ana - ana@x.com (graduated)\nUnassigned students:\n", out)

	out, err = run(t, dir, "", "faculty", "list")
	require.NoError(t, err)
	assert.Equal(t, "Engineering (ENG, Technology) - 1 students\n", out)

	b, err := os.ReadFile(filepath.Join(dir, "log_operatii.txt"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(b), "\n"))
}

func TestStudentAssign_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "student", "assign", "Law", "Pop", "Ana", "ana@x.com", "2000-01-01")
	assert.ErrorIs(t, err, apperrors.ErrFacultyNotFound)

	_, err = run(t, dir, "", "student", "assign", "Law", "Pop", "Ana", "ana@x.com", "2000-13-01")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentGraduate_RequiresSurnameOrID(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "student", "graduate", "Engineering")
	assert.Error(t, err)

	_, err = run(t, dir, "", "student", "graduate", "Engineering", "Pop", "--id", "8c7a1b0e-3f4b-4c1e-9a43-5b1f0d6e2a11")
	assert.Error(t, err)
}

func TestShell_DefaultCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "1\nEngineering\nENG\nTechnology\n3\n0\n")
	require.NoError(t, err)
	assert.Contains(t, out, console.MsgFacultiesHeader+"\nEngineering\n")

	b, err := os.ReadFile(filepath.Join(dir, "facultati.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Engineering,ENG,Technology\n", string(b))
}

func TestSeed_UsesConfiguredFaculties(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`seed:
  faculties:
    - name: Engineering
      abbreviation: ENG
      domain: Technology
    - name: Medicine
      abbreviation: MED
      domain: Health
`), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "--data-dir", dir, "seed"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Created 2 of 2 default faculties")

	listed, err := run(t, dir, "", "faculty", "list")
	require.NoError(t, err)
	assert.Contains(t, listed, "Medicine (MED, Health)")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "registry dev"))
}
