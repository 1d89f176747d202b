package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "div-zero.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
program: "print(1 / 0);"
expect:
  exitCode: 4
  error:
    code: E_DIV_ZERO
    offset: 8
`), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "div-zero", s.Name)
	assert.Equal(t, "run", s.Cmd, "run is the default command")
	assert.Nil(t, s.Expect.Output)
	require.NotNil(t, s.Expect.Error)
	require.NotNil(t, s.Expect.Error.Offset)
	assert.Equal(t, 8, *s.Expect.Error.Offset)
}

func TestLoadScenarioRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("progam: \"print(1);\"\n"), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typo.yaml")
}

func TestListScenariosSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("program: \"\"\n"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.yaml"), 0755))

	files, err := ListScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")}, files)
}

func TestSharedScenariosLoad(t *testing.T) {
	root, err := ModuleRoot()
	require.NoError(t, err)
	scenarios, err := LoadAll(filepath.Join(root, ScenariosDir))
	require.NoError(t, err)
	assert.NotEmpty(t, scenarios)
	for _, s := range scenarios {
		assert.Contains(t, []string{"run", "check", "vet", "fmt"}, s.Cmd, s.Name)
	}
}

func TestOutputText(t *testing.T) {
	assert.Equal(t, "", OutputText(nil))
	assert.Equal(t, "1\ntrue\n", OutputText([]string{"1", "true"}))
}
