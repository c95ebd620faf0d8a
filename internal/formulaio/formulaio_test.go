package formulaio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepicrft/schlussel/internal/formula"
)

const sampleFormulaJSON = `{
	"schema": "v2",
	"id": "github",
	"label": "GitHub",
	"methods": {"device": {"endpoints": {"device": "https://github.com/device", "token": "https://github.com/token"}}},
	"apis": {"rest": {"base_url": "https://api.github.com"}}
}`

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "github.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFormulaJSON), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "github", f.ID)
}

func TestLoadFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestResolve_PrefersExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "github.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFormulaJSON), 0o600))

	registry := formula.NewRegistry()
	f, err := Resolve(registry, path)
	require.NoError(t, err)
	assert.Equal(t, "github", f.ID)
}

func TestResolve_FallsBackToRegistry(t *testing.T) {
	t.Parallel()

	registry := formula.NewRegistry(&formula.Formula{ID: "github", Label: "GitHub"})
	f, err := Resolve(registry, "github")
	require.NoError(t, err)
	assert.Equal(t, "github", f.ID)
}

func TestResolve_UnknownRefFails(t *testing.T) {
	t.Parallel()

	registry := formula.NewRegistry()
	_, err := Resolve(registry, "does-not-exist")
	assert.Error(t, err)
}
