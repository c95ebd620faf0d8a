package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetAndList(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&Formula{ID: "github"}, &Formula{ID: "linear"})

	f, err := r.Get("github")
	require.NoError(t, err)
	assert.Equal(t, "github", f.ID)

	assert.ElementsMatch(t, []string{"github", "linear"}, r.List())
}

func TestRegistry_GetUnknown(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Get("missing")
	assert.Error(t, err)
}

func TestRegistry_AddReplaces(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&Formula{ID: "github", Label: "old"})
	r.Add(&Formula{ID: "github", Label: "new"})

	f, err := r.Get("github")
	require.NoError(t, err)
	assert.Equal(t, "new", f.Label)
}
