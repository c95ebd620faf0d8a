package credstore

import (
	"context"
	"testing"

	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SaveLoadDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	exists, err := m.Exists(ctx, "github:device")
	require.NoError(t, err)
	assert.False(t, exists)

	tok := &token.Token{AccessToken: "a", TokenType: "bearer"}
	require.NoError(t, m.Save(ctx, "github:device", tok))

	exists, err = m.Exists(ctx, "github:device")
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := m.Load(ctx, "github:device")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.AccessToken)

	require.NoError(t, m.Delete(ctx, "github:device"))
	_, err = m.Load(ctx, "github:device")
	assert.Error(t, err)
}

func TestMemory_LoadMissing(t *testing.T) {
	t.Parallel()

	_, err := NewMemory().Load(context.Background(), "absent:key")
	assert.True(t, oautherr.Of(err, oautherr.KindTokenNotFound))
}

func TestMemory_SaveClonesInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	tok := &token.Token{AccessToken: "a"}
	require.NoError(t, m.Save(ctx, "k:v", tok))

	tok.AccessToken = "mutated"
	loaded, err := m.Load(ctx, "k:v")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.AccessToken)
}

func TestMemory_RejectsInvalidKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	assert.Error(t, m.Save(ctx, "../escape", &token.Token{}))
	_, err := m.Load(ctx, "../escape")
	assert.Error(t, err)
	assert.Error(t, m.Delete(ctx, "../escape"))
	_, err = m.Exists(ctx, "../escape")
	assert.Error(t, err)
}
