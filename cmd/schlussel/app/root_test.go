package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepicrft/schlussel/internal/formula"
)

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCmd(formula.NewRegistry())
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["login"])
	assert.True(t, names["token"])
	assert.True(t, names["formulas"])
	assert.True(t, names["logout"])
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd(formula.NewRegistry())
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestResolveMethodAndClient_ExplicitMethod(t *testing.T) {
	t.Parallel()

	f := &formula.Formula{
		ID: "github",
		Methods: map[string]formula.MethodDef{
			"device": {Endpoints: &formula.Endpoints{Device: "https://d", Token: "https://t"}},
		},
		Clients: []formula.Client{{Name: "cli", ID: "client-1"}},
	}

	methodName, _, client, err := resolveMethodAndClient(f, "device", "cli", "")
	require.NoError(t, err)
	assert.Equal(t, "device", methodName)
	assert.Equal(t, "client-1", client.ID)
}

func TestResolveMethodAndClient_OverrideClientID(t *testing.T) {
	t.Parallel()

	f := &formula.Formula{
		ID: "bare",
		Methods: map[string]formula.MethodDef{
			"device": {Endpoints: &formula.Endpoints{Device: "https://d", Token: "https://t"}},
		},
	}

	_, _, client, err := resolveMethodAndClient(f, "device", "", "override-client")
	require.NoError(t, err)
	assert.Equal(t, "override-client", client.ID)
}
