package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandScript_SubstitutesKnownPlaceholders(t *testing.T) {
	t.Parallel()

	steps := []ScriptStep{
		{Type: StepOpenURL, Value: "{authorize_url}"},
		{Type: StepEnterCode, Value: "{user_code}", Note: "enter at {verification_uri}"},
	}
	ctx := Context{AuthorizeURL: "https://a", UserCode: "U-1", VerificationURI: "https://v"}

	out := ExpandScript(steps, ctx)
	assert.Equal(t, "https://a", out[0].Value)
	assert.Equal(t, "U-1", out[1].Value)
	assert.Equal(t, "enter at https://v", out[1].Note)
}

func TestExpandScript_PreservesUnknownPlaceholders(t *testing.T) {
	t.Parallel()

	steps := []ScriptStep{{Type: StepOpenURL, Value: "{nonexistent}"}}
	out := ExpandScript(steps, Context{})
	assert.Equal(t, "{nonexistent}", out[0].Value)
}

func TestExpandScript_EmptyValueAndNoteUnaffected(t *testing.T) {
	t.Parallel()

	steps := []ScriptStep{{Type: StepWaitForCallback}}
	out := ExpandScript(steps, Context{})
	assert.Equal(t, "", out[0].Value)
	assert.Equal(t, "", out[0].Note)
}
