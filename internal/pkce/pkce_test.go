package pkce

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unreservedCharset = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestGenerate(t *testing.T) {
	t.Parallel()

	pair, err := Generate()
	require.NoError(t, err)

	assert.Len(t, pair.Verifier, VerifierCharLen)
	assert.Len(t, pair.Challenge, VerifierCharLen)
	assert.Regexp(t, unreservedCharset, pair.Verifier)
	assert.Regexp(t, unreservedCharset, pair.Challenge)

	challenge, err := FromVerifier(pair.Verifier)
	require.NoError(t, err)
	assert.Equal(t, pair.Challenge, challenge)
}

func TestGenerate_Uniqueness(t *testing.T) {
	t.Parallel()

	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a.Verifier, b.Verifier)
	assert.NotEqual(t, a.Challenge, b.Challenge)
}

func TestFromVerifier_InvalidLength(t *testing.T) {
	t.Parallel()

	_, err := FromVerifier("too-short")
	assert.Error(t, err)
}

func TestGenerateState(t *testing.T) {
	t.Parallel()

	s, err := GenerateState()
	require.NoError(t, err)
	assert.Len(t, s, 22)
	assert.Regexp(t, unreservedCharset, s)

	s2, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, s, s2)
}
