// Package pkce implements RFC 7636 Proof Key for Code Exchange, S256 only.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

// verifierLength is the number of random bytes used to build the code
// verifier. base64.RawURLEncoding of 32 bytes yields exactly 43 characters.
const verifierLength = 32

// VerifierCharLen is the fixed length of a generated verifier.
const VerifierCharLen = 43

// Method is the only code-challenge method schlussel supports.
const Method = "S256"

// Pair holds a generated PKCE verifier/challenge pair.
type Pair struct {
	Verifier  string
	Challenge string
}

// Generate creates a new random verifier and its S256 challenge.
func Generate() (*Pair, error) {
	buf := make([]byte, verifierLength)
	if _, err := rand.Read(buf); err != nil {
		return nil, oautherr.Wrap(oautherr.KindIO, "generate pkce verifier", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(buf)
	return &Pair{Verifier: verifier, Challenge: challengeFor(verifier)}, nil
}

// FromVerifier recomputes the S256 challenge for an existing verifier. It
// fails with KindInvalidParameter if verifier isn't the expected length.
func FromVerifier(verifier string) (string, error) {
	if len(verifier) != VerifierCharLen {
		return "", oautherr.New(oautherr.KindInvalidParameter, "pkce verifier must be 43 characters")
	}
	return challengeFor(verifier), nil
}

func challengeFor(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState returns a random base64url-no-pad CSRF state token (22
// characters, from 16 random bytes).
func GenerateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", oautherr.Wrap(oautherr.KindIO, "generate state", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
