// Package token implements the schlussel credential record: an in-memory
// Token, its expiry arithmetic, and its canonical JSON codec.
package token

import (
	"encoding/json"
	"time"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

// Token is the central credential record. Once issued, ExpiresAt never
// changes; a refresh always produces a new Token rather than mutating one.
type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	ExpiresIn    *int64
	ExpiresAt    *int64
	Scope        string
	IDToken      string

	// Extra carries provider response fields that don't map to the
	// canonical ones above, so a round trip through Save/Load doesn't
	// silently drop provider-specific claims.
	Extra map[string]any
}

// wireToken is the JSON-facing shape; optional fields are pointers so that
// an absent field and an explicit zero value are distinguishable.
type wireToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    *int64 `json:"expires_in,omitempty"`
	ExpiresAt    *int64 `json:"expires_at,omitempty"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

var wireFields = map[string]bool{
	"access_token": true, "token_type": true, "refresh_token": true,
	"expires_in": true, "expires_at": true, "scope": true, "id_token": true,
}

// NewFromProviderResponse builds a Token the way a successful OAuth
// token-endpoint response is turned into one: if expires_in is present and
// expires_at isn't, expires_at is computed as now+expires_in.
func NewFromProviderResponse(t Token, now time.Time) Token {
	if t.ExpiresIn != nil && t.ExpiresAt == nil {
		at := now.Unix() + *t.ExpiresIn
		t.ExpiresAt = &at
	}
	return t
}

// IsExpired reports whether the token's expires_at has passed. A token with
// no expires_at is treated as never expiring.
func (t *Token) IsExpired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return *t.ExpiresAt <= now.Unix()
}

// ExpiresWithin reports whether the token will expire within the next s
// seconds (inclusive).
func (t *Token) ExpiresWithin(s int64, now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return now.Unix()+s >= *t.ExpiresAt
}

// RemainingFraction returns the fraction of the token's lifetime remaining,
// clamped to [0,1]. The second return value is false when expires_at or
// expires_in is absent, in which case the fraction is undefined.
func (t *Token) RemainingFraction(now time.Time) (float64, bool) {
	if t.ExpiresAt == nil || t.ExpiresIn == nil || *t.ExpiresIn == 0 {
		return 0, false
	}
	remaining := float64(*t.ExpiresAt-now.Unix()) / float64(*t.ExpiresIn)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 1 {
		remaining = 1
	}
	return remaining, true
}

// Clone returns an independent copy of t; callers always receive their own
// copy rather than a reference into store-internal state.
func (t *Token) Clone() *Token {
	clone := *t
	if t.ExpiresIn != nil {
		v := *t.ExpiresIn
		clone.ExpiresIn = &v
	}
	if t.ExpiresAt != nil {
		v := *t.ExpiresAt
		clone.ExpiresAt = &v
	}
	if t.Extra != nil {
		clone.Extra = make(map[string]any, len(t.Extra))
		for k, v := range t.Extra {
			clone.Extra[k] = v
		}
	}
	return &clone
}

// ToJSON emits a canonical JSON object containing only the fields present on
// t, with every string value properly escaped (encoding/json already does
// this, including control bytes as \u00XX).
func (t *Token) ToJSON() ([]byte, error) {
	w := wireToken{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		ExpiresAt:    t.ExpiresAt,
		Scope:        t.Scope,
		IDToken:      t.IDToken,
	}
	base, err := json.Marshal(w)
	if err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "marshal token", err)
	}
	if len(t.Extra) == 0 {
		return base, nil
	}

	merged := map[string]any{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "marshal token", err)
	}
	for k, v := range t.Extra {
		if wireFields[k] {
			continue
		}
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "marshal token", err)
	}
	return out, nil
}

// FromJSON parses a JSON object into a Token. access_token and token_type
// are required and must be strings. Negative expires_in/expires_at values
// are rejected rather than silently clamped to zero.
func FromJSON(data []byte) (*Token, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "parse token", err)
	}

	var w wireToken
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "parse token", err)
	}
	if w.AccessToken == "" {
		if _, ok := raw["access_token"]; !ok {
			return nil, oautherr.New(oautherr.KindInvalidParameter, "token missing access_token")
		}
	}
	if w.TokenType == "" {
		if _, ok := raw["token_type"]; !ok {
			return nil, oautherr.New(oautherr.KindInvalidParameter, "token missing token_type")
		}
	}
	if w.ExpiresIn != nil && *w.ExpiresIn < 0 {
		return nil, oautherr.New(oautherr.KindInvalidParameter, "expires_in must not be negative")
	}
	if w.ExpiresAt != nil && *w.ExpiresAt < 0 {
		return nil, oautherr.New(oautherr.KindInvalidParameter, "expires_at must not be negative")
	}

	t := &Token{
		AccessToken:  w.AccessToken,
		TokenType:    w.TokenType,
		RefreshToken: w.RefreshToken,
		ExpiresIn:    w.ExpiresIn,
		ExpiresAt:    w.ExpiresAt,
		Scope:        w.Scope,
		IDToken:      w.IDToken,
	}
	for k, v := range raw {
		if wireFields[k] {
			continue
		}
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			continue
		}
		if t.Extra == nil {
			t.Extra = map[string]any{}
		}
		t.Extra[k] = decoded
	}
	return t, nil
}

// Merge preserves the old refresh_token when a refresh response omitted one,
// per §4.F: the caller is responsible for not losing a usable refresh token.
func Merge(refreshed *Token, previous *Token) *Token {
	merged := refreshed.Clone()
	if merged.RefreshToken == "" && previous != nil {
		merged.RefreshToken = previous.RefreshToken
	}
	return merged
}
