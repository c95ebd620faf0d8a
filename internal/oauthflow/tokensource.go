package oauthflow

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/pepicrft/schlussel/internal/token"
)

// staticTokenSource adapts a single resolved Token to oauth2.TokenSource. It
// does not itself refresh; it exists so a host process already speaking
// golang.org/x/oauth2 can wrap it in oauth2.ReuseTokenSource alongside its
// own refresh logic, or simply consume one already-valid Token.
type staticTokenSource struct {
	tok *token.Token
}

// AsTokenSource adapts t to a standard oauth2.TokenSource. It does not
// replace the device/auth-code/refresh engine above; callers that need
// transparent refresh should go through internal/refresh instead and call
// this only to hand a freshly-resolved Token to oauth2-based client code.
func AsTokenSource(t *token.Token) oauth2.TokenSource {
	return &staticTokenSource{tok: t}
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	out := &oauth2.Token{
		AccessToken:  s.tok.AccessToken,
		TokenType:    s.tok.TokenType,
		RefreshToken: s.tok.RefreshToken,
	}
	if s.tok.ExpiresAt != nil {
		out.Expiry = time.Unix(*s.tok.ExpiresAt, 0)
	}
	if s.tok.IDToken != "" {
		out = out.WithExtra(map[string]any{"id_token": s.tok.IDToken})
	}
	return out, nil
}
