package oauthflow

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/token"
)

// callbackTimeout bounds how long AwaitCallback waits for the single
// inbound request before failing with KindTimeout.
const callbackTimeout = 120 * time.Second

const successHTML = `<!doctype html><html><body><h1>Authentication complete</h1><p>You may close this tab and return to your terminal.</p></body></html>`
const errorHTML = `<!doctype html><html><body><h1>Authentication failed</h1><p>You may close this tab and return to your terminal.</p></body></html>`

// BindLoopback binds a TCP listener on 127.0.0.1 at an OS-assigned port and
// returns both the listener and the chosen port.
func BindLoopback() (net.Listener, int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, 0, oautherr.Wrap(oautherr.KindIO, "bind loopback listener", err)
	}
	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		listener.Close()
		return nil, 0, oautherr.New(oautherr.KindIO, "loopback listener returned a non-TCP address")
	}
	return listener, addr.Port, nil
}

// BuildAuthorizeURL constructs the Authorization Code authorization URL per
// spec: response_type=code, client_id, redirect_uri, state,
// code_challenge, code_challenge_method=S256, and scope if non-empty.
func BuildAuthorizeURL(endpoint, clientID, redirectURI, state, codeChallenge, scope string) (string, error) {
	if err := EnsureHTTPS(endpoint); err != nil {
		return "", err
	}
	values := map[string]string{
		"response_type":         "code",
		"client_id":             clientID,
		"redirect_uri":          redirectURI,
		"state":                 state,
		"code_challenge":        codeChallenge,
		"code_challenge_method": "S256",
		"scope":                 scope,
	}
	return endpoint + "?" + FormEncode(values), nil
}

// CallbackResult is what AwaitCallback recovers from the single inbound
// request's query string.
type CallbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// AwaitCallback serves exactly one inbound HTTP request on listener, parses
// its query string (code, state, error, error_description), responds with a
// minimal success or error page, and shuts the listener down. It fails with
// KindTimeout if no request arrives within the callback timeout.
func AwaitCallback(ctx context.Context, listener net.Listener) (*CallbackResult, error) {
	resultCh := make(chan *CallbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		result := &CallbackResult{
			Code:             query.Get("code"),
			State:            query.Get("state"),
			Error:            query.Get("error"),
			ErrorDescription: query.Get("error_description"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Connection", "close")
		if result.Error != "" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, errorHTML)
		} else {
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, successHTML)
		}
		resultCh <- result
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(listener) }()
	defer server.Close()

	select {
	case result := <-resultCh:
		return result, nil
	case <-time.After(callbackTimeout):
		return nil, oautherr.New(oautherr.KindTimeout, "timed out waiting for the OAuth callback")
	case <-ctx.Done():
		return nil, oautherr.Wrap(oautherr.KindTimeout, "context cancelled while waiting for callback", ctx.Err())
	}
}

// CheckCallbackState enforces the CSRF check: a present inbound state must
// match sentState, and a present error denies authorization outright. A
// missing inbound state is permitted (some providers omit it on error).
func CheckCallbackState(result *CallbackResult, sentState string) error {
	if result.Error != "" {
		msg := result.Error
		if result.ErrorDescription != "" {
			msg += ": " + result.ErrorDescription
		}
		return oautherr.New(oautherr.KindAuthorizationDeny, msg)
	}
	if result.State != "" && result.State != sentState {
		return oautherr.New(oautherr.KindInvalidState, "callback state does not match the state sent with the authorization request")
	}
	return nil
}

// ExchangeAuthorizationCode exchanges an authorization code for a Token.
func ExchangeAuthorizationCode(ctx context.Context, tokenEndpoint, clientID, clientSecret, code, redirectURI, codeVerifier string) (*token.Token, error) {
	body := FormEncode(map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  redirectURI,
		"client_id":     clientID,
		"code_verifier": codeVerifier,
		"client_secret": clientSecret,
	})
	status, data, err := Post(ctx, tokenEndpoint, body, "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, oautherr.New(oautherr.KindServerError, "token endpoint returned non-200 status")
	}
	return token.FromJSON(data)
}
