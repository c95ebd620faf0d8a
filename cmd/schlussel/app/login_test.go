package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepicrft/schlussel/internal/formula"
)

func TestRunManualLogin_ReadsFromStdin(t *testing.T) {
	// Not t.Parallel(): swaps the process-wide os.Stdin.
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("pasted-secret\n")
	require.NoError(t, err)
	w.Close()

	originalStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = originalStdin }()

	tok, err := runManualLogin()
	require.NoError(t, err)
	assert.Equal(t, "pasted-secret", tok.AccessToken)
	assert.Equal(t, "opaque", tok.TokenType)
}

func TestRunAuthorizationCodeLogin_Success(t *testing.T) {
	t.Parallel()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "auth-code", r.FormValue("code"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "exchanged-access", "token_type": "Bearer", "expires_in": 3600,
		})
	}))
	defer tokenServer.Close()

	method := formula.MethodDef{Endpoints: &formula.Endpoints{Authorize: "https://example.com/authorize", Token: tokenServer.URL}}
	client := &formula.ResolvedClient{ID: "client-1"}

	plan, err := formula.ResolvePlan(context.Background(), method, client, "http://127.0.0.1:0/callback")
	require.NoError(t, err)

	addr := plan.Listener.Addr().String()
	go func() {
		callbackURL := fmt.Sprintf("http://%s/callback?code=auth-code&state=%s", addr, plan.Context.State)
		resp, err := http.Get(callbackURL)
		if err == nil {
			resp.Body.Close()
		}
	}()

	tok, err := runAuthorizationCodeLogin(context.Background(), plan, method, client)
	require.NoError(t, err)
	assert.Equal(t, "exchanged-access", tok.AccessToken)
}

func TestRunAuthorizationCodeLogin_StateMismatchFails(t *testing.T) {
	t.Parallel()

	method := formula.MethodDef{Endpoints: &formula.Endpoints{Authorize: "https://example.com/authorize", Token: "https://example.com/token"}}
	client := &formula.ResolvedClient{ID: "client-1"}

	plan, err := formula.ResolvePlan(context.Background(), method, client, "http://127.0.0.1:0/callback")
	require.NoError(t, err)

	addr := plan.Listener.Addr().String()
	go func() {
		callbackURL := fmt.Sprintf("http://%s/callback?code=auth-code&state=wrong-state", addr)
		resp, err := http.Get(callbackURL)
		if err == nil {
			resp.Body.Close()
		}
	}()

	_, err = runAuthorizationCodeLogin(context.Background(), plan, method, client)
	assert.Error(t, err)
}

func TestRunDeviceCodeLogin_Success(t *testing.T) {
	t.Parallel()

	deviceServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"device_code": "D", "user_code": "U", "verification_uri": "https://example.com/device",
			"expires_in": 900, "interval": 5,
		})
	}))
	defer deviceServer.Close()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "device-access", "token_type": "Bearer", "expires_in": 3600,
		})
	}))
	defer tokenServer.Close()

	method := formula.MethodDef{Endpoints: &formula.Endpoints{Device: deviceServer.URL, Token: tokenServer.URL}}
	client := &formula.ResolvedClient{ID: "client-1"}

	plan, err := formula.ResolvePlan(context.Background(), method, client, "")
	require.NoError(t, err)

	tok, err := runDeviceCodeLogin(context.Background(), plan, method, client)
	require.NoError(t, err)
	assert.Equal(t, "device-access", tok.AccessToken)
}

func TestPrintScript_DoesNotPanic(t *testing.T) {
	t.Parallel()

	steps := []formula.ScriptStep{
		{Type: formula.StepOpenURL, Value: "https://example.com"},
		{Type: formula.StepEnterCode, Value: "ABCD", Note: "visit the page above"},
	}
	printScript(steps)
}

func TestOpenInBrowser_IgnoresInvalidURLs(t *testing.T) {
	t.Parallel()

	openInBrowser("")
	openInBrowser("javascript:alert(1)")
	openInBrowser("https://example.com/`rm -rf`")
}

func TestRunLogin_ManualEndToEnd(t *testing.T) {
	// Not t.Parallel(): newTestState uses t.Setenv, which forbids it.
	f := &formula.Formula{
		ID:    "manual-provider",
		Label: "Manual Provider",
		Methods: map[string]formula.MethodDef{
			"manual": {Script: []formula.ScriptStep{{Type: formula.StepCopyKey, Value: "paste your token"}}},
		},
	}
	registry := formula.NewRegistry(f)
	s := newTestState(t, registry)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("manual-token\n")
	require.NoError(t, err)
	w.Close()

	originalStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = originalStdin }()

	require.NoError(t, runLogin(context.Background(), s, "manual-provider", "manual", "", "", ""))

	store, err := s.openStore()
	require.NoError(t, err)
	key, err := formula.StorageKey("manual-provider", "manual", "")
	require.NoError(t, err)

	stored, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "manual-token", stored.AccessToken)
}
