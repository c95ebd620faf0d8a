package oauthflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_RejectsInsecureEndpoint(t *testing.T) {
	t.Parallel()

	_, _, err := Post(context.Background(), "http://example.com/token", "", "application/x-www-form-urlencoded")
	assert.Error(t, err)
}

func TestPost_ReturnsStatusAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	status, body, err := Post(context.Background(), server.URL, "a=1", "application/x-www-form-urlencoded")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestPost_ExactlyAtCapSucceeds(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("a", maxResponseBytes)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	_, body, err := Post(context.Background(), server.URL, "", "application/x-www-form-urlencoded")
	require.NoError(t, err)
	assert.Len(t, body, maxResponseBytes)
}

func TestPost_OverCapFails(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("a", maxResponseBytes+1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	_, _, err := Post(context.Background(), server.URL, "", "application/x-www-form-urlencoded")
	assert.Error(t, err)
}
