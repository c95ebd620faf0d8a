package oauthflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestDeviceAuthorization_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "D",
			"user_code":        "ABCD-1234",
			"verification_uri": "https://example.com/device",
			"expires_in":       900,
			"interval":         5,
		})
	}))
	defer server.Close()

	da, err := RequestDeviceAuthorization(context.Background(), server.URL, "client-1", "")
	require.NoError(t, err)
	assert.Equal(t, "D", da.DeviceCode)
	assert.Equal(t, "ABCD-1234", da.UserCode)
	assert.Equal(t, int64(900), da.ExpiresIn)
	assert.Equal(t, int64(5), da.Interval)
}

func TestRequestDeviceAuthorization_MissingRequiredField(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"device_code": "D"})
	}))
	defer server.Close()

	_, err := RequestDeviceAuthorization(context.Background(), server.URL, "client-1", "")
	assert.Error(t, err)
}

func TestRequestDeviceAuthorization_IntervalOutOfRangeFallsBackToDefault(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"device_code": "D", "user_code": "U", "verification_uri": "https://example.com",
			"expires_in": 900, "interval": 1000,
		})
	}))
	defer server.Close()

	da, err := RequestDeviceAuthorization(context.Background(), server.URL, "client-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(defaultDeviceInterval), da.Interval)
}

func TestPollDeviceToken_PendingThenSuccess(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			json.NewEncoder(w).Encode(map[string]any{"error": "authorization_pending"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "gho_x", "token_type": "bearer", "scope": "repo"})
	}))
	defer server.Close()

	da := &DeviceAuthorization{DeviceCode: "D", ExpiresIn: 30, Interval: 1}
	started := time.Now()
	tok, err := PollDeviceToken(context.Background(), server.URL, "client-1", da)
	require.NoError(t, err)
	assert.Equal(t, "gho_x", tok.AccessToken)
	assert.Equal(t, 3, calls)
	assert.GreaterOrEqual(t, time.Since(started), 2*minDeviceInterval*time.Second-time.Second)
}

func TestPollDeviceToken_SlowDownIncreasesInterval(t *testing.T) {
	t.Parallel()

	var calls int
	var timestamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		timestamps = append(timestamps, time.Now())
		if calls < 3 {
			json.NewEncoder(w).Encode(map[string]any{"error": "slow_down"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "gho_x", "token_type": "bearer"})
	}))
	defer server.Close()

	da := &DeviceAuthorization{DeviceCode: "D", ExpiresIn: 60, Interval: 5}
	_, err := PollDeviceToken(context.Background(), server.URL, "client-1", da)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, timestamps, 3)
	assert.GreaterOrEqual(t, timestamps[2].Sub(timestamps[1]), 14*time.Second)
}

func TestPollDeviceToken_AccessDenied(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "access_denied"})
	}))
	defer server.Close()

	da := &DeviceAuthorization{DeviceCode: "D", ExpiresIn: 30, Interval: 1}
	_, err := PollDeviceToken(context.Background(), server.URL, "client-1", da)
	assert.Error(t, err)
}

func TestPollDeviceToken_ExpiredToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "expired_token"})
	}))
	defer server.Close()

	da := &DeviceAuthorization{DeviceCode: "D", ExpiresIn: 30, Interval: 1}
	_, err := PollDeviceToken(context.Background(), server.URL, "client-1", da)
	assert.Error(t, err)
}

func TestPollDeviceToken_DeadlineExceeded(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "authorization_pending"})
	}))
	defer server.Close()

	da := &DeviceAuthorization{DeviceCode: "D", ExpiresIn: 2, Interval: 1}
	_, err := PollDeviceToken(context.Background(), server.URL, "client-1", da)
	assert.Error(t, err)
}
