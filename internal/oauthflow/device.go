package oauthflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/pepicrft/schlussel/internal/logging"
	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/token"
)

const (
	defaultDeviceInterval = 5
	minDeviceInterval     = 5
	maxDeviceInterval     = 300
	maxDevicePollCount    = 500
)

// DeviceAuthorization is the parsed response of the device-authorization
// endpoint, and the Context values a formula's script expands against.
type DeviceAuthorization struct {
	DeviceCode              string
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
	ExpiresIn               int64
	Interval                int64
}

type deviceAuthResponse struct {
	DeviceCode              *string `json:"device_code"`
	UserCode                *string `json:"user_code"`
	VerificationURI         *string `json:"verification_uri"`
	VerificationURIComplete string  `json:"verification_uri_complete,omitempty"`
	ExpiresIn               *int64  `json:"expires_in"`
	Interval                *int64  `json:"interval,omitempty"`
}

// RequestDeviceAuthorization POSTs client_id (and scope, if non-empty) to
// deviceEndpoint and parses the authorization response. Any schema deviation
// (wrong type, missing required field, non-200 status) fails with
// KindServerError.
func RequestDeviceAuthorization(ctx context.Context, deviceEndpoint, clientID, scope string) (*DeviceAuthorization, error) {
	body := FormEncode(map[string]string{"client_id": clientID, "scope": scope})

	status, data, err := Post(ctx, deviceEndpoint, body, "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, oautherr.New(oautherr.KindServerError, "device authorization endpoint returned non-200 status")
	}

	var resp deviceAuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, oautherr.Wrap(oautherr.KindServerError, "device authorization response is not valid JSON", err)
	}
	if resp.DeviceCode == nil || resp.UserCode == nil || resp.VerificationURI == nil || resp.ExpiresIn == nil {
		return nil, oautherr.New(oautherr.KindServerError, "device authorization response is missing a required field")
	}
	if *resp.ExpiresIn < 0 {
		return nil, oautherr.New(oautherr.KindServerError, "device authorization response has a negative expires_in")
	}

	interval := int64(defaultDeviceInterval)
	if resp.Interval != nil {
		interval = *resp.Interval
		if interval < 1 || interval > maxDeviceInterval {
			interval = defaultDeviceInterval
		}
	}

	return &DeviceAuthorization{
		DeviceCode:              *resp.DeviceCode,
		UserCode:                *resp.UserCode,
		VerificationURI:         *resp.VerificationURI,
		VerificationURIComplete: resp.VerificationURIComplete,
		ExpiresIn:               *resp.ExpiresIn,
		Interval:                interval,
	}, nil
}

type devicePollBackOff struct {
	interval   time.Duration
	iterations int
	deadline   time.Time
}

func (b *devicePollBackOff) Reset() {}

func (b *devicePollBackOff) NextBackOff() time.Duration {
	b.iterations++
	if b.iterations > maxDevicePollCount {
		return backoff.Stop
	}
	if !time.Now().Before(b.deadline) {
		return backoff.Stop
	}
	return b.interval
}

func (b *devicePollBackOff) slowDown() {
	b.interval += 5 * time.Second
}

type deviceErrorResponse struct {
	Error string `json:"error"`
}

// PollDeviceToken polls tokenEndpoint at da's interval (minimum 5 seconds)
// until the provider returns a Token or a terminal error. The deadline is
// da.ExpiresIn wall-clock time, also capped at 500 poll iterations.
func PollDeviceToken(ctx context.Context, tokenEndpoint, clientID string, da *DeviceAuthorization) (*token.Token, error) {
	interval := da.Interval
	if interval < minDeviceInterval {
		interval = minDeviceInterval
	}

	bo := &devicePollBackOff{
		interval: time.Duration(interval) * time.Second,
		deadline: time.Now().Add(time.Duration(da.ExpiresIn) * time.Second),
	}

	operation := func() (*token.Token, error) {
		body := FormEncode(map[string]string{
			"grant_type":  "urn:ietf:params:oauth:grant-type:device_code",
			"device_code": da.DeviceCode,
			"client_id":   clientID,
		})
		status, data, err := Post(ctx, tokenEndpoint, body, "application/x-www-form-urlencoded")
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		var errResp deviceErrorResponse
		_ = json.Unmarshal(data, &errResp)

		switch errResp.Error {
		case "":
			if status != 200 {
				return nil, backoff.Permanent(oautherr.New(oautherr.KindServerError, "device token endpoint returned non-200 status with no error code"))
			}
			tok, err := token.FromJSON(data)
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			return tok, nil
		case "authorization_pending":
			return nil, oautherr.New(oautherr.KindAuthPending, "authorization pending")
		case "slow_down":
			bo.slowDown()
			return nil, oautherr.New(oautherr.KindSlowDown, "provider requested a slower poll interval")
		case "access_denied":
			return nil, backoff.Permanent(oautherr.New(oautherr.KindAuthorizationDeny, "user denied authorization"))
		case "expired_token":
			return nil, backoff.Permanent(oautherr.New(oautherr.KindDeviceCodeExpired, "device code expired"))
		default:
			return nil, backoff.Permanent(oautherr.New(oautherr.KindServerError, "device token endpoint returned error: "+errResp.Error))
		}
	}

	// bo enforces the deadline and iteration cap; 0 lifts Retry's own
	// default 15-minute elapsed-time limit so it cannot end polling early.
	result, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(0))
	if err != nil {
		if oautherr.Of(err, oautherr.KindAuthPending) || oautherr.Of(err, oautherr.KindSlowDown) {
			logging.Debugw("device polling stopped without reaching a terminal provider response", "iterations", bo.iterations)
			return nil, oautherr.New(oautherr.KindDeviceCodeExpired, "device code expired before authorization completed")
		}
		return nil, err
	}
	return result, nil
}
