package oauthflow

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pepicrft/schlussel/internal/logging"
	"github.com/pepicrft/schlussel/internal/oautherr"
)

// maxResponseBytes bounds every OAuth HTTP response body this engine reads.
const maxResponseBytes = 1 << 20

var httpClient = &http.Client{}

// Post sends body to url with Content-Type contentType, Accept:
// application/json, and a correlation id logged around the call. It returns
// the status code and a response body capped at 1 MiB; an oversize response
// fails with KindResponseTooLarge rather than being silently truncated.
func Post(ctx context.Context, url, body, contentType string) (int, []byte, error) {
	headers := map[string]string{"Content-Type": contentType}
	return doRequest(ctx, http.MethodPost, url, strings.NewReader(body), headers)
}

// doRequest is the shared bounded-response primitive behind Post and the RFC
// 7591 registration-management calls (GET/PUT/DELETE).
func doRequest(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (int, []byte, error) {
	if err := EnsureHTTPS(url); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, oautherr.Wrap(oautherr.KindHTTP, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	correlationID := uuid.NewString()
	logging.Debugw("oauth http request", "correlation_id", correlationID, "method", method, "url", url)

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, oautherr.Wrap(oautherr.KindTimeout, "request timed out", err)
		}
		return 0, nil, oautherr.Wrap(oautherr.KindConnectionFailed, "request failed", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return 0, nil, oautherr.Wrap(oautherr.KindIO, "read response body", err)
	}
	if len(data) > maxResponseBytes {
		return 0, nil, oautherr.New(oautherr.KindResponseTooLarge, "response body exceeds 1 MiB")
	}

	logging.Debugw("oauth http response", "correlation_id", correlationID, "status", resp.StatusCode)
	return resp.StatusCode, data, nil
}
