package oauthflow

import (
	"context"

	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/token"
)

// RefreshToken exchanges refreshToken for a new Token via the refresh_token
// grant. If the response omits refresh_token, the caller (internal/refresh)
// is responsible for preserving the old one via token.Merge.
func RefreshToken(ctx context.Context, tokenEndpoint, clientID, clientSecret, refreshToken string) (*token.Token, error) {
	body := FormEncode(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
		"client_id":     clientID,
		"client_secret": clientSecret,
	})
	status, data, err := Post(ctx, tokenEndpoint, body, "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, oautherr.New(oautherr.KindServerError, "refresh endpoint returned non-200 status")
	}
	return token.FromJSON(data)
}
