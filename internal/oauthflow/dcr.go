package oauthflow

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

// ClientMetadata is the RFC 7591 client-metadata request body. Extra carries
// further OIDC registration knobs a formula wants passed straight through to
// the provider without this engine needing to know their shape.
type ClientMetadata struct {
	RedirectURIs            []string `json:"redirect_uris"`
	ClientName              string   `json:"client_name,omitempty"`
	ClientURI               string   `json:"client_uri,omitempty"`
	LogoURI                 string   `json:"logo_uri,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	ResponseTypes           []string `json:"response_types,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
	Extra                   map[string]any
}

func (m ClientMetadata) marshal() ([]byte, error) {
	type alias ClientMetadata
	base, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return base, nil
	}
	merged := map[string]any{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// RegistrationResponse is the RFC 7591 client-information response.
type RegistrationResponse struct {
	ClientID                string `json:"client_id"`
	ClientSecret            string `json:"client_secret,omitempty"`
	RegistrationAccessToken string `json:"registration_access_token,omitempty"`
	RegistrationClientURI   string `json:"registration_client_uri,omitempty"`
	ClientIDIssuedAt        *int64 `json:"client_id_issued_at,omitempty"`
	ClientSecretExpiresAt   *int64 `json:"client_secret_expires_at,omitempty"`
}

// Register performs RFC 7591 dynamic client registration against
// registrationEndpoint. redirect_uris is required; accepts 200 or 201.
func Register(ctx context.Context, registrationEndpoint string, metadata ClientMetadata) (*RegistrationResponse, error) {
	if len(metadata.RedirectURIs) == 0 {
		return nil, oautherr.New(oautherr.KindInvalidParameter, "dynamic client registration requires at least one redirect_uri")
	}
	body, err := metadata.marshal()
	if err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "marshal client metadata", err)
	}

	status, data, err := doRequest(ctx, http.MethodPost, registrationEndpoint, bytes.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, err
	}
	if status != 200 && status != 201 {
		return nil, oautherr.New(oautherr.KindServerError, "dynamic client registration endpoint returned an unexpected status")
	}

	var reg RegistrationResponse
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "parse registration response", err)
	}
	return &reg, nil
}

// ReadRegistration fetches the current client-information response from
// registrationClientURI, authenticated with registrationAccessToken.
func ReadRegistration(ctx context.Context, registrationClientURI, registrationAccessToken string) (*RegistrationResponse, error) {
	status, data, err := doRequest(ctx, http.MethodGet, registrationClientURI, nil, bearerHeader(registrationAccessToken))
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, oautherr.New(oautherr.KindServerError, "registration read returned a non-200 status")
	}
	var reg RegistrationResponse
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "parse registration response", err)
	}
	return &reg, nil
}

// UpdateRegistration replaces the client metadata at registrationClientURI.
func UpdateRegistration(ctx context.Context, registrationClientURI, registrationAccessToken string, metadata ClientMetadata) (*RegistrationResponse, error) {
	body, err := metadata.marshal()
	if err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "marshal client metadata", err)
	}
	headers := bearerHeader(registrationAccessToken)
	headers["Content-Type"] = "application/json"

	status, data, err := doRequest(ctx, http.MethodPut, registrationClientURI, bytes.NewReader(body), headers)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, oautherr.New(oautherr.KindServerError, "registration update returned a non-200 status")
	}
	var reg RegistrationResponse
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "parse registration response", err)
	}
	return &reg, nil
}

// DeleteRegistration deletes the client registration at registrationClientURI.
func DeleteRegistration(ctx context.Context, registrationClientURI, registrationAccessToken string) error {
	status, _, err := doRequest(ctx, http.MethodDelete, registrationClientURI, nil, bearerHeader(registrationAccessToken))
	if err != nil {
		return err
	}
	if status != 200 && status != 204 {
		return oautherr.New(oautherr.KindServerError, "registration delete returned an unexpected status")
	}
	return nil
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
