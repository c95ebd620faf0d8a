package formula

import (
	stdctx "context"
	"net"
	"net/url"
	"strconv"

	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/oauthflow"
	"github.com/pepicrft/schlussel/internal/pkce"
)

// Plan is a fully resolved execution plan: a Kind, the Context a script
// expands against, and the expanded Script itself. For Authorization Code,
// Listener is the bound loopback listener the caller must close after
// awaiting the callback; for Device Code, DeviceAuth carries the raw
// authorization-endpoint response the caller polls against.
type Plan struct {
	Kind       Kind
	Context    Context
	Script     []ScriptStep
	Listener   net.Listener
	DeviceAuth *oauthflow.DeviceAuthorization
}

func hasZeroPort(redirectURI string) (string, bool) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", false
	}
	return u.Port(), u.Port() == "0"
}

func substitutePort(redirectURI string, port int) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return redirectURI
	}
	u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	return u.String()
}

// ResolvePlan resolves (formula, method, client, redirectURI) into an
// executable Plan. redirectURI with port 0 causes a loopback listener bind;
// the returned Plan's Listener must be closed by the caller once the
// Authorization Code callback has been awaited (or immediately, for the
// other two kinds, where it is always nil).
func ResolvePlan(ctx stdctx.Context, method MethodDef, client *ResolvedClient, redirectURI string) (*Plan, error) {
	kind, err := method.DeriveKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindAuthorizationCode:
		return resolveAuthorizationCodePlan(ctx, method, client, redirectURI)
	case KindDeviceCode:
		return resolveDeviceCodePlan(ctx, method, client)
	case KindManual:
		return &Plan{Kind: KindManual, Script: ExpandScript(method.Script, Context{})}, nil
	default:
		return nil, oautherr.New(oautherr.KindInvalidParameter, "method resolved to an unknown kind")
	}
}

func resolveAuthorizationCodePlan(ctx stdctx.Context, method MethodDef, client *ResolvedClient, redirectURI string) (*Plan, error) {
	if method.Endpoints == nil {
		return nil, oautherr.New(oautherr.KindConfiguration, "method declares no endpoints for an authorization code flow")
	}

	pair, err := pkce.Generate()
	if err != nil {
		return nil, err
	}
	state, err := pkce.GenerateState()
	if err != nil {
		return nil, err
	}

	finalRedirect := redirectURI
	var listener net.Listener
	if _, isZero := hasZeroPort(redirectURI); isZero {
		l, port, err := oauthflow.BindLoopback()
		if err != nil {
			return nil, err
		}
		listener = l
		finalRedirect = substitutePort(redirectURI, port)
	}

	if method.RequiresDynamicRegistration() {
		if err := registerDynamicClient(ctx, method, client, finalRedirect); err != nil {
			if listener != nil {
				listener.Close()
			}
			return nil, err
		}
	}

	authorizeURL, err := oauthflow.BuildAuthorizeURL(method.Endpoints.Authorize, client.ID, finalRedirect, state, pair.Challenge, method.Scope)
	if err != nil {
		if listener != nil {
			listener.Close()
		}
		return nil, err
	}

	planCtx := Context{
		AuthorizeURL: authorizeURL,
		PKCEVerifier: pair.Verifier,
		State:        state,
		RedirectURI:  finalRedirect,
	}
	return &Plan{
		Kind:     KindAuthorizationCode,
		Context:  planCtx,
		Script:   ExpandScript(method.Script, planCtx),
		Listener: listener,
	}, nil
}

// registerDynamicClient performs the RFC 7591 preflight for methods that
// declare dynamic_registration, overwriting client.ID (and client.Secret, if
// issued) in place so the subsequent authorize-URL build and token exchange
// see the provider-issued client.
func registerDynamicClient(ctx stdctx.Context, method MethodDef, client *ResolvedClient, redirectURI string) error {
	if method.Endpoints.Registration == "" {
		return oautherr.New(oautherr.KindConfiguration, "method requires dynamic_registration but declares no registration endpoint")
	}

	cfg := method.DynamicRegistration
	metadata := oauthflow.ClientMetadata{
		RedirectURIs:  []string{redirectURI},
		Scope:         method.Scope,
		GrantTypes:    []string{"authorization_code", "refresh_token"},
		ResponseTypes: []string{"code"},
	}
	if cfg != nil {
		metadata.ClientName = cfg.ClientName
		if len(cfg.GrantTypes) > 0 {
			metadata.GrantTypes = cfg.GrantTypes
		}
		if len(cfg.ResponseTypes) > 0 {
			metadata.ResponseTypes = cfg.ResponseTypes
		}
	}

	reg, err := oauthflow.Register(ctx, method.Endpoints.Registration, metadata)
	if err != nil {
		return err
	}

	client.ID = reg.ClientID
	if reg.ClientSecret != "" {
		client.Secret = reg.ClientSecret
	}
	return nil
}

func resolveDeviceCodePlan(ctx stdctx.Context, method MethodDef, client *ResolvedClient) (*Plan, error) {
	da, err := oauthflow.RequestDeviceAuthorization(ctx, method.Endpoints.Device, client.ID, method.Scope)
	if err != nil {
		return nil, err
	}

	planCtx := Context{
		DeviceCode:              da.DeviceCode,
		UserCode:                da.UserCode,
		VerificationURI:         da.VerificationURI,
		VerificationURIComplete: da.VerificationURIComplete,
		Interval:                da.Interval,
		ExpiresIn:               da.ExpiresIn,
	}
	return &Plan{
		Kind:       KindDeviceCode,
		Context:    planCtx,
		Script:     ExpandScript(method.Script, planCtx),
		DeviceAuth: da,
	}, nil
}
