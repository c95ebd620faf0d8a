package formula

import "github.com/pepicrft/schlussel/internal/oautherr"

// Kind is a method's derived flavor of authentication.
type Kind string

const (
	KindAuthorizationCode Kind = "authorization_code"
	KindDeviceCode        Kind = "device_code"
	KindManual            Kind = "manual"
)

// DeriveKind derives a method's Kind from which endpoints it declares, per
// the formula schema: dynamic_registration forces Authorization Code with an
// RFC 7591 preflight; authorize+token without device is Authorization Code;
// device+token is Device Code; no endpoints at all is a manual credential.
func (m MethodDef) DeriveKind() (Kind, error) {
	if m.DynamicRegistration != nil {
		return KindAuthorizationCode, nil
	}

	if m.Endpoints == nil {
		return KindManual, nil
	}

	hasAuthorize := m.Endpoints.Authorize != ""
	hasToken := m.Endpoints.Token != ""
	hasDevice := m.Endpoints.Device != ""

	switch {
	case hasAuthorize && hasToken && !hasDevice:
		return KindAuthorizationCode, nil
	case hasDevice && hasToken:
		return KindDeviceCode, nil
	case !hasAuthorize && !hasToken && !hasDevice:
		return KindManual, nil
	default:
		return "", oautherr.New(oautherr.KindInvalidParameter, "method declares an endpoint combination that matches no known flow")
	}
}

// RequiresDynamicRegistration reports whether m needs an RFC 7591 preflight
// before its Authorization Code exchange.
func (m MethodDef) RequiresDynamicRegistration() bool {
	return m.DynamicRegistration != nil
}
