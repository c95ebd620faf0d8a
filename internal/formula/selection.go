package formula

import (
	"sort"
	"strings"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

// SelectMethod resolves which method to run. If requestedMethod is
// non-empty it must exist in the formula and, if a client was already
// selected, the client must allow it. If empty, the compatible-method set
// (formula methods the client allows, or all formula methods if no client
// was selected) must contain exactly one candidate.
func SelectMethod(f *Formula, requestedMethod string, client *Client) (string, error) {
	if requestedMethod != "" {
		if _, ok := f.Methods[requestedMethod]; !ok {
			return "", oautherr.New(oautherr.KindInvalidParameter, "formula does not define method "+requestedMethod)
		}
		if client != nil && !client.allowsMethod(requestedMethod) {
			return "", oautherr.New(oautherr.KindInvalidParameter, "client does not allow method "+requestedMethod)
		}
		return requestedMethod, nil
	}

	var compatible []string
	for name := range f.Methods {
		if client == nil || client.allowsMethod(name) {
			compatible = append(compatible, name)
		}
	}
	sort.Strings(compatible)

	switch len(compatible) {
	case 1:
		return compatible[0], nil
	case 0:
		return "", oautherr.New(oautherr.KindInvalidParameter, "no method is compatible with the selected client")
	default:
		return "", oautherr.New(oautherr.KindInvalidParameter, "method must be specified; compatible methods: "+strings.Join(compatible, ", "))
	}
}

// ClientOverrides are caller-supplied overrides that always win over a named
// client's defaults.
type ClientOverrides struct {
	ClientID    string
	Secret      string
	RedirectURI string
}

// ResolvedClient is the effective client identity a plan is built against.
type ResolvedClient struct {
	ID          string
	Secret      string
	RedirectURI string
}

// ResolveClient picks the effective client: a formula client named by
// clientName (its id/secret/redirect_uri become defaults), or the first
// formula client if none was named and no client_id override was given.
// Overrides always take precedence. Fails with MissingClientId if no
// client_id can be determined at all.
func ResolveClient(f *Formula, clientName string, overrides ClientOverrides) (*ResolvedClient, *Client, error) {
	var named *Client
	if clientName != "" {
		for i := range f.Clients {
			if f.Clients[i].Name == clientName {
				named = &f.Clients[i]
				break
			}
		}
		if named == nil {
			return nil, nil, oautherr.New(oautherr.KindInvalidParameter, "formula does not define client "+clientName)
		}
	} else if overrides.ClientID == "" && len(f.Clients) > 0 {
		named = &f.Clients[0]
	}

	resolved := &ResolvedClient{}
	if named != nil {
		resolved.ID = named.ID
		resolved.Secret = named.Secret
		resolved.RedirectURI = named.RedirectURI
	}
	if overrides.ClientID != "" {
		resolved.ID = overrides.ClientID
	}
	if overrides.Secret != "" {
		resolved.Secret = overrides.Secret
	}
	if overrides.RedirectURI != "" {
		resolved.RedirectURI = overrides.RedirectURI
	}

	if resolved.ID == "" {
		return nil, nil, oautherr.New(oautherr.KindMissingClientID, "no client_id could be determined for this method")
	}
	return resolved, named, nil
}
