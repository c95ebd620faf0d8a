package app

import (
	"github.com/pepicrft/schlussel/internal/credstore"
	"github.com/pepicrft/schlussel/internal/formula"
	"github.com/pepicrft/schlussel/internal/oautherr"
)

func (s *state) openStore() (credstore.Store, error) {
	return credstore.New(s.cfg.StoreKind, s.cfg.AppName)
}

// resolveMethodAndClient applies the spec's selection rules (§4.D): an
// explicit method/client name wins if given and compatible, otherwise the
// unique compatible method is auto-selected.
//
// Client resolution is skipped outright when the formula declares no
// clients and the caller gave no override: a manual credential has no
// client_id to resolve in the first place, and MissingClientId below only
// fires once we know the selected method actually needs one.
func resolveMethodAndClient(f *formula.Formula, methodFlag, clientFlag, clientIDOverride string) (string, formula.MethodDef, *formula.ResolvedClient, error) {
	var resolvedClient *formula.ResolvedClient
	var namedClient *formula.Client

	if clientFlag != "" || clientIDOverride != "" || len(f.Clients) > 0 {
		var err error
		resolvedClient, namedClient, err = formula.ResolveClient(f, clientFlag, formula.ClientOverrides{ClientID: clientIDOverride})
		if err != nil {
			return "", formula.MethodDef{}, nil, err
		}
	} else {
		resolvedClient = &formula.ResolvedClient{}
	}

	methodName, err := formula.SelectMethod(f, methodFlag, namedClient)
	if err != nil {
		return "", formula.MethodDef{}, nil, err
	}
	methodDef := f.Methods[methodName]

	if resolvedClient.ID == "" && !methodDef.RequiresDynamicRegistration() {
		if kind, kindErr := methodDef.DeriveKind(); kindErr == nil && kind != formula.KindManual {
			return "", formula.MethodDef{}, nil, oautherr.New(oautherr.KindMissingClientID, "no client_id could be determined for this method")
		}
	}

	return methodName, methodDef, resolvedClient, nil
}
