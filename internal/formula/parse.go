package formula

import (
	"encoding/json"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

const supportedSchema = "v2"

// Parse decodes and validates a formula document per spec.md §6: schema
// must be "v2", and id/label/methods/apis are required. Unknown top-level
// fields are preserved-ignored by relying on encoding/json's default
// unmarshal behavior (it simply drops them).
func Parse(data []byte) (*Formula, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, oautherr.Wrap(oautherr.KindJSON, "parse formula document", err)
	}

	for _, field := range []string{"id", "label", "methods", "apis"} {
		if _, ok := raw[field]; !ok {
			return nil, oautherr.New(oautherr.KindMissingField, "formula document missing required field "+field)
		}
	}

	var f Formula
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, oautherr.Wrap(oautherr.KindInvalidField, "formula document has a malformed field", err)
	}

	if schema, ok := raw["schema"]; ok {
		var schemaValue string
		if err := json.Unmarshal(schema, &schemaValue); err != nil {
			return nil, oautherr.New(oautherr.KindInvalidField, "formula schema must be a string")
		}
		if schemaValue != supportedSchema {
			return nil, oautherr.New(oautherr.KindInvalidSchema, "unsupported formula schema "+schemaValue)
		}
	}
	if f.ID == "" {
		return nil, oautherr.New(oautherr.KindInvalidField, "formula id must not be empty")
	}
	if f.Label == "" {
		return nil, oautherr.New(oautherr.KindInvalidField, "formula label must not be empty")
	}
	if len(f.Methods) == 0 {
		return nil, oautherr.New(oautherr.KindInvalidField, "formula must declare at least one method")
	}
	if len(f.APIs) == 0 {
		return nil, oautherr.New(oautherr.KindInvalidField, "formula must declare at least one api")
	}

	for name, method := range f.Methods {
		if _, err := method.DeriveKind(); err != nil {
			return nil, oautherr.Wrap(oautherr.KindInvalidField, "method "+name+" has an invalid endpoint combination", err)
		}
		if method.RequiresDynamicRegistration() {
			if method.Endpoints == nil || method.Endpoints.Registration == "" || method.Endpoints.Authorize == "" || method.Endpoints.Token == "" {
				return nil, oautherr.New(oautherr.KindInvalidField, "method "+name+" declares dynamic_registration but is missing a registration, authorize, or token endpoint")
			}
		}
	}

	return &f, nil
}
