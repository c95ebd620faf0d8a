package formula

import (
	"strings"

	"github.com/pepicrft/schlussel/internal/credstore"
)

// StorageKey computes the conventional storage key
// {formulaID}:{method}[:{identity}], validating the result before returning
// it so callers never hand an unvalidated key to a credential store.
func StorageKey(formulaID, method, identity string) (string, error) {
	parts := []string{formulaID, method}
	if identity != "" {
		parts = append(parts, identity)
	}
	key := strings.Join(parts, ":")
	if err := credstore.ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}
