// Package credstore implements the uniform credential store described in
// spec.md §4.C: a Store interface over Memory, File, and Secure (OS keyring)
// backends, selected through a small factory.
package credstore

import (
	"context"

	"github.com/pepicrft/schlussel/internal/token"
)

// Store is the polymorphic credential-store interface. Every backend
// validates its key argument with ValidateKey before touching storage.
type Store interface {
	Save(ctx context.Context, key string, t *token.Token) error
	Load(ctx context.Context, key string) (*token.Token, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Kind names a Store backend, for the Factory.
type Kind string

const (
	// KindMemory is an in-process, non-persistent store.
	KindMemory Kind = "memory"
	// KindFile is a plaintext-JSON file store under an app-specific directory.
	KindFile Kind = "file"
	// KindSecure is the OS-native credential manager (Keychain, Secret
	// Service, Credential Manager), falling back to KindFile on failure.
	KindSecure Kind = "secure"
)
