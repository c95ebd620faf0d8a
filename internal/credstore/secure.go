package credstore

import (
	"context"
	"errors"

	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/token"
	"github.com/zalando/go-keyring"
)

// Secure is a Store backed by the OS-native credential manager (macOS
// Keychain, Secret Service on Linux, Windows Credential Manager). When the
// native store errors (commonly: no Secret Service daemon running under a
// headless Linux session), it falls back to a File store rather than
// failing the caller outright.
type Secure struct {
	service  string
	fallback *File
}

// NewSecure builds a Secure store for the given service name (typically the
// application name), with a File store as fallback.
func NewSecure(service string, fallback *File) *Secure {
	return &Secure{service: service, fallback: fallback}
}

func (s *Secure) Save(ctx context.Context, key string, t *token.Token) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := t.ToJSON()
	if err != nil {
		return err
	}
	if err := keyring.Set(s.service, key, string(data)); err != nil {
		if s.fallback != nil {
			return s.fallback.Save(ctx, key, t)
		}
		return oautherr.Wrap(oautherr.KindStorage, "save credential to OS keyring", err)
	}
	return nil
}

func (s *Secure) Load(ctx context.Context, key string) (*token.Token, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, oautherr.New(oautherr.KindTokenNotFound, "no credential stored for key")
		}
		if s.fallback != nil {
			return s.fallback.Load(ctx, key)
		}
		return nil, oautherr.Wrap(oautherr.KindStorage, "load credential from OS keyring", err)
	}
	return token.FromJSON([]byte(data))
}

func (s *Secure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		if s.fallback != nil {
			return s.fallback.Delete(ctx, key)
		}
		return oautherr.Wrap(oautherr.KindStorage, "delete credential from OS keyring", err)
	}
	if s.fallback != nil {
		_ = s.fallback.Delete(ctx, key)
	}
	return nil
}

func (s *Secure) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	_, err := keyring.Get(s.service, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return false, nil
	}
	if s.fallback != nil {
		return s.fallback.Exists(ctx, key)
	}
	return false, oautherr.Wrap(oautherr.KindStorage, "check credential existence in OS keyring", err)
}
