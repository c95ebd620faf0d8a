package credstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/token"
)

// maxCredentialFileSize bounds how much a single credential file may contain;
// anything larger is refused rather than read fully into memory.
const maxCredentialFileSize = 1 << 20

// File is a Store backed by one plaintext-JSON file per key, under
// xdg.DataHome/<appName>/credentials. It is the fallback when no OS secure
// store is available, and the explicit choice on systems without one.
type File struct {
	dir string
}

// NewFile resolves the per-app credential directory via XDG_DATA_HOME (or
// its platform-appropriate equivalent) and ensures it exists with 0700
// permissions.
func NewFile(appName string) (*File, error) {
	dir := filepath.Join(xdg.DataHome, appName, "credentials")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, oautherr.Wrap(oautherr.KindIO, "create credential directory", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *File) Save(_ context.Context, key string, t *token.Token) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := t.ToJSON()
	if err != nil {
		return err
	}

	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return oautherr.Wrap(oautherr.KindIO, "create temp credential file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return oautherr.Wrap(oautherr.KindIO, "write temp credential file", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return oautherr.Wrap(oautherr.KindIO, "chmod temp credential file", err)
	}
	if err := tmp.Close(); err != nil {
		return oautherr.Wrap(oautherr.KindIO, "close temp credential file", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return oautherr.Wrap(oautherr.KindIO, "rename credential file into place", err)
	}
	return nil
}

func (f *File) Load(_ context.Context, key string) (*token.Token, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oautherr.New(oautherr.KindTokenNotFound, "no credential stored for key")
		}
		return nil, oautherr.Wrap(oautherr.KindIO, "open credential file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxCredentialFileSize+1))
	if err != nil {
		return nil, oautherr.Wrap(oautherr.KindIO, "read credential file", err)
	}
	if len(data) > maxCredentialFileSize {
		return nil, oautherr.New(oautherr.KindResponseTooLarge, "credential file exceeds maximum size")
	}
	return token.FromJSON(data)
}

func (f *File) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return oautherr.Wrap(oautherr.KindIO, "delete credential file", err)
	}
	return nil
}

func (f *File) Exists(_ context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	_, err := os.Stat(f.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, oautherr.Wrap(oautherr.KindIO, "stat credential file", err)
}
