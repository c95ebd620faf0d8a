package credstore

import (
	"regexp"
	"strings"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

// maxKeyLength bounds a storage key's length.
const maxKeyLength = 255

// keyCharset matches [A-Za-z0-9_-.] plus ':', the separator the storage-key
// format (formula_id:method[:identity]) actually uses. The remaining checks
// below (no "..", no path separators, no control bytes, no leading dot)
// carry the real traversal-safety weight; ':' is excluded from none of them.
var keyCharset = regexp.MustCompile(`^[A-Za-z0-9_\-.:]+$`)

// ValidateKey enforces the storage-key contract from the data model: the
// charset [A-Za-z0-9_-.:], no leading dot, no "..", no path separators, no
// NUL/CR/LF, and a 255-byte length cap. It is the single gate every
// filesystem operation in this package passes through before touching disk.
func ValidateKey(key string) error {
	if key == "" {
		return oautherr.New(oautherr.KindInvalidParameter, "storage key must not be empty")
	}
	if len(key) > maxKeyLength {
		return oautherr.New(oautherr.KindInvalidParameter, "storage key exceeds maximum length")
	}
	if strings.HasPrefix(key, ".") {
		return oautherr.New(oautherr.KindInvalidParameter, "storage key must not start with '.'")
	}
	if strings.Contains(key, "..") {
		return oautherr.New(oautherr.KindInvalidParameter, "storage key must not contain '..'")
	}
	if strings.ContainsAny(key, "/\\\x00\r\n") {
		return oautherr.New(oautherr.KindInvalidParameter, "storage key contains an illegal character")
	}
	if !keyCharset.MatchString(key) {
		return oautherr.New(oautherr.KindInvalidParameter, "storage key contains characters outside [A-Za-z0-9_-.:]")
	}
	return nil
}

// LockKey derives the lock-file stem for a storage key by replacing every
// ':' with '_'.
func LockKey(storageKey string) string {
	return strings.ReplaceAll(storageKey, ":", "_")
}
