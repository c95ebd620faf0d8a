package credstore

import "github.com/pepicrft/schlussel/internal/oautherr"

// New builds a Store for the requested Kind. appName scopes both the OS
// keyring service name and the on-disk credential directory.
func New(kind Kind, appName string) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindFile:
		return NewFile(appName)
	case KindSecure:
		fallback, err := NewFile(appName)
		if err != nil {
			return nil, err
		}
		return NewSecure(appName, fallback), nil
	default:
		return nil, oautherr.New(oautherr.KindConfiguration, "unknown credential store kind: "+string(kind))
	}
}
