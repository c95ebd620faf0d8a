package credstore

import (
	"context"
	"sync"

	"github.com/pepicrft/schlussel/internal/oautherr"
	"github.com/pepicrft/schlussel/internal/token"
)

// Memory is a process-local Store backed by a map. Tokens never touch disk;
// restarting the process loses everything saved. Primarily used in tests and
// when KindMemory is selected explicitly.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*token.Token
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{items: map[string]*token.Token{}}
}

func (m *Memory) Save(_ context.Context, key string, t *token.Token) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = t.Clone()
	return nil
}

func (m *Memory) Load(_ context.Context, key string) (*token.Token, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.items[key]
	if !ok {
		return nil, oautherr.New(oautherr.KindTokenNotFound, "no credential stored for key")
	}
	return t.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok, nil
}
