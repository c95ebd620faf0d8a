package formula

import "github.com/pepicrft/schlussel/internal/oautherr"

// Registry is an explicit collection of known formulas, constructed once at
// program start and threaded through every caller — no global or lazily
// initialized process-wide cache.
type Registry struct {
	byID map[string]*Formula
}

// NewRegistry builds a Registry from formulas, indexed by their ID field.
func NewRegistry(formulas ...*Formula) *Registry {
	r := &Registry{byID: make(map[string]*Formula, len(formulas))}
	for _, f := range formulas {
		r.byID[f.ID] = f
	}
	return r
}

// Get looks up a formula by id.
func (r *Registry) Get(id string) (*Formula, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, oautherr.New(oautherr.KindInvalidParameter, "unknown formula: "+id)
	}
	return f, nil
}

// List returns every registered formula id, unordered.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// Add registers (or replaces) a formula in the registry.
func (r *Registry) Add(f *Formula) {
	r.byID[f.ID] = f
}
