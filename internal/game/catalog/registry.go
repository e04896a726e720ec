package catalog

import "fmt"

// Registry provides lookup of base and named weapon profiles by ID. It is
// built once at startup and never mutated afterwards; simulation code only
// reads from it.
type Registry struct {
	base  map[string]*BaseWeapon
	named map[string]*NamedWeapon
}

// NewRegistry returns an empty Registry.
//
// Postcondition: returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{
		base:  make(map[string]*BaseWeapon),
		named: make(map[string]*NamedWeapon),
	}
}

// RegisterBase adds a BaseWeapon to the registry.
//
// Precondition: w must be non-nil with a non-empty ID.
// Postcondition: w is retrievable via Base(w.ID); last registration wins.
func (r *Registry) RegisterBase(w *BaseWeapon) {
	if w == nil {
		panic("Registry.RegisterBase: precondition violated: weapon must be non-nil")
	}
	if w.ID == "" {
		panic("Registry.RegisterBase: precondition violated: weapon ID must be non-empty")
	}
	r.base[w.ID] = w
}

// RegisterNamed adds a NamedWeapon to the registry.
//
// Precondition: w must be non-nil with a non-empty ID.
// Postcondition: w is retrievable via Named(w.ID); last registration wins.
func (r *Registry) RegisterNamed(w *NamedWeapon) {
	if w == nil {
		panic("Registry.RegisterNamed: precondition violated: weapon must be non-nil")
	}
	if w.ID == "" {
		panic("Registry.RegisterNamed: precondition violated: weapon ID must be non-empty")
	}
	r.named[w.ID] = w
}

// Base returns the BaseWeapon for id, if registered.
func (r *Registry) Base(id string) (*BaseWeapon, bool) {
	w, ok := r.base[id]
	return w, ok
}

// Named returns the NamedWeapon for id, if registered.
func (r *Registry) Named(id string) (*NamedWeapon, bool) {
	w, ok := r.named[id]
	return w, ok
}

// NamedIDs returns the IDs of all registered named weapons, in no particular
// order. Intended for callers that iterate the whole catalog.
func (r *Registry) NamedIDs() []string {
	ids := make([]string, 0, len(r.named))
	for id := range r.named {
		ids = append(ids, id)
	}
	return ids
}

// Load builds a Registry from the base and named weapon content directories.
//
// Precondition: baseDir and namedDir must be readable directories.
// Postcondition: every named weapon's BaseID resolves to a registered base
// weapon, or a non-nil error is returned.
func Load(baseDir, namedDir string) (*Registry, error) {
	reg := NewRegistry()

	base, err := LoadBaseWeapons(baseDir)
	if err != nil {
		return nil, err
	}
	for _, w := range base {
		reg.RegisterBase(w)
	}

	named, err := LoadNamedWeapons(namedDir)
	if err != nil {
		return nil, err
	}
	for _, w := range named {
		if _, ok := reg.Base(w.BaseID); !ok {
			return nil, fmt.Errorf("catalog: named weapon %q references unknown base weapon %q", w.ID, w.BaseID)
		}
		reg.RegisterNamed(w)
	}

	return reg, nil
}
