package legend

// Registry maps weapon identifiers to their registered effect behaviors. It
// is built once at startup and read-only afterwards.
type Registry struct {
	behaviors map[string]Behavior
}

// NewRegistry returns an empty Registry.
//
// Postcondition: returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{behaviors: make(map[string]Behavior)}
}

// Register binds a behavior to a weapon identifier.
//
// Precondition: b must be non-nil and weaponID non-empty.
// Postcondition: b is retrievable via BehaviorFor(weaponID); last call wins.
func (r *Registry) Register(weaponID string, b Behavior) {
	if weaponID == "" {
		panic("legend.Registry.Register: precondition violated: weaponID must be non-empty")
	}
	if b == nil {
		panic("legend.Registry.Register: precondition violated: behavior must be non-nil")
	}
	r.behaviors[weaponID] = b
}

// BehaviorFor returns the behavior registered for weaponID, if any. A
// legendary weapon without a registered behavior still rolls the generic proc
// for reporting but contributes no effect.
func (r *Registry) BehaviorFor(weaponID string) (Behavior, bool) {
	b, ok := r.behaviors[weaponID]
	return b, ok
}

// DefaultRegistry builds the registry for the shipped named-weapon catalog.
//
// Postcondition: every legendary weapon in content/named with a mechanical
// effect has a behavior bound here; descriptors without a binding fall back
// to reporting-only procs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("stormbrand", GenericBurst{})
	r.Register("eye_of_the_storm", ABBonusEffect{})
	r.Register("doomhammer", ACReductionEffect{})
	r.Register("riftcleaver", ImmunityReductionEffect{})
	r.Register("ember_fang", CommonDamageEffect{})
	r.Register("gamblers_edge", RandomOutcomeEffect{NothingWeight: 0.4, BurstWeight: 0.4, EmpowerWeight: 0.2})
	return r
}
