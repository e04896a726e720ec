// Package legend implements the legendary-weapon effect system: a registry
// mapping weapon identifiers to effect behaviors, and the per-weapon rolling
// proc state consulted by the orchestrator on every resolved hit.
package legend

import (
	"sort"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
)

// Burst maps damage type to an already-rolled burst amount, applied once on
// proc without immunity reduction.
type Burst map[catalog.DamageType]int

// Persistent carries the modifiers that outlive a proc for the remainder of
// its window (percentage style) or apply to the current attack only (on-crit
// style).
type Persistent struct {
	// CommonDamage is merged into the ordinary pre-immunity damage pool.
	CommonDamage map[catalog.DamageType]dice.DamageRoll
	// ImmunityFactors additively adjust the defender's immunity table for the
	// current attack resolution.
	ImmunityFactors map[catalog.DamageType]float64
	// ABBonus raises the attacker's AB while active.
	ABBonus int
	// ACReduction lowers the defender's AC while active.
	ACReduction int
}

// Behavior is one registered legendary effect. Apply proc-checks nothing; it
// only produces the burst and persistent payloads for a proc that has already
// fired.
type Behavior interface {
	// Apply rolls the effect's burst damage and returns it together with the
	// persistent modifiers.
	//
	// Precondition: desc must be non-nil; src must be non-nil.
	Apply(desc *catalog.LegendDescriptor, critMultiplier int, src dice.Source) (Burst, Persistent)
}

// rollBurst rolls every burst entry of desc once. Entries roll in sorted
// type order so the draws consumed from src are stable across runs.
func rollBurst(desc *catalog.LegendDescriptor, src dice.Source) Burst {
	if len(desc.Burst) == 0 {
		return nil
	}
	types := make([]catalog.DamageType, 0, len(desc.Burst))
	for t := range desc.Burst {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	out := make(Burst, len(desc.Burst))
	for _, t := range types {
		out[t] = desc.Burst[t].Roll(src)
	}
	return out
}

// GenericBurst deals the descriptor's burst damage and nothing else.
type GenericBurst struct{}

// Apply rolls the burst damage with no persistent modifiers.
func (GenericBurst) Apply(desc *catalog.LegendDescriptor, _ int, src dice.Source) (Burst, Persistent) {
	return rollBurst(desc, src), Persistent{}
}

// ABBonusEffect deals the burst damage and grants +2 AB while active.
type ABBonusEffect struct{}

// Apply rolls the burst and sets the +2 AB persistent bonus.
func (ABBonusEffect) Apply(desc *catalog.LegendDescriptor, _ int, src dice.Source) (Burst, Persistent) {
	return rollBurst(desc, src), Persistent{ABBonus: 2}
}

// ACReductionEffect deals the burst damage and lowers the defender's AC by 2
// while active.
type ACReductionEffect struct{}

// Apply rolls the burst and sets the -2 AC persistent reduction.
func (ACReductionEffect) Apply(desc *catalog.LegendDescriptor, _ int, src dice.Source) (Burst, Persistent) {
	return rollBurst(desc, src), Persistent{ACReduction: 2}
}

// ImmunityReductionEffect deals the burst damage and reduces the defender's
// physical immunity by 5% while active.
type ImmunityReductionEffect struct{}

// Apply rolls the burst and sets the physical immunity adjustment.
func (ImmunityReductionEffect) Apply(desc *catalog.LegendDescriptor, _ int, src dice.Source) (Burst, Persistent) {
	return rollBurst(desc, src), Persistent{
		ImmunityFactors: map[catalog.DamageType]float64{catalog.DamagePhysical: -0.05},
	}
}

// CommonDamageEffect has no burst; its descriptor damage is injected into the
// ordinary pre-immunity damage pool for the remainder of the window.
type CommonDamageEffect struct{}

// Apply returns the descriptor damage as persistent common damage.
func (CommonDamageEffect) Apply(desc *catalog.LegendDescriptor, _ int, _ dice.Source) (Burst, Persistent) {
	common := make(map[catalog.DamageType]dice.DamageRoll, len(desc.Burst))
	for t, roll := range desc.Burst {
		common[t] = roll
	}
	return nil, Persistent{CommonDamage: common}
}

// RandomOutcomeEffect draws a weighted branch: nothing happens, plain burst,
// or burst with an AB bonus.
type RandomOutcomeEffect struct {
	// NothingWeight, BurstWeight, and EmpowerWeight must sum to 1.
	NothingWeight float64
	BurstWeight   float64
	EmpowerWeight float64
}

// Apply draws one branch and returns its payload; the nothing branch returns
// empty payloads.
func (e RandomOutcomeEffect) Apply(desc *catalog.LegendDescriptor, _ int, src dice.Source) (Burst, Persistent) {
	draw := src.Float64()
	switch {
	case draw < e.NothingWeight:
		return nil, Persistent{}
	case draw < e.NothingWeight+e.BurstWeight:
		return rollBurst(desc, src), Persistent{}
	default:
		return rollBurst(desc, src), Persistent{ABBonus: 2}
	}
}
