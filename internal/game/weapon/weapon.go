// Package weapon resolves a named weapon plus the active configuration into
// the fully aggregated form consumed by the attack resolver and the
// simulation orchestrator.
package weapon

import (
	"errors"
	"fmt"
	"sort"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/config"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
)

// ErrUnknownWeapon is returned when a weapon identifier or its base form is
// absent from the static catalog.
var ErrUnknownWeapon = errors.New("unknown weapon")

// Weapon is a resolved weapon: static catalog data merged with the active
// configuration. Created once per simulated weapon per run; immutable
// thereafter.
type Weapon struct {
	ID   string
	Name string

	Base  *catalog.BaseWeapon
	Named *catalog.NamedWeapon

	// ThreatFloor is the computed critical threat floor after keen,
	// improved-critical, and weaponmaster reductions.
	ThreatFloor int
	// CritMultiplier is the computed critical multiplier (base +1 if weaponmaster).
	CritMultiplier int

	// Enhancement is the effective enhancement bonus including the set bonus.
	Enhancement int
	// VsRaceEnhancement is the race-conditional enhancement bonus, 0 when absent.
	VsRaceEnhancement int

	// StrengthBonus is the flat physical damage added per hit before offhand
	// halving; the orchestrator applies it per attack slot.
	StrengthBonus int

	// Sources is the aggregated damage-source mapping. It excludes the
	// strength bonus, which is position-dependent. The orchestrator treats
	// this map as read-only and copies on write.
	Sources map[catalog.DamageType][]dice.DamageRoll

	// TenaciousBlow is the flat pure damage applied on misses with
	// double-sided weapons; 0 when the source is absent or disabled.
	TenaciousBlow int

	// DuplicateBonus is set when the enhancement bonus conflicted with an
	// existing physical-type source; a warning surfaced in the summary, never
	// an error.
	DuplicateBonus bool

	// Legend is the legendary effect descriptor, nil for mundane weapons.
	Legend *catalog.LegendDescriptor
}

// tenaciousBlowKey is the reserved extra-damage key for the on-miss source.
const tenaciousBlowKey = "tenacious_blow"

// Resolve looks up weaponID in the catalog, applies the configuration's feats
// and extra damage sources, and returns the resolved Weapon.
//
// Precondition: cfg must have passed validation; reg must be non-nil.
// Postcondition: returns a fully populated immutable Weapon, or an error
// wrapping ErrUnknownWeapon when weaponID or its base form is unknown.
func Resolve(weaponID string, cfg *config.SimConfig, reg *catalog.Registry) (*Weapon, error) {
	named, ok := reg.Named(weaponID)
	if !ok {
		return nil, fmt.Errorf("weapon: %w: %q", ErrUnknownWeapon, weaponID)
	}

	// A shape-weapon override selects a different base catalog key; the
	// catalogs themselves are never mutated.
	baseID := named.BaseID
	if cfg.ShapeWeapon != "" {
		baseID = cfg.ShapeWeapon
	}
	base, ok := reg.Base(baseID)
	if !ok {
		return nil, fmt.Errorf("weapon: %w: base form %q of %q", ErrUnknownWeapon, baseID, weaponID)
	}

	w := &Weapon{
		ID:    weaponID,
		Name:  named.Name,
		Base:  base,
		Named: named,
	}

	w.ThreatFloor, w.CritMultiplier = critProfile(base, cfg.Feats)
	w.Enhancement = named.Enhancement + cfg.Attacker.EnhancementSetBonus
	if named.VsRace != nil {
		w.VsRaceEnhancement = named.VsRace.Enhancement
	}
	w.StrengthBonus = strengthBonus(base, cfg.Attacker)
	w.aggregateSources(cfg)

	w.Legend = named.Legend
	return w, nil
}

// critProfile computes the threat floor and multiplier from the base profile
// and the active feats. Each threat-range extension is the base range width,
// applied cumulatively; weaponmaster subtracts a further 2 and adds 1 to the
// multiplier.
func critProfile(base *catalog.BaseWeapon, feats config.FeatConfig) (floor, multiplier int) {
	floor = base.ThreatFloor
	width := 21 - base.ThreatFloor
	if feats.Keen {
		floor -= width
	}
	if feats.ImprovedCritical {
		floor -= width
	}
	multiplier = base.CritMultiplier
	if feats.Weaponmaster {
		floor -= 2
		multiplier++
	}
	if floor < 2 {
		floor = 2
	}
	return floor, multiplier
}

// strengthBonus computes the flat strength damage bonus.
// Auto-mighty thrown weapons use the raw strength modifier; other ranged
// weapons cap it at the mighty rating; melee doubles it when two-handed.
func strengthBonus(base *catalog.BaseWeapon, atk config.AttackerConfig) int {
	str := atk.StrengthMod
	switch {
	case base.Thrown:
		return str
	case base.Ranged:
		if str > atk.MightyRating {
			return atk.MightyRating
		}
		return str
	case atk.TwoHanded || base.TwoHanded:
		return str * 2
	default:
		return str
	}
}

// aggregateSources builds the damage-source mapping: named sources, the
// enhancement bonus, base weapon dice, race-conditional sources, and enabled
// extras, with conflict resolution on physical-type and same-type collisions.
func (w *Weapon) aggregateSources(cfg *config.SimConfig) {
	agg := make(map[catalog.DamageType][]dice.DamageRoll, len(w.Named.Damage)+2)
	for t, rolls := range w.Named.Damage {
		agg[t] = append([]dice.DamageRoll(nil), rolls...)
	}

	// Enhancement-bonus damage. A race-conditional enhancement competes when
	// race-targeted damage is enabled.
	enh := w.Enhancement
	if cfg.RaceTargeted && w.VsRaceEnhancement > enh {
		enh = w.VsRaceEnhancement
	}
	if enh > 0 {
		w.DuplicateBonus = mergeConflicting(agg, catalog.DamagePhysical, dice.DamageRoll{Flat: enh})
	}

	// Race-conditional sources, only when race-targeted damage is enabled.
	if cfg.RaceTargeted && w.Named.VsRace != nil {
		for t, roll := range w.Named.VsRace.Damage {
			mergeConflicting(agg, t, roll)
		}
	}

	// Base weapon dice apply unconditionally; they never conflict.
	agg[catalog.DamagePhysical] = append(agg[catalog.DamagePhysical], w.Base.Damage)

	// Extras merge in sorted key order so the source order within each damage
	// type is stable across runs.
	keys := make([]string, 0, len(cfg.ExtraDamage))
	for key := range cfg.ExtraDamage {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		extra := cfg.ExtraDamage[key]
		if !extra.Enabled {
			continue
		}
		roll, err := dice.FromList(extra.Roll)
		if err != nil {
			// Validation rejects malformed triples before resolution.
			continue
		}
		if key == tenaciousBlowKey {
			w.TenaciousBlow = roll.Flat
			continue
		}
		agg[extra.Type] = append(agg[extra.Type], roll)
	}

	w.Sources = agg
}

// mergeConflicting inserts candidate into agg[t], resolving a conflict with
// the highest-average existing source of the same type: the higher average
// wins, the loser is dropped. Returns true when a conflict occurred.
func mergeConflicting(agg map[catalog.DamageType][]dice.DamageRoll, t catalog.DamageType, candidate dice.DamageRoll) bool {
	existing := agg[t]
	if len(existing) == 0 {
		agg[t] = []dice.DamageRoll{candidate}
		return false
	}

	best := 0
	for i := 1; i < len(existing); i++ {
		if existing[i].Average() > existing[best].Average() {
			best = i
		}
	}
	if candidate.Average() > existing[best].Average() {
		replaced := append([]dice.DamageRoll(nil), existing...)
		replaced[best] = candidate
		agg[t] = replaced
	}
	return true
}

// CritRange renders the critical profile, e.g. "15-20/x3".
func (w *Weapon) CritRange() string {
	return fmt.Sprintf("%d-20/x%d", w.ThreatFloor, w.CritMultiplier)
}
