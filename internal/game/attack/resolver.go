package attack

import (
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/config"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/weapon"
)

// Outcome is the result of one attack roll.
type Outcome int

const (
	// Miss deals no damage (except on-miss sources).
	Miss Outcome = iota
	// Hit is a plain hit.
	Hit
	// CriticalHit is a confirmed critical hit.
	CriticalHit
)

// ResolvedSlot is one concrete attack of the expanded progression.
type ResolvedSlot struct {
	// Offset is the AB offset relative to the resolved base AB, penalty applied.
	Offset int
	// Offhand marks the slot for strength-bonus halving.
	Offhand bool
}

// Resolver holds the per-run derived attack state: the resolved base AB, the
// expanded progression, and the theoretical hit/crit probability tables. It is
// stateless per call once constructed.
type Resolver struct {
	weapon *weapon.Weapon
	ac     int

	// BaseAB is the effective base attack bonus after enhancement excess.
	BaseAB int
	// Slots is the expanded per-attack progression.
	Slots []ResolvedSlot
	// Incompatible is set when the dual-wield size combination cannot be
	// wielded; the simulation must short-circuit with zero DPS.
	Incompatible bool

	hitChance  []float64
	critChance []float64
}

// NewResolver builds the derived attack state for w under cfg.
//
// Precondition: w must come from weapon.Resolve; cfg must have passed validation.
// Postcondition: returns a Resolver with expanded slots and probability
// tables, or an error for unknown/malformed progression tables. An
// incompatible dual-wield size combination is not an error; it sets
// Incompatible instead.
func NewResolver(w *weapon.Weapon, cfg *config.SimConfig) (*Resolver, error) {
	table, err := TableFor(cfg.Progression)
	if err != nil {
		return nil, err
	}
	if err := table.validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		weapon: w,
		ac:     cfg.Defender.AC,
		BaseAB: resolveBaseAB(w, cfg),
	}

	penalty := 0
	if table.DualWield {
		var compatible bool
		penalty, compatible = dualWieldPenalty(cfg.Attacker.Size, w.Base, cfg.Feats)
		if !compatible {
			r.Incompatible = true
			return r, nil
		}
	}

	r.Slots = expand(table, penalty)

	r.hitChance = make([]float64, len(r.Slots))
	r.critChance = make([]float64, len(r.Slots))
	for i, slot := range r.Slots {
		hit, crit := chances(r.BaseAB+slot.Offset, cfg.Defender.AC, w.ThreatFloor)
		r.hitChance[i] = hit
		r.critChance[i] = crit
	}
	return r, nil
}

// resolveBaseAB applies the enhancement-excess rule: enhancement beyond +7
// (or race-conditional enhancement beyond +7 when race-targeted damage is
// enabled) adds its excess to the configured AB, clamped to the configured
// cap. Without excess the configured AB is used unclamped.
func resolveBaseAB(w *weapon.Weapon, cfg *config.SimConfig) int {
	excess := 0
	if w.Enhancement > 7 {
		excess = w.Enhancement - 7
	}
	if cfg.RaceTargeted && w.VsRaceEnhancement > 7 {
		if v := w.VsRaceEnhancement - 7; v > excess {
			excess = v
		}
	}
	if excess == 0 {
		return cfg.Attacker.AttackBonus
	}
	ab := cfg.Attacker.AttackBonus + excess
	if ab > cfg.Attacker.AttackBonusCap {
		ab = cfg.Attacker.AttackBonusCap
	}
	return ab
}

// dualWieldPenalty maps the character-size/weapon-size combination to the
// dual-wield AB penalty. A weapon larger than its wielder is incompatible.
// Double-sided weapons wielded by a medium character take the light-weapon
// penalty. Each missing sub-feat (ambidexterity, two-weapon fighting) costs a
// further 2 points.
func dualWieldPenalty(charSize catalog.SizeClass, base *catalog.BaseWeapon, feats config.FeatConfig) (penalty int, compatible bool) {
	switch {
	case base.DoubleSided && charSize == catalog.SizeMedium:
		penalty = -2
	case base.Size.Rank() > charSize.Rank():
		return 0, false
	case base.Size.Rank() == charSize.Rank():
		penalty = -4
	default:
		penalty = -2
	}
	if !feats.Ambidexterity {
		penalty -= 2
	}
	if !feats.TwoWeaponFighting {
		penalty -= 2
	}
	return penalty, true
}

// expand resolves the symbolic table into concrete per-attack offsets. Fixed
// slots take the dual-wield penalty; the haste slot lands at the unpenalized
// effective AB; flurry and blinding-speed stack -5/-10 after the haste slot's
// reversed value.
func expand(table Table, penalty int) []ResolvedSlot {
	slots := make([]ResolvedSlot, 0, len(table.Slots))
	for _, s := range table.Slots {
		switch s.Kind {
		case SlotFixed:
			slots = append(slots, ResolvedSlot{Offset: s.Offset + penalty, Offhand: s.Offhand})
		case SlotHaste:
			slots = append(slots, ResolvedSlot{Offset: 0})
		case SlotFlurry:
			slots = append(slots, ResolvedSlot{Offset: -5})
		case SlotBlindingSpeed:
			slots = append(slots, ResolvedSlot{Offset: -10})
		}
	}
	return slots
}

// chances computes the theoretical hit and crit probabilities for one attack.
// Natural 1 always misses and natural 20 always hits, so the hit probability
// is clamped to [0.05, 0.95]. The confirmation roll carries no natural
// exemptions, so its probability is the raw (21+AB-AC)*0.05 bounded to [0, 1].
func chances(ab, ac, threatFloor int) (hit, crit float64) {
	raw := float64(21+ab-ac) * 0.05

	hit = raw
	if hit < 0.05 {
		hit = 0.05
	}
	if hit > 0.95 {
		hit = 0.95
	}

	confirm := raw
	if confirm < 0 {
		confirm = 0
	}
	if confirm > 1 {
		confirm = 1
	}

	threat := float64(21-threatFloor) * 0.05
	if threat > hit {
		threat = hit
	}
	crit = threat * confirm
	return hit, crit
}

// HitChance returns the theoretical hit probability of slot i.
//
// Postcondition: 0.05 <= return value <= 0.95.
func (r *Resolver) HitChance(i int) float64 { return r.hitChance[i] }

// CritChance returns the theoretical crit probability of slot i.
//
// Postcondition: return value <= HitChance(i).
func (r *Resolver) CritChance(i int) float64 { return r.critChance[i] }

// AttackRoll resolves one d20 attack at the given AB against the configured
// AC shifted by acMod. A natural 1 always misses; a natural 20 always hits
// and attempts a threat confirmation. The confirmation roll compares plainly
// against AC, without the natural-1/natural-20 exemptions.
//
// Precondition: src must be non-nil.
func (r *Resolver) AttackRoll(ab, acMod int, src dice.Source) Outcome {
	ac := r.ac + acMod
	roll := src.Intn(20) + 1

	hit := false
	switch {
	case roll == 1:
		hit = false
	case roll == 20:
		hit = true
	default:
		hit = roll+ab >= ac
	}
	if !hit {
		return Miss
	}

	if roll >= r.weapon.ThreatFloor {
		confirm := src.Intn(20) + 1
		if confirm+ab >= ac {
			return CriticalHit
		}
	}
	return Hit
}

// RollDamage rolls one damage specification: the sum of dice independent
// uniform draws plus the flat bonus.
//
// Postcondition: a degenerate specification (dice or sides zero) returns
// exactly the flat value with no draw.
func RollDamage(roll dice.DamageRoll, src dice.Source) int {
	return roll.Roll(src)
}
