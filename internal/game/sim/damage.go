package sim

import (
	"sort"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/config"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/weapon"
)

// buildPool assembles the per-attack working damage pool from the weapon's
// canonical aggregated sources. The bulk of the map is shared by reference;
// slices are copied only for the types that receive appends or pops
// (persistent common damage, strength, and the non-stacking categories).
//
// The returned heldOut map carries the single highest-average entry of each
// non-stacking category, popped from the pool before crit multiplication.
func buildPool(w *weapon.Weapon, common map[catalog.DamageType]dice.DamageRoll, strFlat int) (pool map[catalog.DamageType][]dice.DamageRoll, heldOut map[catalog.DamageType]dice.DamageRoll) {
	pool = make(map[catalog.DamageType][]dice.DamageRoll, len(w.Sources)+2)
	for t, rolls := range w.Sources {
		pool[t] = rolls
	}

	// Persistent legendary common damage merges into the ordinary pool.
	for t, roll := range common {
		pool[t] = append(append([]dice.DamageRoll(nil), pool[t]...), roll)
	}

	if strFlat != 0 {
		t := catalog.DamagePhysical
		pool[t] = append(append([]dice.DamageRoll(nil), pool[t]...), dice.DamageRoll{Flat: strFlat})
	}

	heldOut = make(map[catalog.DamageType]dice.DamageRoll, 4)
	for _, t := range []catalog.DamageType{catalog.DamageSneak, catalog.DamageDeath, catalog.DamageMassiveCrit, catalog.DamageOnHitFire} {
		entries := pool[t]
		if len(entries) == 0 {
			continue
		}
		best := entries[0]
		for _, e := range entries[1:] {
			if e.Average() > best.Average() {
				best = e
			}
		}
		heldOut[t] = best
		delete(pool, t)
	}
	return pool, heldOut
}

// rollPool resolves the working pool into per-type damage totals for one
// interpretation of the attack. On critical hits every pooled specification
// is rolled crit-multiplier times (fresh draws, not scaled), then the
// massive-critical hold-out is re-appended once, the overwhelm and
// devastating bonuses are added when enabled, and finally the remaining
// hold-outs are re-appended once, unmultiplied.
func rollPool(pool map[catalog.DamageType][]dice.DamageRoll, heldOut map[catalog.DamageType]dice.DamageRoll,
	crit bool, critMult int, weaponSize catalog.SizeClass, feats config.FeatConfig, src dice.Source) map[catalog.DamageType]int {

	totals := make(map[catalog.DamageType]int, len(pool)+len(heldOut))

	mult := 1
	if crit {
		mult = critMult
	}
	// Types roll in sorted order; map iteration order would consume the
	// shared source stream differently between otherwise identical runs.
	types := make([]catalog.DamageType, 0, len(pool))
	for t := range pool {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		for _, r := range pool[t] {
			for k := 0; k < mult; k++ {
				totals[t] += r.Roll(src)
			}
		}
	}

	if crit {
		if massive, ok := heldOut[catalog.DamageMassiveCrit]; ok {
			totals[catalog.DamageMassiveCrit] += massive.Roll(src)
		}
		if feats.OverwhelmingCritical {
			totals[catalog.DamagePhysical] += overwhelmBonus(critMult).Roll(src)
		}
		if feats.DevastatingCritical {
			totals[catalog.DamagePure] += devastatingBonus(weaponSize)
		}
	}

	for _, t := range []catalog.DamageType{catalog.DamageSneak, catalog.DamageDeath, catalog.DamageOnHitFire} {
		if r, ok := heldOut[t]; ok {
			totals[t] += r.Roll(src)
		}
	}

	return totals
}

// overwhelmBonus is the overwhelm-critical extra physical damage by crit
// multiplier: 1d6, 2d6, or 3d6 for x2, x3, and x4 or higher.
func overwhelmBonus(critMult int) dice.DamageRoll {
	switch {
	case critMult <= 2:
		return dice.DamageRoll{Dice: 1, Sides: 6}
	case critMult == 3:
		return dice.DamageRoll{Dice: 2, Sides: 6}
	default:
		return dice.DamageRoll{Dice: 3, Sides: 6}
	}
}

// devastatingBonus is the devastating-critical flat pure damage by weapon
// size: 10 for tiny or small, 20 for medium, 30 for large or bigger.
func devastatingBonus(size catalog.SizeClass) int {
	switch {
	case size.Rank() <= catalog.SizeSmall.Rank():
		return 10
	case size == catalog.SizeMedium:
		return 20
	default:
		return 30
	}
}

// applyImmunity reduces per-type totals by the defender's immunity table plus
// any legendary adjustment for this attack, and returns the summed damage and
// the reduced per-type values.
//
// Positive fractions deduct floor(damage x fraction), never less than 1, and
// the remaining damage floors at 1. Negative fractions (vulnerability) add
// floor(damage x |fraction|). Pure damage bypasses immunities entirely.
func applyImmunity(totals map[catalog.DamageType]int, immunities, adjust map[catalog.DamageType]float64) (int, map[catalog.DamageType]int) {
	sum := 0
	reduced := make(map[catalog.DamageType]int, len(totals))
	for t, dmg := range totals {
		if t != catalog.DamagePure {
			frac := immunities[t] + adjust[t]
			if frac > 0 {
				ded := int(float64(dmg) * frac)
				if ded < 1 {
					ded = 1
				}
				dmg -= ded
				if dmg < 1 {
					dmg = 1
				}
			} else if frac < 0 {
				dmg += int(float64(dmg) * -frac)
			}
		}
		reduced[t] = dmg
		sum += dmg
	}
	return sum, reduced
}
