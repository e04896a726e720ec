// Package catalog provides the static weapon catalogs: the base weapon
// physical profiles and the named/legendary weapon profiles, loaded once at
// process start and treated as immutable thereafter.
package catalog

// DamageType identifies a damage category for immunity and reporting purposes.
type DamageType string

const (
	// DamagePhysical is weapon base damage (slashing/piercing/bludgeoning collapsed).
	DamagePhysical DamageType = "physical"
	// DamageFire is elemental fire damage.
	DamageFire DamageType = "fire"
	// DamageCold is elemental cold damage.
	DamageCold DamageType = "cold"
	// DamageElectrical is elemental electrical damage.
	DamageElectrical DamageType = "electrical"
	// DamageAcid is elemental acid damage.
	DamageAcid DamageType = "acid"
	// DamageSonic is sonic damage.
	DamageSonic DamageType = "sonic"
	// DamageNegative is negative energy damage.
	DamageNegative DamageType = "negative"
	// DamagePositive is positive energy damage.
	DamagePositive DamageType = "positive"
	// DamageDivine is divine damage.
	DamageDivine DamageType = "divine"
	// DamageMagical is raw magical damage.
	DamageMagical DamageType = "magical"
	// DamagePure bypasses all immunities and is never reduced.
	DamagePure DamageType = "pure"

	// DamageSneak is sneak-attack damage: non-stacking, never crit-multiplied.
	DamageSneak DamageType = "sneak"
	// DamageDeath is death-attack damage: non-stacking, never crit-multiplied.
	DamageDeath DamageType = "death"
	// DamageMassiveCrit is massive-critical damage: non-stacking, applied once
	// on critical hits only.
	DamageMassiveCrit DamageType = "massive_crit"
	// DamageOnHitFire is on-hit fire damage: non-stacking, never crit-multiplied.
	DamageOnHitFire DamageType = "on_hit_fire"
)

// validDamageTypes is the closed set accepted by catalog and config validation.
var validDamageTypes = map[DamageType]bool{
	DamagePhysical:    true,
	DamageFire:        true,
	DamageCold:        true,
	DamageElectrical:  true,
	DamageAcid:        true,
	DamageSonic:       true,
	DamageNegative:    true,
	DamagePositive:    true,
	DamageDivine:      true,
	DamageMagical:     true,
	DamagePure:        true,
	DamageSneak:       true,
	DamageDeath:       true,
	DamageMassiveCrit: true,
	DamageOnHitFire:   true,
}

// ValidDamageType reports whether t is a member of the closed damage-type set.
func ValidDamageType(t DamageType) bool {
	return validDamageTypes[t]
}

// NonStacking reports whether t is one of the non-stacking categories: only
// the single highest-average source of the category contributes per hit, and
// it is never crit-multiplied.
func NonStacking(t DamageType) bool {
	switch t {
	case DamageSneak, DamageDeath, DamageMassiveCrit, DamageOnHitFire:
		return true
	}
	return false
}
