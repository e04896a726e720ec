package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/config"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/weapon"
)

// maxSource rolls every die at its maximum face.
type maxSource struct{}

func (maxSource) Intn(n int) int { return n - 1 }

func (maxSource) Float64() float64 { return 0.99 }

func poolWeapon() *weapon.Weapon {
	return &weapon.Weapon{
		Sources: map[catalog.DamageType][]dice.DamageRoll{
			catalog.DamagePhysical: {{Dice: 1, Sides: 8}, {Flat: 5}},
			catalog.DamageFire:     {{Dice: 1, Sides: 6}},
			catalog.DamageSneak:    {{Dice: 3, Sides: 6}, {Dice: 5, Sides: 6}},
			catalog.DamageMassiveCrit: {
				{Dice: 2, Sides: 6},
			},
		},
	}
}

func TestBuildPool_HoldsOutHighestNonStacking(t *testing.T) {
	w := poolWeapon()
	pool, heldOut := buildPool(w, nil, 11)

	assert.NotContains(t, pool, catalog.DamageSneak, "non-stacking categories are popped from the pool")
	assert.NotContains(t, pool, catalog.DamageMassiveCrit)
	assert.Equal(t, dice.DamageRoll{Dice: 5, Sides: 6}, heldOut[catalog.DamageSneak],
		"only the highest-average entry of a non-stacking category survives")
	assert.Equal(t, dice.DamageRoll{Dice: 2, Sides: 6}, heldOut[catalog.DamageMassiveCrit])

	require.Len(t, pool[catalog.DamagePhysical], 3, "the strength flat joins the physical pool")
	assert.Equal(t, dice.DamageRoll{Flat: 11}, pool[catalog.DamagePhysical][2])

	// The canonical weapon sources must stay untouched across builds.
	assert.Len(t, w.Sources[catalog.DamagePhysical], 2)
	assert.Len(t, w.Sources[catalog.DamageSneak], 2)
}

func TestBuildPool_MergesPersistentCommonDamage(t *testing.T) {
	w := poolWeapon()
	common := map[catalog.DamageType]dice.DamageRoll{
		catalog.DamageFire: {Dice: 1, Sides: 4},
	}
	pool, _ := buildPool(w, common, 0)
	assert.Len(t, pool[catalog.DamageFire], 2)
	assert.Len(t, w.Sources[catalog.DamageFire], 1, "copy-on-write must not grow the canonical source")
}

func TestRollPool_PlainHit(t *testing.T) {
	w := poolWeapon()
	pool, heldOut := buildPool(w, nil, 11)
	totals := rollPool(pool, heldOut, false, 3, catalog.SizeMedium, config.FeatConfig{}, maxSource{})

	assert.Equal(t, 8+5+11, totals[catalog.DamagePhysical])
	assert.Equal(t, 6, totals[catalog.DamageFire])
	assert.Equal(t, 30, totals[catalog.DamageSneak], "the sneak hold-out lands once, unmultiplied")
	assert.NotContains(t, totals, catalog.DamageMassiveCrit, "massive-critical damage is crit-only")
}

func TestRollPool_CriticalHit(t *testing.T) {
	w := poolWeapon()
	pool, heldOut := buildPool(w, nil, 11)
	totals := rollPool(pool, heldOut, true, 3, catalog.SizeMedium, config.FeatConfig{}, maxSource{})

	assert.Equal(t, 3*(8+5+11), totals[catalog.DamagePhysical], "pooled sources roll crit-multiplier times")
	assert.Equal(t, 3*6, totals[catalog.DamageFire])
	assert.Equal(t, 30, totals[catalog.DamageSneak], "hold-outs never multiply")
	assert.Equal(t, 12, totals[catalog.DamageMassiveCrit], "massive-critical lands exactly once on a crit")
}

// TestRollPool_StableRollOrder verifies a multi-type pool draws from the
// source in a stable order: two identically seeded sources must yield
// identical totals.
func TestRollPool_StableRollOrder(t *testing.T) {
	w := poolWeapon()
	pool, heldOut := buildPool(w, nil, 11)

	a := rollPool(pool, heldOut, true, 3, catalog.SizeMedium, config.FeatConfig{}, dice.NewSeededSource(99))
	b := rollPool(pool, heldOut, true, 3, catalog.SizeMedium, config.FeatConfig{}, dice.NewSeededSource(99))
	assert.Equal(t, a, b)
}

func TestRollPool_CriticalFeatBonuses(t *testing.T) {
	w := poolWeapon()
	pool, heldOut := buildPool(w, nil, 0)
	feats := config.FeatConfig{OverwhelmingCritical: true, DevastatingCritical: true}

	totals := rollPool(pool, heldOut, true, 3, catalog.SizeMedium, feats, maxSource{})
	assert.Equal(t, 3*(8+5)+12, totals[catalog.DamagePhysical], "overwhelm adds 2d6 physical at x3")
	assert.Equal(t, 20, totals[catalog.DamagePure], "devastating adds flat pure by weapon size")

	plain := rollPool(pool, heldOut, false, 3, catalog.SizeMedium, feats, maxSource{})
	assert.Equal(t, 8+5, plain[catalog.DamagePhysical], "feat bonuses apply to crits only")
	assert.NotContains(t, plain, catalog.DamagePure)
}

func TestOverwhelmBonus_ByMultiplier(t *testing.T) {
	assert.Equal(t, dice.DamageRoll{Dice: 1, Sides: 6}, overwhelmBonus(2))
	assert.Equal(t, dice.DamageRoll{Dice: 2, Sides: 6}, overwhelmBonus(3))
	assert.Equal(t, dice.DamageRoll{Dice: 3, Sides: 6}, overwhelmBonus(4))
	assert.Equal(t, dice.DamageRoll{Dice: 3, Sides: 6}, overwhelmBonus(5))
}

func TestDevastatingBonus_BySize(t *testing.T) {
	assert.Equal(t, 10, devastatingBonus(catalog.SizeTiny))
	assert.Equal(t, 10, devastatingBonus(catalog.SizeSmall))
	assert.Equal(t, 20, devastatingBonus(catalog.SizeMedium))
	assert.Equal(t, 30, devastatingBonus(catalog.SizeLarge))
}

func TestApplyImmunity_MinimumDeduction(t *testing.T) {
	// 100 damage at 95% immunity deducts 95 but floors the remainder at 1;
	// small packets still lose at least 1 point.
	totals := map[catalog.DamageType]int{catalog.DamagePhysical: 100}
	sum, reduced := applyImmunity(totals, map[catalog.DamageType]float64{catalog.DamagePhysical: 0.95}, nil)
	assert.Equal(t, 5, sum)
	assert.Equal(t, 5, reduced[catalog.DamagePhysical])

	totals = map[catalog.DamageType]int{catalog.DamagePhysical: 3}
	sum, _ = applyImmunity(totals, map[catalog.DamageType]float64{catalog.DamagePhysical: 0.1}, nil)
	assert.Equal(t, 2, sum, "the deduction is never less than 1")

	totals = map[catalog.DamageType]int{catalog.DamagePhysical: 1}
	sum, _ = applyImmunity(totals, map[catalog.DamageType]float64{catalog.DamagePhysical: 0.1}, nil)
	assert.Equal(t, 1, sum, "reduced damage floors at 1")
}

func TestApplyImmunity_VulnerabilityAndPure(t *testing.T) {
	totals := map[catalog.DamageType]int{
		catalog.DamageFire: 20,
		catalog.DamagePure: 40,
	}
	immunities := map[catalog.DamageType]float64{
		catalog.DamageFire: -0.5,
		catalog.DamagePure: 0.9,
	}
	sum, reduced := applyImmunity(totals, immunities, nil)
	assert.Equal(t, 30, reduced[catalog.DamageFire], "negative fractions add damage")
	assert.Equal(t, 40, reduced[catalog.DamagePure], "pure damage bypasses immunities")
	assert.Equal(t, 70, sum)
}

// TestApplyImmunity_VulnerabilityIncreases_Property verifies any negative
// fraction strictly increases damage relative to zero immunity for the same
// totals.
func TestApplyImmunity_VulnerabilityIncreases_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dmg := rapid.IntRange(2, 500).Draw(rt, "dmg")
		frac := rapid.Float64Range(-1.0, -0.01).Draw(rt, "frac")

		totals := map[catalog.DamageType]int{catalog.DamageFire: dmg}
		plain, _ := applyImmunity(totals, nil, nil)
		vulnerable, _ := applyImmunity(totals, map[catalog.DamageType]float64{catalog.DamageFire: frac}, nil)
		assert.GreaterOrEqual(rt, vulnerable, plain)
		if int(float64(dmg)*-frac) >= 1 {
			assert.Greater(rt, vulnerable, plain)
		}
	})
}

func TestApplyImmunity_LegendAdjustment(t *testing.T) {
	totals := map[catalog.DamageType]int{catalog.DamagePhysical: 100}
	immunities := map[catalog.DamageType]float64{catalog.DamagePhysical: 0.10}
	adjust := map[catalog.DamageType]float64{catalog.DamagePhysical: -0.05}
	sum, _ := applyImmunity(totals, immunities, adjust)
	assert.Equal(t, 95, sum, "the legendary adjustment shifts the effective fraction")
}

func TestRollingWindow_ConvergenceGating(t *testing.T) {
	w := newRollingWindow()
	for i := 0; i < windowSize-1; i++ {
		w.push(100.0)
	}
	assert.False(t, w.full(), "convergence is never evaluated before the window fills")

	w.push(100.0)
	require.True(t, w.full())
	assert.True(t, w.converged(0.001, 0.005))

	w.push(200.0)
	assert.False(t, w.converged(0.001, 0.005), "a spike re-opens the window")
}

func TestRollingWindow_Eviction(t *testing.T) {
	w := newRollingWindow()
	for i := 0; i < windowSize; i++ {
		w.push(float64(i))
	}
	w.push(99.0)
	assert.Len(t, w.values, windowSize)
	assert.Equal(t, 1.0, w.values[0], "the oldest value is evicted")
	assert.Equal(t, 99.0, w.values[windowSize-1])
}

func TestRollingWindow_ZeroMeanNeverConverges(t *testing.T) {
	w := newRollingWindow()
	for i := 0; i < windowSize; i++ {
		w.push(0.0)
	}
	assert.False(t, w.converged(0.001, 0.005))
}

func TestSlotStats(t *testing.T) {
	s := newSlotStats(2)
	s.record(0, true, true)
	s.record(0, true, false)
	s.record(0, false, false)
	s.record(1, true, false)

	attempts, hits, crits := s.totals()
	assert.Equal(t, 4, attempts)
	assert.Equal(t, 3, hits)
	assert.Equal(t, 1, crits)

	hitPct, critPct := s.rates()
	assert.InDelta(t, 66.67, hitPct[0], 0.01)
	assert.InDelta(t, 33.33, critPct[0], 0.01)
	assert.Equal(t, 100.0, hitPct[1])
}

func TestStatHelpers(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, stdDev([]float64{5}))
	assert.InDelta(t, 1.0, stdDev([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 2.576*1.0/10.0, errorBound(1.0, 100), 1e-9)
	assert.Equal(t, 1.23, round2(1.2345))
}
