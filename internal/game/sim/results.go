package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
)

// Results is the immutable snapshot returned to the caller at the end of a
// simulation run. All scalar fields follow the 2-decimal rounding convention.
type Results struct {
	// RunID uniquely identifies this run for log correlation.
	RunID string

	WeaponID   string
	WeaponName string

	// DPSCrits and DPSNoCrits are the mean sustained DPS estimates for the
	// crit-allowed and crit-immune interpretations.
	DPSCrits   float64
	DPSNoCrits float64
	// AvgDPSBoth is the midpoint of the two estimates.
	AvgDPSBoth float64
	// DPSCritsError and DPSNoCritsError are the z-scaled error bounds.
	DPSCritsError   float64
	DPSNoCritsError float64

	// Percentage rates, observed vs theoretical.
	HitRateActual             float64
	HitRateTheoretical        float64
	CritRateActual            float64
	CritRateTheoretical       float64
	LegendProcRateActual      float64
	LegendProcRateTheoretical float64

	// HitsPerAttack and CritsPerAttack are observed percentages per attack slot.
	HitsPerAttack  []float64
	CritsPerAttack []float64

	// Per-round series for reporting.
	DPSPerRound      []float64
	RollingAvgDPS    []float64
	CumulativeDamage []int

	// DamageByType accumulates crit-allowed damage by type across the run.
	DamageByType map[catalog.DamageType]int

	DamagePerRound float64
	DamagePerHit   float64

	// Rounds is the number of rounds actually simulated.
	Rounds int

	// Incompatible marks a dual-wield size combination that cannot be
	// wielded; all statistics are zero.
	Incompatible bool
	// DuplicateBonusWarning surfaces the enhancement-vs-physical-source
	// conflict detected at weapon resolution.
	DuplicateBonusWarning bool

	// Summary is the formatted human-readable report.
	Summary string
}

// formatSummary renders the text summary embedding weapon identity, the
// critical profile, the target AC, and all scalar results.
func formatSummary(r *Results, critRange string, targetAC int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [%s]\n", r.WeaponName, r.WeaponID)
	fmt.Fprintf(&b, "critical profile %s vs AC %d, %d rounds simulated\n", critRange, targetAC, r.Rounds)

	if r.Incompatible {
		b.WriteString("incompatible dual-wield size combination: weapon cannot be wielded, all results zero\n")
		return b.String()
	}

	fmt.Fprintf(&b, "DPS (crits allowed):  %.2f +/- %.2f\n", r.DPSCrits, r.DPSCritsError)
	fmt.Fprintf(&b, "DPS (crit-immune):    %.2f +/- %.2f\n", r.DPSNoCrits, r.DPSNoCritsError)
	fmt.Fprintf(&b, "DPS (midpoint):       %.2f\n", r.AvgDPSBoth)
	fmt.Fprintf(&b, "damage per round %.2f, damage per hit %.2f\n", r.DamagePerRound, r.DamagePerHit)
	fmt.Fprintf(&b, "hit rate %.2f%% (theoretical %.2f%%), crit rate %.2f%% (theoretical %.2f%%)\n",
		r.HitRateActual, r.HitRateTheoretical, r.CritRateActual, r.CritRateTheoretical)
	if r.LegendProcRateTheoretical > 0 || r.LegendProcRateActual > 0 {
		fmt.Fprintf(&b, "legend proc rate %.2f%% (theoretical %.2f%%)\n",
			r.LegendProcRateActual, r.LegendProcRateTheoretical)
	}

	if len(r.DamageByType) > 0 {
		types := make([]string, 0, len(r.DamageByType))
		for t := range r.DamageByType {
			types = append(types, string(t))
		}
		sort.Strings(types)
		b.WriteString("damage by type:")
		for _, t := range types {
			fmt.Fprintf(&b, " %s=%d", t, r.DamageByType[catalog.DamageType(t)])
		}
		b.WriteString("\n")
	}

	if r.DuplicateBonusWarning {
		b.WriteString("warning: enhancement bonus duplicates an existing physical damage source; the higher average was kept\n")
	}

	return b.String()
}
