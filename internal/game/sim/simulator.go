// Package sim runs the round-by-round Monte Carlo simulation for one resolved
// weapon and produces the final results record.
package sim

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/config"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/attack"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/legend"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/weapon"
)

// Simulator owns the immutable collaborators shared by simulation runs: the
// weapon catalogs, the legendary behavior registry, the randomness source,
// and the logger. Each Simulate call owns its own accumulators, so separate
// Simulator instances may run in parallel without coordination.
type Simulator struct {
	catalog *catalog.Registry
	legends *legend.Registry
	src     dice.Source
	logger  *zap.Logger
}

// New creates a Simulator.
//
// Precondition: reg, legends, and src must be non-nil; logger may be nil, in
// which case logging is disabled.
func New(reg *catalog.Registry, legends *legend.Registry, src dice.Source, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{catalog: reg, legends: legends, src: src, logger: logger}
}

// Simulate runs the full simulation for weaponID under cfg and returns the
// results record.
//
// Configuration contract violations (unknown weapon, unknown or malformed
// progression, malformed damage entries) fail fast with a typed error before
// any simulation work begins. An incompatible dual-wield size combination is
// not an error: it returns an all-zero, annotated Results.
func (s *Simulator) Simulate(weaponID string, cfg *config.SimConfig) (*Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, err := weapon.Resolve(weaponID, cfg, s.catalog)
	if err != nil {
		return nil, err
	}
	resolver, err := attack.NewResolver(w, cfg)
	if err != nil {
		return nil, err
	}

	res := &Results{
		RunID:                 uuid.New().String(),
		WeaponID:              w.ID,
		WeaponName:            w.Name,
		DamageByType:          make(map[catalog.DamageType]int),
		DuplicateBonusWarning: w.DuplicateBonus,
	}

	if resolver.Incompatible {
		res.Incompatible = true
		res.HitsPerAttack = []float64{}
		res.CritsPerAttack = []float64{}
		res.Summary = formatSummary(res, w.CritRange(), cfg.Defender.AC)
		s.logger.Info("dual-wield size combination incompatible, zero result",
			zap.String("run_id", res.RunID),
			zap.String("weapon", w.ID),
		)
		return res, nil
	}

	run := &runState{
		sim:      s,
		cfg:      cfg,
		weapon:   w,
		resolver: resolver,
		stats:    newSlotStats(len(resolver.Slots)),
		window:   newRollingWindow(),
		legend:   legend.NewState(w.Legend, s.behaviorFor(w), len(resolver.Slots)),
	}

	run.loop(res)
	run.finalize(res)

	res.Summary = formatSummary(res, w.CritRange(), cfg.Defender.AC)

	s.logger.Info("simulation complete",
		zap.String("run_id", res.RunID),
		zap.String("weapon", w.ID),
		zap.Int("rounds", res.Rounds),
		zap.Float64("dps_crits", res.DPSCrits),
		zap.Float64("dps_no_crits", res.DPSNoCrits),
	)
	return res, nil
}

// behaviorFor looks up the registered behavior for w's legendary descriptor.
// An unregistered descriptor still proc-rolls for reporting, with no effect.
func (s *Simulator) behaviorFor(w *weapon.Weapon) legend.Behavior {
	if w.Legend == nil {
		return nil
	}
	b, ok := s.legends.BehaviorFor(w.ID)
	if !ok {
		s.logger.Debug("legendary descriptor without registered behavior",
			zap.String("weapon", w.ID),
		)
		return nil
	}
	return b
}

// runState holds the cross-round mutable accumulators of one Simulate call.
// Created at run start, discarded at run end.
type runState struct {
	sim      *Simulator
	cfg      *config.SimConfig
	weapon   *weapon.Weapon
	resolver *attack.Resolver

	stats  *slotStats
	window *rollingWindow
	legend *legend.State

	totalCrits   int
	totalNoCrits int

	rollingAvg       []float64
	cumulativeDamage []int

	damageByType map[catalog.DamageType]int

	rounds int
}

// loop runs rounds until convergence, the damage cap, or the configured
// maximum.
func (r *runState) loop(res *Results) {
	r.damageByType = res.DamageByType
	stop := r.cfg.Stopping

	for round := 1; round <= stop.MaxRounds; round++ {
		r.rounds = round
		r.playRound()

		elapsed := float64(round) * roundSeconds
		r.cumulativeDamage = append(r.cumulativeDamage, r.totalCrits)

		meanDPS := float64(r.totalCrits) / elapsed
		r.window.push(meanDPS)
		r.rollingAvg = append(r.rollingAvg, meanDPS)

		if stop.DamageCapEnabled && r.totalCrits >= stop.DamageCap {
			r.sim.logger.Debug("damage cap reached", zap.Int("round", round), zap.Int("total", r.totalCrits))
			break
		}
		if r.window.full() && r.window.converged(stop.StdDevThreshold, stop.RangeThreshold) {
			r.sim.logger.Debug("converged", zap.Int("round", round))
			break
		}
	}
}

// playRound resolves every attack slot of the progression once.
func (r *runState) playRound() {
	roundCrit := 0
	roundNoCrit := 0

	for i, slot := range r.resolver.Slots {
		// Transient legendary modifiers from an open window apply to the
		// attack roll itself.
		ab := r.resolver.BaseAB + slot.Offset + r.legend.ABBonus()
		acMod := -r.legend.ACReduction()

		outcome := r.resolver.AttackRoll(ab, acMod, r.sim.src)
		hit := outcome != attack.Miss
		crit := outcome == attack.CriticalHit
		r.stats.record(i, hit, crit)

		burst, mods := r.legend.Resolve(hit, crit, r.weapon.CritMultiplier, r.sim.src)

		if !hit {
			// Tenacious blow: flat pure damage on miss, double-sided weapons only.
			if r.weapon.TenaciousBlow > 0 && r.weapon.Base.DoubleSided {
				roundCrit += r.weapon.TenaciousBlow
				roundNoCrit += r.weapon.TenaciousBlow
				r.damageByType[catalog.DamagePure] += r.weapon.TenaciousBlow
			}
			continue
		}

		strFlat := r.weapon.StrengthBonus
		if slot.Offhand {
			strFlat /= 2
		}

		pool, heldOut := buildPool(r.weapon, mods.CommonDamage, strFlat)

		critTotals := rollPool(pool, heldOut, crit, r.weapon.CritMultiplier, r.weapon.Base.Size, r.cfg.Feats, r.sim.src)
		critSum, critReduced := applyImmunity(critTotals, r.cfg.Defender.Immunities, mods.ImmunityFactors)

		// The crit-immune variant recomputes the same attack as if it had not
		// threatened; a plain hit is its own crit-immune variant.
		noCritSum := critSum
		if crit {
			noCritTotals := rollPool(pool, heldOut, false, r.weapon.CritMultiplier, r.weapon.Base.Size, r.cfg.Feats, r.sim.src)
			noCritSum, _ = applyImmunity(noCritTotals, r.cfg.Defender.Immunities, mods.ImmunityFactors)
		}

		for t, v := range critReduced {
			r.damageByType[t] += v
		}

		// Legendary burst damage bypasses immunity reduction. On-crit bursts
		// do not exist in the crit-immune interpretation.
		for t, v := range burst {
			critSum += v
			r.damageByType[t] += v
			if !r.weapon.Legend.OnCrit {
				noCritSum += v
			}
		}

		roundCrit += critSum
		roundNoCrit += noCritSum
	}

	r.totalCrits += roundCrit
	r.totalNoCrits += roundNoCrit
}

// finalize computes the scalar statistics and fills res.
func (r *runState) finalize(res *Results) {
	rounds := r.rounds
	res.Rounds = rounds
	res.DPSPerRound = perRoundDPS(r.cumulativeDamage)
	res.RollingAvgDPS = r.rollingAvg
	res.CumulativeDamage = r.cumulativeDamage

	critSeries := res.DPSPerRound
	meanCrit := mean(critSeries)
	stdCrit := stdDev(critSeries)

	// The crit-immune series is reconstructed from its total at the same
	// per-round resolution.
	meanNoCrit := 0.0
	if rounds > 0 {
		meanNoCrit = float64(r.totalNoCrits) / (float64(rounds) * roundSeconds)
	}
	// Scale the observed dispersion by the ratio of the two means; the
	// crit-immune variant has no independent series.
	stdNoCrit := stdCrit
	if meanCrit > 0 {
		stdNoCrit = stdCrit * meanNoCrit / meanCrit
	}

	res.DPSCrits = round2(meanCrit)
	res.DPSNoCrits = round2(meanNoCrit)
	res.AvgDPSBoth = round2((meanCrit + meanNoCrit) / 2)
	res.DPSCritsError = round2(errorBound(stdCrit, rounds))
	res.DPSNoCritsError = round2(errorBound(stdNoCrit, rounds))

	attempts, hits, crits := r.stats.totals()
	if attempts > 0 {
		res.HitRateActual = round2(100 * float64(hits) / float64(attempts))
		res.CritRateActual = round2(100 * float64(crits) / float64(attempts))
	}
	res.HitsPerAttack, res.CritsPerAttack = r.stats.rates()

	hitTheo, critTheo := 0.0, 0.0
	for i := range r.resolver.Slots {
		hitTheo += r.resolver.HitChance(i)
		critTheo += r.resolver.CritChance(i)
	}
	n := float64(len(r.resolver.Slots))
	if n > 0 {
		hitTheo /= n
		critTheo /= n
	}
	res.HitRateTheoretical = round2(100 * hitTheo)
	res.CritRateTheoretical = round2(100 * critTheo)

	if r.weapon.Legend != nil {
		if r.weapon.Legend.OnCrit {
			if hitTheo > 0 {
				res.LegendProcRateTheoretical = round2(100 * critTheo / hitTheo)
			}
		} else {
			res.LegendProcRateTheoretical = round2(100 * r.weapon.Legend.Chance)
		}
		if hits > 0 {
			res.LegendProcRateActual = round2(100 * float64(r.legend.Procs()) / float64(hits))
		}
	}

	if rounds > 0 {
		res.DamagePerRound = round2(float64(r.totalCrits) / float64(rounds))
	}
	if hits > 0 {
		res.DamagePerHit = round2(float64(r.totalCrits) / float64(hits))
	}
}

// perRoundDPS converts the cumulative damage series into per-round DPS values.
func perRoundDPS(cumulative []int) []float64 {
	out := make([]float64, len(cumulative))
	prev := 0
	for i, total := range cumulative {
		out[i] = float64(total-prev) / roundSeconds
		prev = total
	}
	return out
}
