package legend

import (
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
)

// State is the per-weapon mutable effect state for one simulation run. It
// tracks the rolling proc window and exposes the transient AB bonus and AC
// reduction read accessors consulted before each attack roll.
//
// Invariant: the transient accessors return non-zero values only while
// attacksRemaining > 0.
type State struct {
	desc     *catalog.LegendDescriptor
	behavior Behavior

	attacksPerRound int

	// attacksRemaining counts down the rolling window of
	// duration_rounds x attacks_per_round.
	attacksRemaining int
	persistent       Persistent

	procs int
}

// NewState creates the effect state for one run.
//
// Precondition: attacksPerRound >= 1. desc may be nil (no effect); behavior
// may be nil (unregistered descriptor, reporting-only procs).
func NewState(desc *catalog.LegendDescriptor, behavior Behavior, attacksPerRound int) *State {
	return &State{
		desc:            desc,
		behavior:        behavior,
		attacksPerRound: attacksPerRound,
	}
}

// Active reports whether the persistent window is currently open.
func (s *State) Active() bool { return s.attacksRemaining > 0 }

// ABBonus returns the transient attack-bonus modifier, non-zero only while
// inside an open window.
func (s *State) ABBonus() int {
	if s.attacksRemaining > 0 {
		return s.persistent.ABBonus
	}
	return 0
}

// ACReduction returns the transient AC reduction, non-zero only while inside
// an open window.
func (s *State) ACReduction() int {
	if s.attacksRemaining > 0 {
		return s.persistent.ACReduction
	}
	return 0
}

// Procs returns the number of procs fired so far in this run.
func (s *State) Procs() int { return s.procs }

// Resolve advances the effect state for one resolved attack and returns the
// burst damage plus the persistent modifiers applicable to this attack's
// damage computation.
//
// Percentage style: every hit independently rolls against the descriptor's
// chance; a fresh proc resets the window and applies burst and persistent;
// inside an open window without a fresh proc only the persistent modifiers
// apply (burst is never double-applied) and the counter decrements.
// On-crit style: fires burst and persistent exactly on critical hits, with no
// window or decay.
//
// Precondition: src must be non-nil.
func (s *State) Resolve(hit, crit bool, critMultiplier int, src dice.Source) (Burst, Persistent) {
	if s.desc == nil {
		return nil, Persistent{}
	}

	if s.desc.OnCrit {
		if !crit {
			return nil, Persistent{}
		}
		s.procs++
		if s.behavior == nil {
			return nil, Persistent{}
		}
		burst, persistent := s.behavior.Apply(s.desc, critMultiplier, src)
		return burst, persistent
	}

	if hit && src.Float64() < s.desc.Chance {
		s.procs++
		s.attacksRemaining = s.desc.DurationRounds * s.attacksPerRound
		if s.behavior == nil {
			s.attacksRemaining = 0
			return nil, Persistent{}
		}
		burst, persistent := s.behavior.Apply(s.desc, critMultiplier, src)
		s.persistent = persistent
		return burst, persistent
	}

	if s.attacksRemaining > 0 {
		s.attacksRemaining--
		return nil, s.persistent
	}

	return nil, Persistent{}
}
