package sim

import "math"

// windowSize is the length of the rolling window of mean-DPS-to-date values
// used for convergence detection.
const windowSize = 15

// roundSeconds is the length of one combat round in seconds.
const roundSeconds = 6.0

// zScores maps confidence level to the normal z-score used for error bounds.
// Explicit input to the orchestrator rather than module-level state.
var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.960,
	0.99: 2.576,
}

// confidenceLevel is the confidence the stopping thresholds are tuned for.
const confidenceLevel = 0.99

// rollingWindow is a fixed-size FIFO of the most recent mean-DPS-to-date
// values.
type rollingWindow struct {
	values []float64
}

func newRollingWindow() *rollingWindow {
	return &rollingWindow{values: make([]float64, 0, windowSize)}
}

// push appends v, evicting the oldest value once the window is full.
func (w *rollingWindow) push(v float64) {
	if len(w.values) == windowSize {
		copy(w.values, w.values[1:])
		w.values[windowSize-1] = v
		return
	}
	w.values = append(w.values, v)
}

// full reports whether the window holds windowSize values. Convergence is
// never evaluated before the window is full.
func (w *rollingWindow) full() bool { return len(w.values) == windowSize }

// converged evaluates the two relative stability measures against their
// thresholds: the window's relative standard deviation and its relative
// peak-to-trough change, both divided by the window mean.
//
// Precondition: the window must be full.
func (w *rollingWindow) converged(stdDevThreshold, rangeThreshold float64) bool {
	m := mean(w.values)
	if m == 0 {
		return false
	}
	relStd := stdDev(w.values) / m
	lo, hi := w.values[0], w.values[0]
	for _, v := range w.values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	relRange := (hi - lo) / m
	return relStd < stdDevThreshold && relRange < rangeThreshold
}

// mean returns the arithmetic mean of values, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation of values, or 0 when fewer
// than two values are present.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// errorBound returns the z-scaled standard error for n samples.
func errorBound(std float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return zScores[confidenceLevel] * std / math.Sqrt(float64(n))
}

// round2 rounds v to two decimal places, the reporting convention for all
// scalar results.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// slotStats tracks per-attack-index hit and crit counts.
type slotStats struct {
	attempts []int
	hits     []int
	crits    []int
}

func newSlotStats(slots int) *slotStats {
	return &slotStats{
		attempts: make([]int, slots),
		hits:     make([]int, slots),
		crits:    make([]int, slots),
	}
}

func (s *slotStats) record(i int, hit, crit bool) {
	s.attempts[i]++
	if hit {
		s.hits[i]++
	}
	if crit {
		s.crits[i]++
	}
}

// totals returns the summed attempts, hits, and crits across all slots.
func (s *slotStats) totals() (attempts, hits, crits int) {
	for i := range s.attempts {
		attempts += s.attempts[i]
		hits += s.hits[i]
		crits += s.crits[i]
	}
	return attempts, hits, crits
}

// rates returns the observed per-slot hit and crit percentages.
func (s *slotStats) rates() (hitPct, critPct []float64) {
	hitPct = make([]float64, len(s.attempts))
	critPct = make([]float64, len(s.attempts))
	for i, n := range s.attempts {
		if n == 0 {
			continue
		}
		hitPct[i] = round2(100 * float64(s.hits[i]) / float64(n))
		critPct[i] = round2(100 * float64(s.crits[i]) / float64(n))
	}
	return hitPct, critPct
}
