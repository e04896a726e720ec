// Package dice provides the core randomness abstraction and the DamageRoll
// value type used by the DPS simulation engine.
package dice

import "fmt"

// DamageRoll is an immutable dice specification: Dice d Sides + Flat.
//
// Invariant: Dice == 0 or Sides == 0 degenerates the roll to the flat value.
type DamageRoll struct {
	Dice  int // number of dice
	Sides int // faces per die
	Flat  int // flat bonus (may be negative)
}

// Average returns the expected value of the roll.
//
// Postcondition: return value == Dice*(1+Sides)/2 + Flat, or Flat when degenerate.
func (r DamageRoll) Average() float64 {
	if r.Dice == 0 || r.Sides == 0 {
		return float64(r.Flat)
	}
	return float64(r.Dice)*float64(1+r.Sides)/2 + float64(r.Flat)
}

// Roll draws Dice independent uniform values in [1, Sides] and adds Flat.
//
// Precondition: src must be non-nil unless the roll is degenerate.
// Postcondition: a degenerate roll returns exactly Flat with no draw.
func (r DamageRoll) Roll(src Source) int {
	if r.Dice == 0 || r.Sides == 0 {
		return r.Flat
	}
	total := r.Flat
	for i := 0; i < r.Dice; i++ {
		total += src.Intn(r.Sides) + 1
	}
	return total
}

// String renders the roll in dice-expression form, e.g. "2d6+3", "1d8", "5".
func (r DamageRoll) String() string {
	if r.Dice == 0 || r.Sides == 0 {
		return fmt.Sprintf("%d", r.Flat)
	}
	s := fmt.Sprintf("%dd%d", r.Dice, r.Sides)
	if r.Flat != 0 {
		s += fmt.Sprintf("%+d", r.Flat)
	}
	return s
}

// FromList builds a DamageRoll from a [dice, sides, flat] triple.
//
// Precondition: list must have exactly 3 elements with dice >= 0 and sides >= 0.
// Postcondition: FromList(r.ToList()) round-trips for any valid DamageRoll.
func FromList(list []int) (DamageRoll, error) {
	if len(list) != 3 {
		return DamageRoll{}, fmt.Errorf("dice: %w: want [dice, sides, flat], got %d elements", ErrMalformedDamageEntry, len(list))
	}
	if list[0] < 0 || list[1] < 0 {
		return DamageRoll{}, fmt.Errorf("dice: %w: dice and sides must be >= 0, got %v", ErrMalformedDamageEntry, list)
	}
	return DamageRoll{Dice: list[0], Sides: list[1], Flat: list[2]}, nil
}

// ToList returns the [dice, sides, flat] triple for r.
func (r DamageRoll) ToList() []int {
	return []int{r.Dice, r.Sides, r.Flat}
}
