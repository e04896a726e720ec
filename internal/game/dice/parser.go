package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedDamageEntry is returned when a damage specification does not
// match the expected [dice, sides, flat] arity or dice-expression syntax.
var ErrMalformedDamageEntry = errors.New("malformed damage entry")

// ParseRoll parses a dice expression string into a DamageRoll.
// Supported forms: "d8", "2d6", "2d6+3", "4d8-2", "5" (flat only).
//
// Precondition: expr must be a non-empty string.
// Postcondition: returns a DamageRoll or a descriptive error wrapping
// ErrMalformedDamageEntry.
func ParseRoll(expr string) (DamageRoll, error) {
	if expr == "" {
		return DamageRoll{}, fmt.Errorf("dice: %w: empty expression", ErrMalformedDamageEntry)
	}

	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		// No 'd': a bare flat value.
		flat, err := strconv.Atoi(s)
		if err != nil {
			return DamageRoll{}, fmt.Errorf("dice: %w: invalid flat value %q", ErrMalformedDamageEntry, raw)
		}
		return DamageRoll{Flat: flat}, nil
	}

	// Parse count (the part before 'd'); defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			return DamageRoll{}, fmt.Errorf("dice: %w: invalid die count in %q", ErrMalformedDamageEntry, raw)
		}
	}

	rest := s[dIdx+1:]

	// Find the first '+' or '-' not at position 0 (to skip a leading sign).
	modOffset := -1
	for i := 1; i < len(rest); i++ {
		if rest[i] == '+' || rest[i] == '-' {
			modOffset = i
			break
		}
	}

	sidesStr, modStr := rest, ""
	if modOffset >= 0 {
		sidesStr, modStr = rest[:modOffset], rest[modOffset:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 2 {
		return DamageRoll{}, fmt.Errorf("dice: %w: invalid die sides in %q", ErrMalformedDamageEntry, raw)
	}

	flat := 0
	if modStr != "" {
		flat, err = strconv.Atoi(modStr)
		if err != nil {
			return DamageRoll{}, fmt.Errorf("dice: %w: invalid modifier in %q", ErrMalformedDamageEntry, raw)
		}
	}

	return DamageRoll{Dice: count, Sides: sides, Flat: flat}, nil
}

// MustParseRoll parses expr and panics on error. Useful for package-level
// catalog constants.
func MustParseRoll(expr string) DamageRoll {
	r, err := ParseRoll(expr)
	if err != nil {
		panic("dice: MustParseRoll failed for expression " + expr + ": " + err.Error())
	}
	return r
}
