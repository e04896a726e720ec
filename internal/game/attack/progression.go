// Package attack builds the per-round attack-bonus progression for a resolved
// weapon and performs the individual d20 attack and damage rolls.
package attack

import (
	"errors"
	"fmt"
)

// ErrUnknownProgression is returned when a named progression table is not in
// the built-in set.
var ErrUnknownProgression = errors.New("unknown attack progression")

// ErrMalformedProgression is returned when a progression table violates its
// structural contract (dual-wield slots without a haste slot).
var ErrMalformedProgression = errors.New("malformed attack progression")

// SlotKind tags a progression slot.
type SlotKind int

const (
	// SlotFixed is an ordinary attack at a fixed AB offset.
	SlotFixed SlotKind = iota
	// SlotHaste is the extra hasted attack; it lands at the unpenalized
	// effective AB regardless of any dual-wield penalty.
	SlotHaste
	// SlotFlurry is the flurry-of-blows extra attack at -5 from the haste slot.
	SlotFlurry
	// SlotBlindingSpeed is the blinding-speed extra attack at -10 from the
	// haste slot.
	SlotBlindingSpeed
)

// Slot is one symbolic entry of a progression table.
type Slot struct {
	Kind SlotKind
	// Offset is the AB offset for SlotFixed entries; ignored otherwise.
	Offset int
	// Offhand marks offhand attacks in dual-wield tables; it affects strength
	// halving only.
	Offhand bool
}

// Table is a named attack-progression table.
type Table struct {
	Name  string
	Slots []Slot
	// DualWield tables take the size-based dual-wield penalty on their fixed slots.
	DualWield bool
}

// fixed returns an ordinary mainhand slot at the given offset.
func fixed(offset int) Slot { return Slot{Kind: SlotFixed, Offset: offset} }

// offhand returns an offhand slot at the given offset.
func offhand(offset int) Slot { return Slot{Kind: SlotFixed, Offset: offset, Offhand: true} }

// tables is the built-in progression catalog, keyed by the configuration's
// progression name.
var tables = map[string]Table{
	"onhand": {
		Name:  "onhand",
		Slots: []Slot{fixed(0), fixed(-5), fixed(-10), fixed(-15)},
	},
	"onhand_hasted": {
		Name:  "onhand_hasted",
		Slots: []Slot{fixed(0), fixed(-5), fixed(-10), fixed(-15), {Kind: SlotHaste}},
	},
	"onhand_blinding_speed": {
		Name:  "onhand_blinding_speed",
		Slots: []Slot{fixed(0), fixed(-5), fixed(-10), fixed(-15), {Kind: SlotHaste}, {Kind: SlotBlindingSpeed}},
	},
	"dual_hasted": {
		Name: "dual_hasted",
		Slots: []Slot{
			fixed(0), fixed(-5), fixed(-10), fixed(-15),
			offhand(0), offhand(-5),
			{Kind: SlotHaste},
		},
		DualWield: true,
	},
	"dual_flurry": {
		Name: "dual_flurry",
		Slots: []Slot{
			fixed(0), fixed(-5), fixed(-10), fixed(-15),
			offhand(0), offhand(-5),
			{Kind: SlotHaste}, {Kind: SlotFlurry},
		},
		DualWield: true,
	},
	"ranged_rapid_shot": {
		Name:  "ranged_rapid_shot",
		Slots: []Slot{fixed(0), fixed(0), fixed(-5), fixed(-10), fixed(-15), {Kind: SlotHaste}},
	},
}

// RegisterTable adds or replaces a named progression table. Intended for
// callers that supply progression variants beyond the built-in set.
//
// Precondition: t.Name must be non-empty.
// Postcondition: t is retrievable via TableFor(t.Name); last call wins.
func RegisterTable(t Table) {
	if t.Name == "" {
		panic("attack.RegisterTable: precondition violated: table name must be non-empty")
	}
	tables[t.Name] = t
}

// TableFor returns the built-in progression table for name.
//
// Postcondition: returns the table, or an error wrapping ErrUnknownProgression.
func TableFor(name string) (Table, error) {
	t, ok := tables[name]
	if !ok {
		return Table{}, fmt.Errorf("attack: %w: %q", ErrUnknownProgression, name)
	}
	return t, nil
}

// validate checks the table's structural contract: a table with dual-wield
// slots must carry a haste slot for the reversed-penalty anchor.
func (t Table) validate() error {
	if !t.DualWield {
		return nil
	}
	for _, s := range t.Slots {
		if s.Kind == SlotHaste {
			return nil
		}
	}
	return fmt.Errorf("attack: %w: table %q has dual-wield slots but no haste slot", ErrMalformedProgression, t.Name)
}
