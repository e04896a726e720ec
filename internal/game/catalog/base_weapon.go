package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
)

// SizeClass is a weapon or character size category.
type SizeClass string

const (
	SizeTiny   SizeClass = "tiny"
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// sizeRanks orders size classes for comparisons.
var sizeRanks = map[SizeClass]int{
	SizeTiny:   0,
	SizeSmall:  1,
	SizeMedium: 2,
	SizeLarge:  3,
}

// Rank returns the ordinal of the size class, tiny lowest.
//
// Precondition: s must be a valid SizeClass.
func (s SizeClass) Rank() int {
	r, ok := sizeRanks[s]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown size class %q", s))
	}
	return r
}

// ValidSize reports whether s is a known size class.
func ValidSize(s SizeClass) bool {
	_, ok := sizeRanks[s]
	return ok
}

// BaseWeapon is the static physical profile of a weapon family.
//
// Precondition: after loading, ID is non-empty, Damage has Dice >= 1, ThreatFloor
// is in [2, 20], CritMultiplier >= 2, and Size is a valid SizeClass.
type BaseWeapon struct {
	ID             string    `yaml:"id"`
	Name           string    `yaml:"name"`
	DamageDice     string    `yaml:"damage_dice"`     // dice expression, e.g. "1d6"
	ThreatFloor    int       `yaml:"threat_floor"`    // minimum d20 that threatens a critical
	CritMultiplier int       `yaml:"crit_multiplier"` // base multiplier, e.g. 2 for x2
	Size           SizeClass `yaml:"size"`
	DoubleSided    bool      `yaml:"double_sided"` // two-bladed weapons (e.g. double scimitar)
	Ranged         bool      `yaml:"ranged"`
	Thrown         bool      `yaml:"thrown"` // thrown weapons are automatically mighty
	TwoHanded      bool      `yaml:"two_handed"`

	// Damage is the parsed form of DamageDice, populated by Validate.
	Damage dice.DamageRoll `yaml:"-"`
}

// Validate checks the BaseWeapon invariants and parses DamageDice into Damage.
//
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid; on success w.Damage is set.
func (w *BaseWeapon) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if w.DamageDice == "" {
		errs = append(errs, errors.New("DamageDice must not be empty"))
	} else {
		roll, err := dice.ParseRoll(w.DamageDice)
		if err != nil {
			errs = append(errs, fmt.Errorf("DamageDice: %w", err))
		} else {
			w.Damage = roll
		}
	}
	if w.ThreatFloor < 2 || w.ThreatFloor > 20 {
		errs = append(errs, fmt.Errorf("ThreatFloor must be in [2, 20], got %d", w.ThreatFloor))
	}
	if w.CritMultiplier < 2 {
		errs = append(errs, fmt.Errorf("CritMultiplier must be >= 2, got %d", w.CritMultiplier))
	}
	if !ValidSize(w.Size) {
		errs = append(errs, fmt.Errorf("Size must be one of [tiny, small, medium, large], got %q", w.Size))
	}
	if w.Thrown && !w.Ranged {
		errs = append(errs, errors.New("Thrown weapons must also be Ranged"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("base weapon validation failed: %v", errs)
	}
	return nil
}

// LoadBaseWeapons reads all *.yaml files from dir, parses each as a BaseWeapon,
// validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid BaseWeapons or the first encountered error.
func LoadBaseWeapons(dir string) ([]*BaseWeapon, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadBaseWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []*BaseWeapon
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadBaseWeapons: cannot read file %q: %w", path, err)
		}
		var w BaseWeapon
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("LoadBaseWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("LoadBaseWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
	}
	return weapons, nil
}
