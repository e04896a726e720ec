package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
)

// LegendDescriptor declares the legendary effect of a named weapon. The
// behavior dispatched for it is selected by weapon ID in the legend registry;
// the descriptor only carries the tunable numbers.
type LegendDescriptor struct {
	// Effect is a human-readable effect label used in summaries.
	Effect string `yaml:"effect"`
	// Chance is the per-hit proc probability in [0, 1]; ignored by on-crit effects.
	Chance float64 `yaml:"chance"`
	// DurationRounds is the persistent-phase window length in rounds; 0 means
	// burst-only (or on-crit, which has no window).
	DurationRounds int `yaml:"duration_rounds"`
	// OnCrit selects the on-crit proc style instead of the percentage style.
	OnCrit bool `yaml:"on_crit"`
	// BurstDice maps damage type to a dice expression rolled once per proc.
	BurstDice map[DamageType]string `yaml:"burst"`

	// Burst is the parsed form of BurstDice, populated by validation.
	Burst map[DamageType]dice.DamageRoll `yaml:"-"`
}

// VsRace declares race-conditional damage sources, unpacked into the
// aggregate only when the configuration enables race-targeted damage.
type VsRace struct {
	Race        string                `yaml:"race"`
	Enhancement int                   `yaml:"enhancement"`
	DamageDice  map[DamageType]string `yaml:"damage"`

	// Damage is the parsed form of DamageDice, populated by validation.
	Damage map[DamageType]dice.DamageRoll `yaml:"-"`
}

// NamedWeapon is the static profile of a specific named (possibly legendary)
// weapon: the base family it derives from, its enhancement, and its extra
// damage sources.
//
// Precondition: after loading, ID and BaseID are non-empty and Enhancement >= 0.
type NamedWeapon struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	BaseID      string                  `yaml:"base_id"`
	Enhancement int                     `yaml:"enhancement"`
	DamageDice  map[DamageType][]string `yaml:"damage"`
	VsRace      *VsRace                 `yaml:"vs_race"`
	Legend      *LegendDescriptor       `yaml:"legend"`

	// Damage is the parsed form of DamageDice, populated by Validate.
	Damage map[DamageType][]dice.DamageRoll `yaml:"-"`
}

func parseDamageMap(in map[DamageType]string) (map[DamageType]dice.DamageRoll, error) {
	out := make(map[DamageType]dice.DamageRoll, len(in))
	for t, expr := range in {
		if !ValidDamageType(t) {
			return nil, fmt.Errorf("unknown damage type %q", t)
		}
		roll, err := dice.ParseRoll(expr)
		if err != nil {
			return nil, fmt.Errorf("damage type %q: %w", t, err)
		}
		out[t] = roll
	}
	return out, nil
}

// Validate checks the NamedWeapon invariants and parses all dice expressions.
//
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid; on success w.Damage,
// w.VsRace.Damage, and w.Legend.Burst are populated.
func (w *NamedWeapon) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if w.BaseID == "" {
		errs = append(errs, errors.New("BaseID must not be empty"))
	}
	if w.Enhancement < 0 {
		errs = append(errs, fmt.Errorf("Enhancement must be >= 0, got %d", w.Enhancement))
	}

	w.Damage = make(map[DamageType][]dice.DamageRoll, len(w.DamageDice))
	for t, exprs := range w.DamageDice {
		if !ValidDamageType(t) {
			errs = append(errs, fmt.Errorf("unknown damage type %q", t))
			continue
		}
		for _, expr := range exprs {
			roll, err := dice.ParseRoll(expr)
			if err != nil {
				errs = append(errs, fmt.Errorf("damage type %q: %w", t, err))
				continue
			}
			w.Damage[t] = append(w.Damage[t], roll)
		}
	}

	if w.VsRace != nil {
		if w.VsRace.Race == "" {
			errs = append(errs, errors.New("VsRace.Race must not be empty"))
		}
		if w.VsRace.Enhancement < 0 {
			errs = append(errs, fmt.Errorf("VsRace.Enhancement must be >= 0, got %d", w.VsRace.Enhancement))
		}
		parsed, err := parseDamageMap(w.VsRace.DamageDice)
		if err != nil {
			errs = append(errs, fmt.Errorf("VsRace: %w", err))
		} else {
			w.VsRace.Damage = parsed
		}
	}

	if w.Legend != nil {
		if w.Legend.Chance < 0 || w.Legend.Chance > 1 {
			errs = append(errs, fmt.Errorf("Legend.Chance must be in [0, 1], got %v", w.Legend.Chance))
		}
		if w.Legend.DurationRounds < 0 {
			errs = append(errs, fmt.Errorf("Legend.DurationRounds must be >= 0, got %d", w.Legend.DurationRounds))
		}
		parsed, err := parseDamageMap(w.Legend.BurstDice)
		if err != nil {
			errs = append(errs, fmt.Errorf("Legend: %w", err))
		} else {
			w.Legend.Burst = parsed
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("named weapon validation failed: %v", errs)
	}
	return nil
}

// LoadNamedWeapons reads all *.yaml files from dir, parses each as a
// NamedWeapon, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid NamedWeapons or the first encountered error.
func LoadNamedWeapons(dir string) ([]*NamedWeapon, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadNamedWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []*NamedWeapon
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadNamedWeapons: cannot read file %q: %w", path, err)
		}
		var w NamedWeapon
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("LoadNamedWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("LoadNamedWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
	}
	return weapons, nil
}
