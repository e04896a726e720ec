// Package config provides Viper-based configuration loading for the DPS
// simulator.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
)

// AttackerConfig holds the attacking character's stats.
type AttackerConfig struct {
	// AttackBonus is the character's base attack bonus before enhancement excess.
	AttackBonus int `mapstructure:"attack_bonus"`
	// AttackBonusCap is the ceiling applied when enhancement excess raises AB.
	AttackBonusCap int `mapstructure:"attack_bonus_cap"`
	// StrengthMod is the strength modifier applied to damage.
	StrengthMod int `mapstructure:"strength_mod"`
	// Size is the character's size class.
	Size catalog.SizeClass `mapstructure:"size"`
	// CombatType is "melee" or "ranged"; informational plus validation.
	CombatType string `mapstructure:"combat_type"`
	// TwoHanded doubles the melee strength bonus.
	TwoHanded bool `mapstructure:"two_handed"`
	// EnhancementSetBonus is extra enhancement granted by equipment sets.
	EnhancementSetBonus int `mapstructure:"enhancement_set_bonus"`
	// MightyRating caps the strength bonus of non-thrown ranged weapons.
	MightyRating int `mapstructure:"mighty_rating"`
}

// FeatConfig holds the feat and fighting-style toggles.
type FeatConfig struct {
	Keen                 bool `mapstructure:"keen"`
	ImprovedCritical     bool `mapstructure:"improved_critical"`
	Weaponmaster         bool `mapstructure:"weaponmaster"`
	OverwhelmingCritical bool `mapstructure:"overwhelming_critical"`
	DevastatingCritical  bool `mapstructure:"devastating_critical"`
	// Ambidexterity and TwoWeaponFighting each remove 2 points of dual-wield penalty.
	Ambidexterity     bool `mapstructure:"ambidexterity"`
	TwoWeaponFighting bool `mapstructure:"two_weapon_fighting"`
}

// DefenderConfig holds the fixed defender's stats.
type DefenderConfig struct {
	// AC is the defender's armor class.
	AC int `mapstructure:"ac"`
	// Immunities maps damage type to a fractional modifier: positive reduces
	// damage, negative increases it (vulnerability).
	Immunities map[catalog.DamageType]float64 `mapstructure:"immunities"`
}

// StoppingConfig holds the simulation stopping criteria.
type StoppingConfig struct {
	// MaxRounds is the hard ceiling on simulated rounds.
	MaxRounds int `mapstructure:"max_rounds"`
	// DamageCapEnabled stops the run once cumulative damage reaches DamageCap.
	DamageCapEnabled bool `mapstructure:"damage_cap_enabled"`
	DamageCap        int  `mapstructure:"damage_cap"`
	// StdDevThreshold is the relative standard deviation convergence threshold.
	StdDevThreshold float64 `mapstructure:"stddev_threshold"`
	// RangeThreshold is the relative peak-to-trough convergence threshold.
	RangeThreshold float64 `mapstructure:"range_threshold"`
}

// ExtraDamage is one optional player-selected damage source. The reserved key
// "tenacious_blow" applies its flat value as pure damage on misses with
// double-sided weapons instead of on hits.
type ExtraDamage struct {
	Enabled     bool               `mapstructure:"enabled"`
	Type        catalog.DamageType `mapstructure:"type"`
	Roll        []int              `mapstructure:"roll"` // [dice, sides, flat]
	Description string             `mapstructure:"description"`
}

// SimConfig is the immutable snapshot of all tunable parameters for one
// simulation run. Constructed once per call and never mutated afterwards.
type SimConfig struct {
	Attacker AttackerConfig `mapstructure:"attacker"`
	Feats    FeatConfig     `mapstructure:"feats"`
	// Progression is the named attack-progression table key.
	Progression string `mapstructure:"progression"`
	// ShapeWeapon, when non-empty, substitutes this base weapon ID for the
	// resolved weapon's base form (shapeshift builds).
	ShapeWeapon string `mapstructure:"shape_weapon"`
	// RaceTargeted enables race-conditional (vs-race) damage sources.
	RaceTargeted bool                   `mapstructure:"race_targeted"`
	ExtraDamage  map[string]ExtraDamage `mapstructure:"extra_damage"`
	Defender     DefenderConfig         `mapstructure:"defender"`
	Stopping     StoppingConfig         `mapstructure:"stopping"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Sim     SimConfig     `mapstructure:"sim"`
	Logging LoggingConfig `mapstructure:"logging"`
	// Weapons lists the named weapon IDs to simulate, in order.
	Weapons []string `mapstructure:"weapons"`
}

// Validate checks all configuration invariants.
//
// Postcondition: returns nil if the configuration is valid, or an error
// describing all violations. Validate never mutates the receiver.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Sim.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the simulation parameter invariants.
//
// Postcondition: returns nil iff all fields are valid. Validate never mutates
// the receiver, so a shared SimConfig may back concurrent Simulate calls.
func (s *SimConfig) Validate() error {
	var errs []string

	if s.Attacker.AttackBonusCap < s.Attacker.AttackBonus {
		errs = append(errs, fmt.Sprintf("attacker.attack_bonus_cap must be >= attack_bonus, got %d < %d",
			s.Attacker.AttackBonusCap, s.Attacker.AttackBonus))
	}
	if !catalog.ValidSize(s.Attacker.Size) {
		errs = append(errs, fmt.Sprintf("attacker.size must be one of [tiny, small, medium, large], got %q", s.Attacker.Size))
	}
	validCombat := map[string]bool{"melee": true, "ranged": true}
	if !validCombat[s.Attacker.CombatType] {
		errs = append(errs, fmt.Sprintf("attacker.combat_type must be one of [melee, ranged], got %q", s.Attacker.CombatType))
	}
	if s.Attacker.MightyRating < 0 {
		errs = append(errs, fmt.Sprintf("attacker.mighty_rating must be >= 0, got %d", s.Attacker.MightyRating))
	}
	if s.Attacker.EnhancementSetBonus < 0 {
		errs = append(errs, fmt.Sprintf("attacker.enhancement_set_bonus must be >= 0, got %d", s.Attacker.EnhancementSetBonus))
	}
	if s.Progression == "" {
		errs = append(errs, "progression must not be empty")
	}

	if s.Defender.AC < 1 {
		errs = append(errs, fmt.Sprintf("defender.ac must be >= 1, got %d", s.Defender.AC))
	}
	for t := range s.Defender.Immunities {
		if !catalog.ValidDamageType(t) {
			errs = append(errs, fmt.Sprintf("defender.immunities: unknown damage type %q", t))
		}
	}

	for key, extra := range s.ExtraDamage {
		if !catalog.ValidDamageType(extra.Type) {
			errs = append(errs, fmt.Sprintf("extra_damage.%s: unknown damage type %q", key, extra.Type))
			continue
		}
		if _, err := dice.FromList(extra.Roll); err != nil {
			errs = append(errs, fmt.Sprintf("extra_damage.%s: %v", key, err))
		}
	}

	if s.Stopping.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("stopping.max_rounds must be >= 1, got %d", s.Stopping.MaxRounds))
	}
	if s.Stopping.DamageCapEnabled && s.Stopping.DamageCap < 1 {
		errs = append(errs, fmt.Sprintf("stopping.damage_cap must be >= 1 when enabled, got %d", s.Stopping.DamageCap))
	}
	if s.Stopping.StdDevThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("stopping.stddev_threshold must be > 0, got %v", s.Stopping.StdDevThreshold))
	}
	if s.Stopping.RangeThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("stopping.range_threshold must be > 0, got %v", s.Stopping.RangeThreshold))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DPSIM_ prefix
	v.SetEnvPrefix("DPSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a valid SimConfig populated with the hard-coded defaults
// that caller-supplied values are merged over.
//
// Postcondition: Defaults().Validate() == nil.
func Defaults() SimConfig {
	return SimConfig{
		Attacker: AttackerConfig{
			AttackBonus:    48,
			AttackBonusCap: 53,
			StrengthMod:    11,
			Size:           catalog.SizeMedium,
			CombatType:     "melee",
			MightyRating:   5,
		},
		Feats: FeatConfig{
			Ambidexterity:     true,
			TwoWeaponFighting: true,
		},
		Progression: "onhand_hasted",
		Defender: DefenderConfig{
			AC:         60,
			Immunities: map[catalog.DamageType]float64{},
		},
		Stopping: StoppingConfig{
			MaxRounds:       20000,
			StdDevThreshold: 0.001,
			RangeThreshold:  0.005,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("sim.attacker.attack_bonus", d.Attacker.AttackBonus)
	v.SetDefault("sim.attacker.attack_bonus_cap", d.Attacker.AttackBonusCap)
	v.SetDefault("sim.attacker.strength_mod", d.Attacker.StrengthMod)
	v.SetDefault("sim.attacker.size", string(d.Attacker.Size))
	v.SetDefault("sim.attacker.combat_type", d.Attacker.CombatType)
	v.SetDefault("sim.attacker.two_handed", false)
	v.SetDefault("sim.attacker.enhancement_set_bonus", 0)
	v.SetDefault("sim.attacker.mighty_rating", d.Attacker.MightyRating)

	v.SetDefault("sim.feats.keen", false)
	v.SetDefault("sim.feats.improved_critical", false)
	v.SetDefault("sim.feats.weaponmaster", false)
	v.SetDefault("sim.feats.overwhelming_critical", false)
	v.SetDefault("sim.feats.devastating_critical", false)
	v.SetDefault("sim.feats.ambidexterity", true)
	v.SetDefault("sim.feats.two_weapon_fighting", true)

	v.SetDefault("sim.progression", d.Progression)
	v.SetDefault("sim.race_targeted", false)

	v.SetDefault("sim.defender.ac", d.Defender.AC)

	v.SetDefault("sim.stopping.max_rounds", d.Stopping.MaxRounds)
	v.SetDefault("sim.stopping.damage_cap_enabled", false)
	v.SetDefault("sim.stopping.damage_cap", 0)
	v.SetDefault("sim.stopping.stddev_threshold", d.Stopping.StdDevThreshold)
	v.SetDefault("sim.stopping.range_threshold", d.Stopping.RangeThreshold)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
