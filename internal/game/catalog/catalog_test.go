package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadBaseWeapons_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scimitar.yaml"), `
id: scimitar
name: "Scimitar"
damage_dice: "1d6"
threat_floor: 18
crit_multiplier: 2
size: medium
`)
	weapons, err := catalog.LoadBaseWeapons(dir)
	require.NoError(t, err)
	require.Len(t, weapons, 1)
	w := weapons[0]
	assert.Equal(t, "scimitar", w.ID)
	assert.Equal(t, 18, w.ThreatFloor)
	assert.Equal(t, 2, w.CritMultiplier)
	assert.Equal(t, catalog.SizeMedium, w.Size)
	assert.Equal(t, dice.DamageRoll{Dice: 1, Sides: 6}, w.Damage, "DamageDice must be parsed into Damage")
}

func TestLoadBaseWeapons_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
id: bad
name: "Bad"
damage_dice: "1d6"
threat_floor: 25
crit_multiplier: 1
size: gigantic
`)
	_, err := catalog.LoadBaseWeapons(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ThreatFloor")
}

func TestLoadNamedWeapons_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stormbrand.yaml"), `
id: stormbrand
name: "Stormbrand"
base_id: greatsword
enhancement: 5
damage:
  electrical: ["1d6", "1d4"]
vs_race:
  race: undead
  enhancement: 9
  damage:
    positive: "2d6"
legend:
  effect: "lightning surge"
  chance: 0.05
  duration_rounds: 2
  burst:
    electrical: "10d6"
`)
	weapons, err := catalog.LoadNamedWeapons(dir)
	require.NoError(t, err)
	require.Len(t, weapons, 1)
	w := weapons[0]
	assert.Equal(t, "stormbrand", w.ID)
	assert.Equal(t, "greatsword", w.BaseID)
	assert.Equal(t, 5, w.Enhancement)
	require.Len(t, w.Damage[catalog.DamageElectrical], 2)
	assert.Equal(t, dice.DamageRoll{Dice: 1, Sides: 6}, w.Damage[catalog.DamageElectrical][0])

	require.NotNil(t, w.VsRace)
	assert.Equal(t, "undead", w.VsRace.Race)
	assert.Equal(t, 9, w.VsRace.Enhancement)
	assert.Equal(t, dice.DamageRoll{Dice: 2, Sides: 6}, w.VsRace.Damage[catalog.DamagePositive])

	require.NotNil(t, w.Legend)
	assert.Equal(t, 0.05, w.Legend.Chance)
	assert.Equal(t, 2, w.Legend.DurationRounds)
	assert.Equal(t, dice.DamageRoll{Dice: 10, Sides: 6}, w.Legend.Burst[catalog.DamageElectrical])
}

func TestLoadNamedWeapons_RejectsUnknownDamageType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
id: bad
name: "Bad"
base_id: longsword
damage:
  radiant: ["1d6"]
`)
	_, err := catalog.LoadNamedWeapons(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown damage type")
}

func TestLoad_ResolvesBaseReferences(t *testing.T) {
	baseDir := t.TempDir()
	namedDir := t.TempDir()
	writeFile(t, filepath.Join(baseDir, "longsword.yaml"), `
id: longsword
name: "Longsword"
damage_dice: "1d8"
threat_floor: 19
crit_multiplier: 2
size: medium
`)
	writeFile(t, filepath.Join(namedDir, "named.yaml"), `
id: kings_blade
name: "King's Blade"
base_id: longsword
enhancement: 3
`)
	reg, err := catalog.Load(baseDir, namedDir)
	require.NoError(t, err)

	_, ok := reg.Base("longsword")
	assert.True(t, ok)
	named, ok := reg.Named("kings_blade")
	require.True(t, ok)
	assert.Equal(t, "longsword", named.BaseID)
	assert.ElementsMatch(t, []string{"kings_blade"}, reg.NamedIDs())
}

func TestLoad_FailsOnDanglingBaseID(t *testing.T) {
	baseDir := t.TempDir()
	namedDir := t.TempDir()
	writeFile(t, filepath.Join(namedDir, "named.yaml"), `
id: orphan
name: "Orphan"
base_id: no_such_base
`)
	_, err := catalog.Load(baseDir, namedDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown base weapon")
}

func TestNonStacking(t *testing.T) {
	assert.True(t, catalog.NonStacking(catalog.DamageSneak))
	assert.True(t, catalog.NonStacking(catalog.DamageDeath))
	assert.True(t, catalog.NonStacking(catalog.DamageMassiveCrit))
	assert.True(t, catalog.NonStacking(catalog.DamageOnHitFire))
	assert.False(t, catalog.NonStacking(catalog.DamagePhysical))
	assert.False(t, catalog.NonStacking(catalog.DamageFire))
}

func TestSizeClass_Rank(t *testing.T) {
	assert.Less(t, catalog.SizeTiny.Rank(), catalog.SizeSmall.Rank())
	assert.Less(t, catalog.SizeSmall.Rank(), catalog.SizeMedium.Rank())
	assert.Less(t, catalog.SizeMedium.Rank(), catalog.SizeLarge.Rank())
}
