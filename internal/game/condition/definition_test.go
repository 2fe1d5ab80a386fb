package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
)

func TestConditionDef_Validate(t *testing.T) {
	assert.NoError(t, evasive().Validate())

	bad := &condition.ConditionDef{ID: "", Stat: "luck", DurationType: "forever", Cap: -1}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id must not be empty")
	assert.Contains(t, err.Error(), "luck")
	assert.Contains(t, err.Error(), "duration_type")
	assert.Contains(t, err.Error(), "cap")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := condition.NewRegistry()
	require.NoError(t, reg.Register(evasive()))
	require.NoError(t, reg.Register(stoneSkin()))

	def, ok := reg.Get("evasive")
	require.True(t, ok)
	assert.Equal(t, condition.StatDodge, def.Stat)
	_, ok = reg.Get("missing")
	assert.False(t, ok)
	assert.Len(t, reg.All(), 2)
}

func TestRegistry_RegisterRejectsInvalid(t *testing.T) {
	reg := condition.NewRegistry()
	assert.Error(t, reg.Register(&condition.ConditionDef{ID: "x", Stat: "nope", DurationType: "rounds"}))
	assert.Empty(t, reg.All())
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evasive.yaml"), []byte(`
id: evasive
name: Evasive
description: Harder to hit.
stat: dodge
duration_type: rounds
cap: 1
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	reg, err := condition.LoadDirectory(dir)
	require.NoError(t, err)
	def, ok := reg.Get("evasive")
	require.True(t, ok)
	assert.Equal(t, 1.0, def.Cap)
}

func TestLoadDirectory_UnknownField(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: x\nstat: dodge\nduration_type: rounds\nflavor: y\n"), 0644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: x\nstat: speed\nduration_type: rounds\n"), 0644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := condition.LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
