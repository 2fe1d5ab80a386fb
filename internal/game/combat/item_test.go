package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

func intp(n int) *int { return &n }

func potionDef() *combat.ItemDef {
	return &combat.ItemDef{ID: "small_potion", Name: "Small Potion", Effect: combat.EffectHeal, Target: "any", Amount: 50, Consumable: true}
}

func mustItem(t *testing.T, def *combat.ItemDef) *combat.Item {
	t.Helper()
	it, err := combat.NewItem(def, nil)
	require.NoError(t, err)
	return it
}

func TestItemDef_Validate(t *testing.T) {
	assert.NoError(t, potionDef().Validate())
	bad := []*combat.ItemDef{
		{Name: "X", Effect: "heal", Target: "any", Amount: 1},
		{ID: "x", Name: "X", Effect: "heal", Target: "nobody", Amount: 1},
		{ID: "x", Name: "X", Effect: "teleport", Target: "self"},
		{ID: "x", Name: "X", Effect: "heal", Target: "self"},
		{ID: "x", Name: "X", Effect: "bonus", Target: "self", Bonus: 1},
		{ID: "x", Name: "X", Effect: "resource", Target: "self", Amount: 5, Resource: "ki"},
		{ID: "x", Name: "X", Effect: "heal", Target: "self", Amount: 5, Charges: intp(0)},
	}
	for i, def := range bad {
		assert.Error(t, def.Validate(), "case %d", i)
	}
}

func TestNewItem_BonusNeedsCondition(t *testing.T) {
	def := &combat.ItemDef{ID: "tonic", Name: "Tonic", Effect: combat.EffectBonus, Target: "self", Condition: "evasive", Bonus: 0.5, Duration: 2, Consumable: true}
	_, err := combat.NewItem(def, nil)
	assert.Error(t, err)
	it, err := combat.NewItem(def, evasiveDef())
	require.NoError(t, err)
	assert.NotEmpty(t, it.ID())
}

func TestUseItem_HealsAndRemovesSingleUse(t *testing.T) {
	user := dummy(t, "User", 100, 0, 0)
	user.TakeDamage(70, combat.CategoryPhysical)
	require.NoError(t, user.Inventory().Add(mustItem(t, potionDef())))

	res, err := user.UseItem("small potion", user)
	require.NoError(t, err)
	assert.Equal(t, 80, user.Health())
	assert.Equal(t, 0, user.Inventory().Len())
	assert.NotEmpty(t, res.Events)
}

func TestUseItem_ChargesCountDown(t *testing.T) {
	def := potionDef()
	def.Charges = intp(2)
	it := mustItem(t, def)
	user := dummy(t, "User", 100, 0, 0)
	require.NoError(t, user.Inventory().Add(it))

	_, err := user.UseItem(it.ID(), user)
	require.NoError(t, err)
	left, counted := it.Charges()
	assert.True(t, counted)
	assert.Equal(t, 1, left)
	assert.Equal(t, 1, user.Inventory().Len())

	_, err = user.UseItem(it.ID(), user)
	require.NoError(t, err)
	assert.Equal(t, 0, user.Inventory().Len())
	assert.Equal(t, 2, *def.Charges, "instances do not share charges with the definition")
}

func TestUseItem_ReusableNonConsumable(t *testing.T) {
	def := potionDef()
	def.Consumable = false
	user := dummy(t, "User", 100, 0, 0)
	require.NoError(t, user.Inventory().Add(mustItem(t, def)))
	for i := 0; i < 3; i++ {
		_, err := user.UseItem("Small Potion", user)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, user.Inventory().Len())
}

func TestUseItem_Failures(t *testing.T) {
	user := caster(t, resource.KindMana, 50)
	dead := dummy(t, "Dead", 1, 0, 0)
	dead.TakeDamage(5, combat.CategoryPhysical)
	require.NoError(t, user.Inventory().Add(mustItem(t, potionDef())))
	ether := &combat.ItemDef{ID: "ether", Name: "Ether", Effect: combat.EffectResource, Target: "self", Amount: 10, Resource: "rage", Consumable: true}
	require.NoError(t, user.Inventory().Add(mustItem(t, ether)))

	_, err := user.UseItem("elixir", user)
	assert.ErrorIs(t, err, combat.ErrItemNotFound)
	_, err = user.UseItem("small potion", dead)
	assert.ErrorIs(t, err, combat.ErrTargetDefeated)
	_, err = user.UseItem("small potion", nil)
	assert.ErrorIs(t, err, combat.ErrNoTarget)
	_, err = user.UseItem("ether", dead)
	assert.ErrorIs(t, err, combat.ErrInvalidTarget)
	_, err = user.UseItem("ether", nil)
	assert.ErrorIs(t, err, combat.ErrWrongResource)
	_, err = dead.UseItem("small potion", user)
	assert.ErrorIs(t, err, combat.ErrCasterDefeated)

	assert.Equal(t, 2, user.Inventory().Len(), "failed uses keep the item")
}

func TestUseItem_ResourceAndBonus(t *testing.T) {
	user := caster(t, resource.KindMana, 100)
	require.True(t, user.TryConsume(resource.KindMana, 60))
	manaPotion := &combat.ItemDef{ID: "minor_mana", Name: "Minor Mana Potion", Effect: combat.EffectResource, Target: "self", Amount: 30, Resource: "mana", Consumable: true}
	require.NoError(t, user.Inventory().Add(mustItem(t, manaPotion)))
	tonicDef := &combat.ItemDef{ID: "tonic", Name: "Evasion Tonic", Effect: combat.EffectBonus, Target: "self", Condition: "evasive", Bonus: 0.5, Duration: 2, Consumable: true}
	tonic, err := combat.NewItem(tonicDef, evasiveDef())
	require.NoError(t, err)
	require.NoError(t, user.Inventory().Add(tonic))

	_, err = user.UseItem("minor mana potion", nil)
	require.NoError(t, err)
	assert.Equal(t, 70, user.Resource())

	_, err = user.UseItem("evasion tonic", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, user.Dodge())
	assert.Equal(t, 0, user.Inventory().Len())
}

func TestItem_CanTarget(t *testing.T) {
	user := dummy(t, "User", 10, 0, 0)
	ally := dummy(t, "Ally", 10, 0, 0)
	foe := dummy(t, "Foe", 10, 0, 0)
	allies := []*combat.Character{user, ally}

	policies := map[string][3]bool{
		"self":   {true, false, false},
		"friend": {true, true, false},
		"enemy":  {false, false, true},
		"any":    {true, true, true},
	}
	for policy, want := range policies {
		def := potionDef()
		def.Target = policy
		it := mustItem(t, def)
		assert.Equal(t, want[0], it.CanTarget(user, user, allies), "%s on self", policy)
		assert.Equal(t, want[1], it.CanTarget(user, ally, allies), "%s on ally", policy)
		assert.Equal(t, want[2], it.CanTarget(user, foe, allies), "%s on foe", policy)
		assert.False(t, it.CanTarget(user, nil, allies))
	}
}

func TestInventory_CapacityAndFind(t *testing.T) {
	inv := combat.NewInventory(1)
	first := mustItem(t, potionDef())
	require.NoError(t, inv.Add(first))
	assert.ErrorIs(t, inv.Add(mustItem(t, potionDef())), combat.ErrInventoryFull)

	got, ok := inv.Find(first.ID())
	require.True(t, ok)
	assert.Equal(t, first, got)
	_, ok = inv.Find("SMALL POTION")
	assert.True(t, ok)

	assert.True(t, inv.Remove(first.ID()))
	assert.False(t, inv.Remove(first.ID()))
	assert.Empty(t, inv.Items())
}

func TestNewCharacter_DefaultInventory(t *testing.T) {
	c := dummy(t, "Packer", 10, 0, 0)
	assert.Equal(t, combat.DefaultInventorySlots, c.Inventory().Capacity())
}
