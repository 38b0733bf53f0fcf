package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/world"
)

// scriptedRoller replays fixed Intn results so dice outcomes are exact.
type scriptedRoller struct {
	values []int
	i      int
}

func (r *scriptedRoller) Intn(n int) int {
	if r.i >= len(r.values) {
		return 0
	}
	v := r.values[r.i]
	r.i++
	return v % n
}

func TestAbilityModifier(t *testing.T) {
	cases := map[int]int{
		10: 0,
		12: 1,
		15: 2,
		20: 5,
		9:  -1,
		8:  -1,
		7:  -2,
		1:  -5,
	}
	for score, want := range cases {
		assert.Equal(t, want, AbilityModifier(score), "score %d", score)
	}
}

func TestProficiencyBonus(t *testing.T) {
	assert.Equal(t, 1, ProficiencyBonus("novice"))
	assert.Equal(t, 2, ProficiencyBonus("proficient"))
	assert.Equal(t, 3, ProficiencyBonus("expert"))
	assert.Equal(t, 4, ProficiencyBonus("master"))
	assert.Equal(t, 0, ProficiencyBonus("grandmaster"))
	assert.Equal(t, 0, ProficiencyBonus(""))
}

func TestRollDice(t *testing.T) {
	// 2d6 with scripted rolls 3 and 5 (Intn returns 2 and 4).
	r := &scriptedRoller{values: []int{2, 4}}
	got, err := RollDice(r, "2d6")
	require.NoError(t, err)
	assert.Equal(t, 8, got)

	_, err = RollDice(r, "banana")
	assert.Error(t, err)
}

func TestMaxHP(t *testing.T) {
	assert.Equal(t, 20, MaxHP(&world.Agent{Attributes: map[string]int{"constitution": 10}}))
	assert.Equal(t, 1, MaxHP(&world.Agent{Attributes: map[string]int{"constitution": 0}}))
	// Constitution defaults to 10 when unset.
	assert.Equal(t, 20, MaxHP(&world.Agent{}))
}

func combatWorld() (*world.World, *world.Agent, *world.Agent) {
	w := world.New()
	attacker := &world.Agent{
		ID: "npc_sample", Name: "Sample", HP: 20,
		Attributes: map[string]int{"strength": 12, "dexterity": 10, "constitution": 10},
		Skills:     map[string]string{"unarmed_combat": "proficient"},
		Slots:      map[string]string{"main_hand": ""},
	}
	target := &world.Agent{
		ID: "npc_enemy", Name: "Enemy", HP: 20,
		Attributes: map[string]int{"strength": 10, "dexterity": 10, "constitution": 10},
		Slots:      map[string]string{"main_hand": "", "torso": ""},
	}
	w.Agents[attacker.ID] = attacker
	w.Agents[target.ID] = target
	return w, attacker, target
}

func TestComputeACWithArmourAndDex(t *testing.T) {
	w, _, target := combatWorld()
	assert.Equal(t, 10, ComputeAC(w, target))

	w.Blueprints["leather"] = &world.ItemBlueprint{ID: "leather", Name: "Leather", ArmourRating: 1}
	w.Items["item_leather_1"] = &world.ItemInstance{ID: "item_leather_1", BlueprintID: "leather", OwnerID: target.ID}
	target.Slots["torso"] = "item_leather_1"
	target.Attributes["dexterity"] = 14
	assert.Equal(t, 13, ComputeAC(w, target))
}

func TestWeaponFallsBackToUnarmed(t *testing.T) {
	w, attacker, _ := combatWorld()
	bp := Weapon(w, attacker)
	assert.Equal(t, "unarmed", bp.ID)
	assert.Equal(t, "1d4", bp.DamageDice)
	assert.Equal(t, "unarmed_combat", bp.SkillTag)
}

func TestResolveAttackUnarmedProficient(t *testing.T) {
	// d20=15 (Intn 14), damage die 3 (Intn 2). str 12 -> +1,
	// proficient unarmed -> +2: to_hit 18 vs AC 10, damage 3+1=4.
	w, attacker, target := combatWorld()
	r := &scriptedRoller{values: []int{14, 2}}

	res := ResolveAttack(w, r, attacker, target)
	assert.True(t, res.Hit)
	assert.Equal(t, 18, res.ToHit)
	assert.Equal(t, 10, res.TargetAC)
	assert.Equal(t, 4, res.Damage)
}

func TestResolveAttackMiss(t *testing.T) {
	// d20=1: to_hit 1+1+2=4 vs AC 10.
	w, attacker, target := combatWorld()
	r := &scriptedRoller{values: []int{0}}

	res := ResolveAttack(w, r, attacker, target)
	assert.False(t, res.Hit)
	assert.Equal(t, 4, res.ToHit)
	assert.Equal(t, 0, res.Damage)
}

func TestResolveAttackCriticalDoublesDice(t *testing.T) {
	// d20=20 crits: dice 4 and 2, +1 str = 7.
	w, attacker, target := combatWorld()
	r := &scriptedRoller{values: []int{19, 3, 1}}

	res := ResolveAttack(w, r, attacker, target)
	assert.True(t, res.Hit)
	assert.Equal(t, 7, res.Damage)
}

func TestResolveAttackFinesseUsesBetterOfStrDex(t *testing.T) {
	w, attacker, target := combatWorld()
	attacker.Attributes["strength"] = 8
	attacker.Attributes["dexterity"] = 16
	attacker.Skills["daggers"] = "novice"
	w.Blueprints["dagger"] = &world.ItemBlueprint{
		ID: "dagger", Name: "Dagger", DamageDice: "1d4", DamageType: "piercing",
		SkillTag: "daggers", Properties: []string{"finesse"},
	}
	w.Items["item_dagger_1"] = &world.ItemInstance{ID: "item_dagger_1", BlueprintID: "dagger", OwnerID: attacker.ID}
	attacker.Slots["main_hand"] = "item_dagger_1"

	// d20=10: dex +3, novice +1 -> 14 vs AC 10; damage die 2 +3 = 5.
	r := &scriptedRoller{values: []int{9, 1}}
	res := ResolveAttack(w, r, attacker, target)
	assert.True(t, res.Hit)
	assert.Equal(t, 14, res.ToHit)
	assert.Equal(t, 5, res.Damage)
}
