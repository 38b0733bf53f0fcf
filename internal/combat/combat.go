// Package combat holds the pure attack-resolution rules. Nothing here
// mutates world state; the engine applies the resulting damage events.
package combat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/world"
)

// Proficiency bonuses by skill level. Unknown levels contribute nothing.
var proficiencyMap = map[string]int{
	"novice":     1,
	"proficient": 2,
	"expert":     3,
	"master":     4,
}

// MainHandSlot is the equipment slot consulted for the wielded weapon.
const MainHandSlot = "main_hand"

// Unarmed is the fallback weapon used when nothing is wielded.
var Unarmed = world.ItemBlueprint{
	ID:         "unarmed",
	Name:       "Unarmed",
	DamageDice: "1d4",
	DamageType: "bludgeoning",
	SkillTag:   "unarmed_combat",
}

// AbilityModifier maps an ability score to its modifier: floor((score-10)/2).
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		// floor division for negatives
		return -((-d + 1) / 2)
	}
	return d / 2
}

// ProficiencyBonus maps a proficiency level to its bonus.
func ProficiencyBonus(level string) int {
	return proficiencyMap[level]
}

// MaxHP derives the hit-point ceiling from constitution, never below 1.
func MaxHP(actor *world.Agent) int {
	hp := actor.Attribute("constitution") * 2
	if hp < 1 {
		hp = 1
	}
	return hp
}

// RollDice rolls a dice spec like "1d4" or "2d6" against the source.
func RollDice(r entropy.Roller, spec string) (int, error) {
	parts := strings.SplitN(strings.ToLower(spec), "d", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad dice spec %q", spec)
	}
	num, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad dice spec %q: %w", spec, err)
	}
	die, err := strconv.Atoi(parts[1])
	if err != nil || die < 1 {
		return 0, fmt.Errorf("bad dice spec %q", spec)
	}
	total := 0
	for i := 0; i < num; i++ {
		total += r.Intn(die) + 1
	}
	return total, nil
}

// Weapon returns the blueprint wielded in the actor's main hand, or the
// unarmed fallback.
func Weapon(w *world.World, actor *world.Agent) *world.ItemBlueprint {
	instID := actor.Slots[MainHandSlot]
	if instID != "" {
		if inst, ok := w.Items[instID]; ok {
			if bp, ok := w.Blueprints[inst.BlueprintID]; ok {
				return bp
			}
		}
	}
	return &Unarmed
}

// ComputeAC is 10 plus equipped armour ratings plus the dexterity modifier.
func ComputeAC(w *world.World, actor *world.Agent) int {
	ac := 10
	for _, instID := range actor.Slots {
		if instID == "" {
			continue
		}
		if inst, ok := w.Items[instID]; ok {
			if bp, ok := w.Blueprints[inst.BlueprintID]; ok {
				ac += bp.ArmourRating
			}
		}
	}
	return ac + AbilityModifier(actor.Attribute("dexterity"))
}

// AttackResult carries the outcome of one attack roll.
type AttackResult struct {
	Hit      bool `json:"hit"`
	Damage   int  `json:"damage"`
	ToHit    int  `json:"to_hit"`
	TargetAC int  `json:"target_ac"`
}

// ResolveAttack rolls 1d20 against the target's AC. Finesse weapons use
// the better of strength and dexterity; a natural 20 doubles the weapon
// dice. Rolls draw from the engine's single seeded source.
func ResolveAttack(w *world.World, r entropy.Roller, attacker, target *world.Agent) AttackResult {
	weapon := Weapon(w, attacker)
	strMod := AbilityModifier(attacker.Attribute("strength"))
	dexMod := AbilityModifier(attacker.Attribute("dexterity"))
	attrMod := strMod
	if weapon.HasProperty("finesse") && dexMod > strMod {
		attrMod = dexMod
	}
	profBonus := ProficiencyBonus(attacker.Skills[weapon.SkillTag])

	d20 := r.Intn(20) + 1
	toHit := d20 + attrMod + profBonus
	targetAC := ComputeAC(w, target)
	res := AttackResult{ToHit: toHit, TargetAC: targetAC}
	if toHit < targetAC {
		return res
	}
	res.Hit = true
	dmg, err := RollDice(r, weapon.DamageDice)
	if err != nil {
		dmg = 1
	}
	if d20 == 20 {
		crit, err := RollDice(r, weapon.DamageDice)
		if err == nil {
			dmg += crit
		}
	}
	res.Damage = dmg + attrMod
	return res
}
