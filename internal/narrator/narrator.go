// Package narrator turns events into plain text. Rendering is
// observer-agnostic and never mutates state; front ends decide who sees
// which line.
package narrator

import (
	"fmt"
	"strings"

	"github.com/talgya/hamlet/internal/combat"
	"github.com/talgya/hamlet/internal/world"
)

// Narrator renders events against a world for name resolution.
type Narrator struct {
	World *world.World
}

// New returns a narrator over the given world.
func New(w *world.World) *Narrator {
	return &Narrator{World: w}
}

// Render returns the human-readable line for an event, or "" for kinds
// with no narration.
func (n *Narrator) Render(e world.Event) string {
	switch e.Kind {
	case world.EventDescribeLocation:
		return n.describeLocation(e)
	case world.EventMove:
		return fmt.Sprintf("%s moves to %s.", n.agentName(e.ActorID), n.locationLabel(e.Target()))
	case world.EventGrab:
		return fmt.Sprintf("%s picks up %s.", n.agentName(e.ActorID), n.World.ItemName(e.Target()))
	case world.EventDrop:
		return fmt.Sprintf("%s drops %s.", n.agentName(e.ActorID), n.World.ItemName(e.Target()))
	case world.EventEat:
		item := e.Payload.String("item_name")
		if item == "" {
			item = "something"
		}
		return fmt.Sprintf("%s eats %s.", n.agentName(e.ActorID), item)
	case world.EventAttackAttempt:
		weapon := combat.Weapon(n.World, n.mustAgent(e.ActorID))
		return fmt.Sprintf("%s attacks %s with %s.", n.agentName(e.ActorID), n.agentName(e.Target()), weapon.Name)
	case world.EventAttackHit:
		return fmt.Sprintf("%s hits %s (roll %d vs AC %d)",
			n.agentName(e.ActorID), n.agentName(e.Target()),
			e.Payload.Int("to_hit"), e.Payload.Int("target_ac"))
	case world.EventAttackMissed:
		return fmt.Sprintf("%s misses %s (roll %d vs AC %d)",
			n.agentName(e.ActorID), n.agentName(e.Target()),
			e.Payload.Int("to_hit"), e.Payload.Int("target_ac"))
	case world.EventDamageApplied:
		hp := 0
		if a, ok := n.World.Agents[e.Target()]; ok {
			hp = a.HP
		}
		return fmt.Sprintf("%s takes %d %s damage (HP: %d)",
			n.agentName(e.Target()), e.Payload.Int("amount"), e.Payload.String("damage_type"), hp)
	case world.EventTalk:
		return n.talk(e)
	case world.EventScream:
		return fmt.Sprintf("%s screams: %s", n.agentName(e.ActorID), e.Payload.String("content"))
	case world.EventTalkLoud:
		return fmt.Sprintf("%s shouts: %s", n.agentName(e.ActorID), e.Payload.String("content"))
	case world.EventInventory:
		items := e.Payload.Strings("items")
		if len(items) == 0 {
			return fmt.Sprintf("%s carries nothing.", n.agentName(e.ActorID))
		}
		return fmt.Sprintf("%s carries: %s", n.agentName(e.ActorID), strings.Join(items, ", "))
	case world.EventStats:
		return n.stats(e)
	case world.EventEquip:
		return fmt.Sprintf("%s equips %s to %s.",
			n.agentName(e.ActorID), n.World.ItemName(e.Target()), e.Payload.String("slot"))
	case world.EventUnequip:
		return fmt.Sprintf("%s removes %s from %s.",
			n.agentName(e.ActorID), n.World.ItemName(e.Target()), e.Payload.String("slot"))
	case world.EventAnalyze:
		return n.analyze(e)
	case world.EventGive:
		itemID := e.Payload.String("item_id")
		recipient := e.Payload.String("recipient_id")
		if itemID == "" || recipient == "" {
			return ""
		}
		return fmt.Sprintf("%s gives %s to %s.",
			n.agentName(e.ActorID), n.World.ItemName(itemID), n.agentName(recipient))
	case world.EventToggleStarvation:
		if e.Payload.Bool("enabled", true) {
			return "Starvation enabled."
		}
		return "Starvation disabled."
	case world.EventOpenConnection:
		return fmt.Sprintf("%s opens the way to %s.", n.agentName(e.ActorID), n.locationLabel(e.Target()))
	case world.EventCloseConnection:
		return fmt.Sprintf("%s closes the way to %s.", n.agentName(e.ActorID), n.locationLabel(e.Target()))
	case world.EventNPCDied:
		return fmt.Sprintf("%s dies.", n.agentName(e.ActorID))
	case world.EventWait:
		ticks := e.Payload.Int("ticks")
		if ticks <= 1 {
			return fmt.Sprintf("%s waits.", n.agentName(e.ActorID))
		}
		return fmt.Sprintf("%s waits for %d ticks.", n.agentName(e.ActorID), ticks)
	case world.EventRest:
		ticks := e.Payload.Int("ticks")
		healed := e.Payload.Int("healed")
		if ticks <= 1 {
			return fmt.Sprintf("%s rests and recovers %d HP.", n.agentName(e.ActorID), healed)
		}
		return fmt.Sprintf("%s rests for %d ticks and recovers %d HP.", n.agentName(e.ActorID), ticks, healed)
	}
	return ""
}

func (n *Narrator) describeLocation(e world.Event) string {
	parts := []string{e.Payload.String("description")}
	if occupants := e.Payload.Strings("occupants"); len(occupants) > 0 {
		parts = append(parts, "You see: "+strings.Join(occupants, ", "))
	}
	if items := e.Payload.Strings("items"); len(items) > 0 {
		parts = append(parts, "Items here: "+strings.Join(items, ", "))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (n *Narrator) talk(e world.Event) string {
	content := e.Payload.String("content")
	recipient := e.Payload.String("recipient_id")
	if recipient == "" {
		recipient = e.Target()
	}
	if recipient != "" {
		return fmt.Sprintf("%s to %s: %s", n.agentName(e.ActorID), n.agentName(recipient), content)
	}
	if e.Payload.Bool("interject", false) && e.Payload.String("conversation_id") != "" {
		return fmt.Sprintf("%s interjects: %s", n.agentName(e.ActorID), content)
	}
	return fmt.Sprintf("%s says: %s", n.agentName(e.ActorID), content)
}

func (n *Narrator) stats(e world.Event) string {
	parts := []string{fmt.Sprintf("HP: %d", e.Payload.Int("hp"))}
	if attrs, ok := e.Payload["attributes"].(map[string]int); ok && len(attrs) > 0 {
		parts = append(parts, "Attributes: "+formatIntMap(attrs))
	}
	if skills, ok := e.Payload["skills"].(map[string]string); ok && len(skills) > 0 {
		parts = append(parts, "Skills: "+formatStringMap(skills))
	}
	if hunger := e.Payload.String("hunger_stage"); hunger != "" {
		parts = append(parts, "Hunger: "+hunger)
	}
	return fmt.Sprintf("%s stats - %s", n.agentName(e.ActorID), strings.Join(parts, "; "))
}

func (n *Narrator) analyze(e world.Event) string {
	parts := []string{fmt.Sprintf("%s (weight %d)", e.Payload.String("name"), e.Payload.Int("weight"))}
	if dice := e.Payload.String("damage_dice"); dice != "" {
		parts = append(parts, fmt.Sprintf("Damage: %s %s", dice, e.Payload.String("damage_type")))
	}
	if armour := e.Payload.Int("armour_rating"); armour != 0 {
		parts = append(parts, fmt.Sprintf("Armour rating: %d", armour))
	}
	if props := e.Payload.Strings("properties"); len(props) > 0 {
		parts = append(parts, "Properties: "+strings.Join(props, ", "))
	}
	return strings.Join(parts, " ")
}

func (n *Narrator) agentName(id string) string {
	if a, ok := n.World.Agents[id]; ok {
		return a.Name
	}
	return id
}

func (n *Narrator) mustAgent(id string) *world.Agent {
	if a, ok := n.World.Agents[id]; ok {
		return a
	}
	return &world.Agent{ID: id, Name: id}
}

// locationLabel prefers the first sentence of the description, shortened.
func (n *Narrator) locationLabel(id string) string {
	static, ok := n.World.LocationsStatic[id]
	if !ok {
		return id
	}
	desc := static.Description
	if desc == "" {
		return id
	}
	label := strings.TrimSpace(strings.SplitN(desc, ".", 2)[0])
	if len(label) > 60 {
		label = label[:60]
	}
	if label == "" {
		return id
	}
	return label
}

func formatIntMap(m map[string]int) string {
	keys := sortedKeysInt(m)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func formatStringMap(m map[string]string) string {
	keys := sortedKeysString(m)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s (%s)", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
