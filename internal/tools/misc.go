package tools

import (
	"github.com/talgya/hamlet/internal/world"
)

// AttackTool swings at a living, co-located target. Resolution happens in
// the engine's attack_attempt handler so all rolls share one source.
type AttackTool struct {
	Cost int
}

func (t *AttackTool) Name() string  { return "attack" }
func (t *AttackTool) TimeCost() int { return t.Cost }

func (t *AttackTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	targetID := p.String("target_id")
	if targetID == "" {
		return false
	}
	target, ok := w.Agents[targetID]
	if !ok || target.IsDead() {
		return false
	}
	attackerLoc := w.FindAgentLocation(actor.ID)
	return attackerLoc != "" && attackerLoc == w.FindAgentLocation(targetID)
}

func (t *AttackTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:      world.EventAttackAttempt,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{p.String("target_id")},
	}}
}

// LookTool describes the actor's surroundings. The resulting event is
// never perceived by other agents; its narration is not filtered by
// observer.
type LookTool struct{}

func (t *LookTool) Name() string  { return "look" }
func (t *LookTool) TimeCost() int { return 1 }

func (t *LookTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return true
}

func (t *LookTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	locID := w.FindAgentLocation(actor.ID)
	if locID == "" {
		return nil
	}
	static, err := w.LocationStatic(locID)
	if err != nil {
		return nil
	}
	state := w.LocationsState[locID]
	var itemNames []string
	for _, id := range state.Items {
		itemNames = append(itemNames, w.ItemName(id))
	}
	var occupantNames []string
	for _, id := range state.Occupants {
		if id == actor.ID {
			continue
		}
		if other, ok := w.Agents[id]; ok {
			occupantNames = append(occupantNames, other.Name)
		}
	}
	return []world.Event{{
		Kind:    world.EventDescribeLocation,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{
			"description": static.Description,
			"items":       itemNames,
			"occupants":   occupantNames,
		},
	}}
}

// StatsTool reports the actor's own condition.
type StatsTool struct{}

func (t *StatsTool) Name() string  { return "stats" }
func (t *StatsTool) TimeCost() int { return 1 }

func (t *StatsTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return true
}

func (t *StatsTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventStats,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{
			"hp":           actor.HP,
			"attributes":   actor.Attributes,
			"skills":       actor.Skills,
			"hunger_stage": string(actor.HungerStage),
		},
	}}
}

// WaitTool passes time. The engine charges params.ticks as the time cost.
type WaitTool struct{}

func (t *WaitTool) Name() string  { return "wait" }
func (t *WaitTool) TimeCost() int { return 1 }

func (t *WaitTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return p.Int("ticks", 1) >= 1
}

func (t *WaitTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventWait,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{"ticks": p.Int("ticks", 1)},
	}}
}

// RestTool spends time recovering one hit point per tick rested.
type RestTool struct{}

func (t *RestTool) Name() string  { return "rest" }
func (t *RestTool) TimeCost() int { return 1 }

func (t *RestTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return p.Int("ticks", 1) >= 1
}

func (t *RestTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	ticks := p.Int("ticks", 1)
	return []world.Event{{
		Kind:    world.EventRest,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{"ticks": ticks, "healed": ticks},
	}}
}

// ToggleStarvationTool flips the global hunger clock.
type ToggleStarvationTool struct{}

func (t *ToggleStarvationTool) Name() string  { return "toggle_starvation" }
func (t *ToggleStarvationTool) TimeCost() int { return 1 }

func (t *ToggleStarvationTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	_, ok := p.Bool("enabled")
	return ok
}

func (t *ToggleStarvationTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	enabled, _ := p.Bool("enabled")
	return []world.Event{{
		Kind:    world.EventToggleStarvation,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{"enabled": enabled},
	}}
}
