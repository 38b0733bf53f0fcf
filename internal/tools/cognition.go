package tools

import (
	"github.com/talgya/hamlet/internal/world"
)

var memoryStatuses = map[string]bool{
	world.MemoryActive: true, world.MemoryRecalled: true,
	world.MemoryArchived: true, world.MemoryConsolidated: true,
}

var goalStatuses = map[string]bool{
	world.GoalActive: true, world.GoalPending: true,
	world.GoalDone: true, world.GoalCancelled: true,
}

// ReasonTool requests social/cognitive state mutations through a strict
// allowlist: add_memory, update_memory_status, add_goal,
// update_goal_status, update_relationship. It can never touch hp,
// attributes, skills, inventory, slots, or placement.
type ReasonTool struct{}

func (t *ReasonTool) Name() string  { return "reason" }
func (t *ReasonTool) TimeCost() int { return 1 }

func (t *ReasonTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	desired := p.Map("desired_outcome")
	if desired == nil {
		return false
	}
	if data, ok := desired["add_memory"].(map[string]any); ok {
		_, isStr := data["text"].(string)
		return isStr
	}
	if data, ok := desired["update_memory_status"].(map[string]any); ok {
		match, isStr := data["match_text"].(string)
		status, _ := data["new_status"].(string)
		return isStr && match != "" && memoryStatuses[status]
	}
	if data, ok := desired["add_goal"].(map[string]any); ok {
		_, hasText := data["text"].(string)
		_, hasType := data["type"].(string)
		return hasText && hasType
	}
	if data, ok := desired["update_goal_status"].(map[string]any); ok {
		match, isStr := data["match_text"].(string)
		status, _ := data["new_status"].(string)
		return isStr && match != "" && goalStatuses[status]
	}
	if data, ok := desired["update_relationship"].(map[string]any); ok {
		target, hasTarget := data["target_id"].(string)
		_, hasStatus := data["new_status"].(string)
		return hasTarget && target != "" && hasStatus
	}
	return false
}

func (t *ReasonTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventReason,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{
			"thought":         p.String("thought"),
			"desired_outcome": p.Map("desired_outcome"),
		},
	}}
}

// ReflectTool consolidates recent experience: new (core) memories plus
// archive/consolidate markers matched by substring. Reflection takes
// longer than a normal action.
type ReflectTool struct{}

func (t *ReflectTool) Name() string  { return "reflect" }
func (t *ReflectTool) TimeCost() int { return 5 }

func (t *ReflectTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	outputs := p.Map("outputs")
	if outputs == nil {
		return false
	}
	for _, key := range []string{"new_core_memories", "new_memories", "archive_matches", "consolidate_matches"} {
		if v, present := outputs[key]; present {
			if _, ok := v.([]any); !ok {
				if _, ok := v.([]string); !ok {
					return false
				}
			}
		}
	}
	return true
}

func (t *ReflectTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventReflect,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{
			"thought": p.String("thought"),
			"outputs": p.Map("outputs"),
		},
	}}
}
