package tools

import (
	"github.com/talgya/hamlet/internal/world"
)

// TalkTool speaks to the room, optionally addressing a co-located agent.
// The conversation state machine interprets the resulting talk event.
type TalkTool struct{}

func (t *TalkTool) Name() string  { return "talk" }
func (t *TalkTool) TimeCost() int { return 1 }

func (t *TalkTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	if p.String("content") == "" {
		return false
	}
	target := p.String("target_id")
	if target == "" {
		return true
	}
	if _, ok := w.Agents[target]; !ok {
		return false
	}
	return w.FindAgentLocation(actor.ID) == w.FindAgentLocation(target)
}

func (t *TalkTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	ev := world.Event{
		Kind:    world.EventTalk,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{"content": p.String("content")},
	}
	if target := p.String("target_id"); target != "" {
		ev.TargetIDs = []string{target}
		ev.Payload["recipient_id"] = target
	}
	return []world.Event{ev}
}

// TalkLoudTool shouts: heard by neighbors whose edge is open.
type TalkLoudTool struct{}

func (t *TalkLoudTool) Name() string  { return "talk_loud" }
func (t *TalkLoudTool) TimeCost() int { return 1 }

func (t *TalkLoudTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return p.String("content") != ""
}

func (t *TalkLoudTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventTalkLoud,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{"content": p.String("content")},
	}}
}

// ScreamTool screams: heard by all neighbors regardless of edge status.
type ScreamTool struct{}

func (t *ScreamTool) Name() string  { return "scream" }
func (t *ScreamTool) TimeCost() int { return 1 }

func (t *ScreamTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return p.String("content") != ""
}

func (t *ScreamTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventScream,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{"content": p.String("content")},
	}}
}

// InterjectTool injects a line into an ongoing conversation the actor is
// not yet part of. Only the structure is validated here; co-location with
// the conversation is enforced by the simulator.
type InterjectTool struct{}

func (t *InterjectTool) Name() string  { return "interject" }
func (t *InterjectTool) TimeCost() int { return 1 }

func (t *InterjectTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return p.String("conversation_id") != "" && p.String("content") != ""
}

func (t *InterjectTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventTalk,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{
			"content":         p.String("content"),
			"conversation_id": p.String("conversation_id"),
			"interject":       true,
		},
	}}
}

// LeaveConversationTool exits the actor's active conversation. Always valid.
type LeaveConversationTool struct{}

func (t *LeaveConversationTool) Name() string  { return "leave_conversation" }
func (t *LeaveConversationTool) TimeCost() int { return 1 }

func (t *LeaveConversationTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return true
}

func (t *LeaveConversationTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:    world.EventLeaveConvo,
		Tick:    tick,
		ActorID: actor.ID,
	}}
}
