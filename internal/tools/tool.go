// Package tools defines the verb surface of the simulation: one tool per
// action, each pairing an intent validator with an event generator. A
// registry maps tool names to values; there is no inheritance, only the
// Tool interface.
package tools

import (
	"github.com/talgya/hamlet/internal/world"
)

// Params is a raw parameter object as produced by a front end or the
// planner. Aliases are normalized before validation by the engine.
type Params map[string]any

// String returns the string under key, or "".
func (p Params) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the integer under key with def as fallback, accepting
// float64 from JSON decoding.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the boolean under key and whether it was present.
func (p Params) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// Map returns the nested object under key, or nil.
func (p Params) Map(key string) map[string]any {
	if m, ok := p[key].(map[string]any); ok {
		return m
	}
	return nil
}

// Tool is a named verb with a validation predicate and an event
// generator, invoked once per agent turn.
type Tool interface {
	Name() string
	// TimeCost is the number of ticks the actor is busy after acting.
	// wait and rest override this with their ticks parameter.
	TimeCost() int
	ValidateIntent(p Params, w *world.World, actor *world.Agent) bool
	GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event
}

// Registry maps tool names to tools.
type Registry map[string]Tool

// Names returns the registered tool names, unsorted.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	return out
}

// Register adds a tool under its own name.
func (r Registry) Register(t Tool) {
	r[t.Name()] = t
}

// DefaultRegistry returns the canonical tool set. The reason and reflect
// tools are included; front ends restrict them to editor/dev use.
func DefaultRegistry() Registry {
	r := make(Registry)
	for _, t := range []Tool{
		&MoveTool{Cost: 5},
		&OpenTool{},
		&CloseTool{},
		&GrabTool{},
		&DropTool{},
		&AttackTool{Cost: 3},
		&TalkTool{},
		&TalkLoudTool{},
		&ScreamTool{},
		&InterjectTool{},
		&LeaveConversationTool{},
		&InventoryTool{},
		&StatsTool{},
		&LookTool{},
		&AnalyzeTool{},
		&EquipTool{},
		&UnequipTool{},
		&EatTool{},
		&GiveTool{},
		&ToggleStarvationTool{},
		&WaitTool{},
		&RestTool{},
		&ReasonTool{},
		&ReflectTool{},
	} {
		r.Register(t)
	}
	return r
}
