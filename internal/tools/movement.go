package tools

import (
	"github.com/talgya/hamlet/internal/world"
)

// MoveTool walks the actor to an open dynamic neighbor.
type MoveTool struct {
	Cost int
}

func (t *MoveTool) Name() string  { return "move" }
func (t *MoveTool) TimeCost() int { return t.Cost }

func (t *MoveTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	target := p.String("target_location")
	if target == "" {
		return false
	}
	if _, ok := w.LocationsState[target]; !ok {
		return false
	}
	current := w.FindAgentLocation(actor.ID)
	if current == "" {
		return false
	}
	loc := w.LocationsState[current]
	conn, ok := loc.Connections[target]
	if !ok {
		return false
	}
	return conn.Status == world.EdgeOpen
}

func (t *MoveTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	dest := p.String("target_location")
	return []world.Event{{
		Kind:      world.EventMove,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{dest},
		Payload:   world.Payload{"to_location_id": dest},
	}}
}

// edgeStatus looks up the actor-side status for the edge to target,
// defaulting to open when the edge exists without a status.
func edgeStatus(w *world.World, actorID, target string) (string, bool) {
	current := w.FindAgentLocation(actorID)
	if current == "" {
		return "", false
	}
	loc, ok := w.LocationsState[current]
	if !ok {
		return "", false
	}
	conn, ok := loc.Connections[target]
	if !ok {
		return "", false
	}
	if conn.Status == "" {
		return world.EdgeOpen, true
	}
	return conn.Status, true
}

// OpenTool opens a closed connection to a neighboring location.
type OpenTool struct{}

func (t *OpenTool) Name() string  { return "open" }
func (t *OpenTool) TimeCost() int { return 1 }

func (t *OpenTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	target := p.String("target_location")
	if target == "" {
		return false
	}
	status, ok := edgeStatus(w, actor.ID, target)
	return ok && status != world.EdgeOpen
}

func (t *OpenTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:      world.EventOpenConnection,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{p.String("target_location")},
	}}
}

// CloseTool closes an open connection to a neighboring location.
type CloseTool struct{}

func (t *CloseTool) Name() string  { return "close" }
func (t *CloseTool) TimeCost() int { return 1 }

func (t *CloseTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	target := p.String("target_location")
	if target == "" {
		return false
	}
	status, ok := edgeStatus(w, actor.ID, target)
	return ok && status == world.EdgeOpen
}

func (t *CloseTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:      world.EventCloseConnection,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{p.String("target_location")},
	}}
}
