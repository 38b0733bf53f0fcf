package world

import (
	"log/slog"
	"sort"
)

// Apply performs the single atomic state transition for an event. It is
// total over the known event kinds: unknown kinds and failed
// preconditions leave the world untouched (no partial updates).
func (w *World) Apply(e Event) {
	switch e.Kind {
	case EventMove:
		w.applyMove(e)
	case EventGrab:
		w.applyGrab(e)
	case EventDrop:
		w.applyDrop(e)
	case EventEat:
		w.applyEat(e)
	case EventDamageApplied:
		w.applyDamage(e)
	case EventRest:
		w.applyRest(e)
	case EventEquip:
		w.applyEquip(e)
	case EventUnequip:
		w.applyUnequip(e)
	case EventGive:
		w.applyGive(e)
	case EventOpenConnection:
		w.applyConnectionStatus(e, EdgeOpen)
	case EventCloseConnection:
		w.applyConnectionStatus(e, EdgeClosed)
	case EventNPCDied:
		w.applyDied(e)
	case EventReason:
		w.applyReason(e)
	case EventReflect:
		w.applyReflect(e)
	case EventAttackAttempt, EventAttackHit, EventAttackMissed,
		EventTalk, EventTalkLoud, EventScream,
		EventInventory, EventStats, EventAnalyze,
		EventDescribeLocation, EventWait, EventToggleStarvation,
		EventLeaveConvo:
		// Observational or engine-level events: no world mutation here.
	default:
		slog.Warn("unknown event kind, world untouched", "kind", e.Kind)
	}
}

func (w *World) applyMove(e Event) {
	target := e.Target()
	dest, ok := w.LocationsState[target]
	if !ok {
		return
	}
	if cur := w.FindAgentLocation(e.ActorID); cur != "" {
		w.LocationsState[cur].RemoveOccupant(e.ActorID)
	}
	dest.Occupants = append(dest.Occupants, e.ActorID)
}

func (w *World) applyGrab(e Event) {
	itemID := e.Target()
	actor, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	locID := w.FindAgentLocation(e.ActorID)
	if locID == "" {
		return
	}
	loc := w.LocationsState[locID]
	if !loc.RemoveItem(itemID) {
		return
	}
	actor.Inventory = append(actor.Inventory, itemID)
	if inst, ok := w.Items[itemID]; ok {
		inst.OwnerID = e.ActorID
		inst.CurrentLocation = ""
	}
}

func (w *World) applyDrop(e Event) {
	itemID := e.Target()
	actor, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	locID := w.FindAgentLocation(e.ActorID)
	if locID == "" {
		return
	}
	if !actor.RemoveItem(itemID) {
		return
	}
	loc := w.LocationsState[locID]
	loc.Items = append(loc.Items, itemID)
	if inst, ok := w.Items[itemID]; ok {
		inst.OwnerID = ""
		inst.CurrentLocation = locID
	}
}

func (w *World) applyEat(e Event) {
	itemID := e.Target()
	actor, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	if !actor.RemoveItem(itemID) {
		return
	}
	delete(w.Items, itemID)
	actor.LastMealTick = e.Tick
	actor.HungerStage = HungerSated
}

func (w *World) applyDamage(e Event) {
	target, ok := w.Agents[e.Target()]
	if !ok {
		return
	}
	target.HP -= e.Payload.Int("amount")
	if target.HP < 0 {
		target.HP = 0
	}
}

func (w *World) applyRest(e Event) {
	actor, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	maxHP := actor.Attribute("constitution") * 2
	if maxHP < 1 {
		maxHP = 1
	}
	actor.HP += e.Payload.Int("healed")
	if actor.HP > maxHP {
		actor.HP = maxHP
	}
}

func (w *World) applyEquip(e Event) {
	itemID := e.Target()
	slot := e.Payload.String("slot")
	actor, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	if _, slotExists := actor.Slots[slot]; !slotExists {
		return
	}
	if !actor.HasItem(itemID) {
		return
	}
	if prev := actor.Slots[slot]; prev != "" {
		actor.Inventory = append(actor.Inventory, prev)
	}
	actor.RemoveItem(itemID)
	actor.Slots[slot] = itemID
}

func (w *World) applyUnequip(e Event) {
	slot := e.Payload.String("slot")
	actor, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	itemID := actor.Slots[slot]
	if itemID == "" {
		return
	}
	actor.Inventory = append(actor.Inventory, itemID)
	actor.Slots[slot] = ""
}

func (w *World) applyGive(e Event) {
	itemID := e.Payload.String("item_id")
	if itemID == "" {
		itemID = e.Target()
	}
	recipientID := e.Payload.String("recipient_id")
	if recipientID == "" && len(e.TargetIDs) > 1 {
		recipientID = e.TargetIDs[1]
	}
	giver, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	receiver, ok := w.Agents[recipientID]
	if !ok {
		return
	}
	if !giver.RemoveItem(itemID) {
		return
	}
	receiver.Inventory = append(receiver.Inventory, itemID)
	if inst, ok := w.Items[itemID]; ok {
		inst.OwnerID = recipientID
	}
}

// applyConnectionStatus sets the edge status symmetrically, inferring a
// missing direction from the static layout and mirroring the inverse on
// the reciprocal side.
func (w *World) applyConnectionStatus(e Event, status string) {
	actorLoc := w.FindAgentLocation(e.ActorID)
	target := e.Target()
	if actorLoc == "" {
		return
	}
	from, ok := w.LocationsState[actorLoc]
	if !ok {
		return
	}
	to, ok := w.LocationsState[target]
	if !ok {
		return
	}
	if from.Connections == nil {
		from.Connections = make(map[string]*Connection)
	}
	if to.Connections == nil {
		to.Connections = make(map[string]*Connection)
	}
	fr := from.Connections[target]
	if fr == nil {
		fr = &Connection{}
		from.Connections[target] = fr
	}
	rc := to.Connections[actorLoc]
	if rc == nil {
		rc = &Connection{}
		to.Connections[actorLoc] = rc
	}
	fr.Status = status
	rc.Status = status
	if fr.Direction == "" {
		if static, ok := w.LocationsStatic[actorLoc]; ok {
			for key, nb := range static.HexConnections {
				if nb != target {
					continue
				}
				if d, ok := CanonicalDirection(key); ok {
					fr.Direction = d
					break
				}
			}
		}
	}
	if rc.Direction == "" && fr.Direction != "" {
		rc.Direction = fr.Direction.Inverse()
	}
}

func (w *World) applyDied(e Event) {
	agent, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	locID := w.FindAgentLocation(agent.ID)
	if locID != "" {
		loc := w.LocationsState[locID]
		loc.RemoveOccupant(agent.ID)
		dropped := append([]string(nil), agent.Inventory...)
		slots := make([]string, 0, len(agent.Slots))
		for slot := range agent.Slots {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			if itemID := agent.Slots[slot]; itemID != "" {
				dropped = append(dropped, itemID)
				agent.Slots[slot] = ""
			}
		}
		for _, itemID := range dropped {
			loc.Items = append(loc.Items, itemID)
			if inst, ok := w.Items[itemID]; ok {
				inst.OwnerID = ""
				inst.CurrentLocation = locID
			}
		}
		agent.Inventory = nil
	}
	agent.Tags.AddDynamic(DeadTag)
}

// applyReason performs the allowlisted cognitive mutations requested by a
// reason event. Anything touching hp, attributes, skills, inventory,
// slots, or placement is rejected by construction: only these five
// operations exist.
func (w *World) applyReason(e Event) {
	agent, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	desired := e.Payload.Map("desired_outcome")
	if desired == nil {
		return
	}
	if data, ok := desired["add_memory"].(map[string]any); ok {
		agent.Memories = append(agent.Memories, memoryFromMap(data, e.Tick, "", 1.0))
		archiveOverflow(agent)
		return
	}
	if data, ok := desired["update_memory_status"].(map[string]any); ok {
		match := lowerString(data["match_text"])
		status := stringOr(data["new_status"], MemoryActive)
		if match == "" {
			return
		}
		for i := range agent.Memories {
			if containsFold(agent.Memories[i].Text, match) {
				agent.Memories[i].Status = status
				break
			}
		}
		return
	}
	if data, ok := desired["add_goal"].(map[string]any); ok {
		goal := Goal{
			Text:     truncate(stringOr(data["text"], ""), 500),
			Type:     stringOr(data["type"], "note"),
			Priority: stringOr(data["priority"], PriorityNormal),
			Status:   stringOr(data["status"], GoalActive),
		}
		if p, ok := data["payload"].(map[string]any); ok {
			goal.Payload = p
		}
		if v, ok := data["expiry_tick"]; ok {
			if t, ok := asInt(v); ok {
				goal.ExpiryTick = &t
			}
		}
		agent.Goals = append(agent.Goals, goal)
		if len(agent.Goals) > MaxGoals {
			agent.Goals = agent.Goals[len(agent.Goals)-MaxGoals:]
		}
		return
	}
	if data, ok := desired["update_goal_status"].(map[string]any); ok {
		match := lowerString(data["match_text"])
		status := stringOr(data["new_status"], GoalActive)
		if match == "" {
			return
		}
		for i := range agent.Goals {
			if containsFold(agent.Goals[i].Text, match) {
				agent.Goals[i].Status = status
				break
			}
		}
		return
	}
	if data, ok := desired["update_relationship"].(map[string]any); ok {
		targetID := stringOr(data["target_id"], "")
		if targetID == "" {
			return
		}
		if agent.Relationships == nil {
			agent.Relationships = make(map[string]string)
		}
		agent.Relationships[targetID] = stringOr(data["new_status"], "")
	}
}

// applyReflect appends consolidation outputs to the agent's memory
// stores and marks matched memories archived or consolidated.
func (w *World) applyReflect(e Event) {
	agent, ok := w.Agents[e.ActorID]
	if !ok {
		return
	}
	outputs := e.Payload.Map("outputs")
	if outputs == nil {
		return
	}
	for _, raw := range anySlice(outputs["new_core_memories"]) {
		if data, ok := raw.(map[string]any); ok {
			agent.CoreMemories = append(agent.CoreMemories, memoryFromMap(data, e.Tick, agent.ID, 0.8))
		}
	}
	if len(agent.CoreMemories) > MaxCoreMemories {
		agent.CoreMemories = agent.CoreMemories[len(agent.CoreMemories)-MaxCoreMemories:]
	}
	for _, raw := range anySlice(outputs["new_memories"]) {
		if data, ok := raw.(map[string]any); ok {
			agent.Memories = append(agent.Memories, memoryFromMap(data, e.Tick, agent.ID, 0.8))
			archiveOverflow(agent)
		}
	}
	archive := stringSlice(outputs["archive_matches"])
	consolidate := stringSlice(outputs["consolidate_matches"])
	markMatches(agent.Memories, archive, MemoryArchived)
	markMatches(agent.Memories, consolidate, MemoryConsolidated)
	markMatches(agent.CoreMemories, archive, MemoryArchived)
	markMatches(agent.CoreMemories, consolidate, MemoryConsolidated)
}

// archiveOverflow archives the oldest 50 memories once the store exceeds
// its cap, rather than discarding them.
func archiveOverflow(a *Agent) {
	if len(a.Memories) <= MaxMemories {
		return
	}
	for i := 0; i < ArchiveBatch && i < len(a.Memories); i++ {
		a.Memories[i].Status = MemoryArchived
	}
}

func markMatches(memories []Memory, tokens []string, status string) {
	for _, token := range tokens {
		if token == "" {
			continue
		}
		for i := range memories {
			if containsFold(memories[i].Text, token) {
				memories[i].Status = status
			}
		}
	}
}

func memoryFromMap(data map[string]any, tick int, sourceID string, defaultConfidence float64) Memory {
	m := Memory{
		Text:       truncate(stringOr(data["text"], ""), 1000),
		Tick:       tick,
		Priority:   stringOr(data["priority"], PriorityNormal),
		Status:     stringOr(data["status"], MemoryActive),
		SourceID:   stringOr(data["source_id"], sourceID),
		Confidence: defaultConfidence,
	}
	if v, ok := data["confidence"]; ok {
		if f, ok := asFloat(v); ok {
			m.Confidence = clampConfidence(f)
		}
	}
	if b, ok := data["is_secret"].(bool); ok {
		m.IsSecret = b
	}
	if p, ok := data["payload"].(map[string]any); ok {
		m.Payload = p
	}
	return m
}

func clampConfidence(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1.2 {
		return 1.2
	}
	return f
}
