package tools

import (
	"github.com/talgya/hamlet/internal/world"
)

// GrabTool picks up an item lying in the actor's location.
type GrabTool struct{}

func (t *GrabTool) Name() string  { return "grab" }
func (t *GrabTool) TimeCost() int { return 1 }

func (t *GrabTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	itemID := p.String("item_id")
	if itemID == "" {
		return false
	}
	locID := w.FindAgentLocation(actor.ID)
	if locID == "" {
		return false
	}
	loc := w.LocationsState[locID]
	for _, id := range loc.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

func (t *GrabTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:      world.EventGrab,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{p.String("item_id")},
	}}
}

// DropTool puts a carried item down in the actor's location.
type DropTool struct{}

func (t *DropTool) Name() string  { return "drop" }
func (t *DropTool) TimeCost() int { return 1 }

func (t *DropTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	itemID := p.String("item_id")
	return itemID != "" && actor.HasItem(itemID)
}

func (t *DropTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:      world.EventDrop,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{p.String("item_id")},
	}}
}

// EquipTool moves a carried item into an equipment slot.
type EquipTool struct{}

func (t *EquipTool) Name() string  { return "equip" }
func (t *EquipTool) TimeCost() int { return 1 }

func (t *EquipTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	itemID := p.String("item_id")
	slot := p.String("slot")
	if itemID == "" || slot == "" {
		return false
	}
	if _, ok := actor.Slots[slot]; !ok {
		return false
	}
	return actor.HasItem(itemID)
}

func (t *EquipTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	return []world.Event{{
		Kind:      world.EventEquip,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{p.String("item_id")},
		Payload:   world.Payload{"slot": p.String("slot")},
	}}
}

// UnequipTool moves an equipped item back to the inventory.
type UnequipTool struct{}

func (t *UnequipTool) Name() string  { return "unequip" }
func (t *UnequipTool) TimeCost() int { return 1 }

func (t *UnequipTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	slot := p.String("slot")
	if slot == "" {
		return false
	}
	itemID, ok := actor.Slots[slot]
	return ok && itemID != ""
}

func (t *UnequipTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	slot := p.String("slot")
	return []world.Event{{
		Kind:      world.EventUnequip,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{actor.Slots[slot]},
		Payload:   world.Payload{"slot": slot},
	}}
}

// EatTool consumes a carried item with the food property.
type EatTool struct{}

func (t *EatTool) Name() string  { return "eat" }
func (t *EatTool) TimeCost() int { return 1 }

func (t *EatTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	itemID := p.String("item_id")
	if itemID == "" || !actor.HasItem(itemID) {
		return false
	}
	inst, err := w.Item(itemID)
	if err != nil {
		return false
	}
	bp, err := w.Blueprint(inst.BlueprintID)
	if err != nil {
		return false
	}
	return bp.HasProperty("food")
}

func (t *EatTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	itemID := p.String("item_id")
	return []world.Event{{
		Kind:      world.EventEat,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{itemID},
		Payload:   world.Payload{"item_name": w.ItemName(itemID)},
	}}
}

// GiveTool hands a carried item to a co-located agent.
type GiveTool struct{}

func (t *GiveTool) Name() string  { return "give" }
func (t *GiveTool) TimeCost() int { return 1 }

func (t *GiveTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	itemID := p.String("item_id")
	targetID := p.String("target_id")
	if itemID == "" || targetID == "" {
		return false
	}
	if !actor.HasItem(itemID) {
		return false
	}
	target, ok := w.Agents[targetID]
	if !ok || target.IsDead() {
		return false
	}
	return w.FindAgentLocation(actor.ID) != "" &&
		w.FindAgentLocation(actor.ID) == w.FindAgentLocation(targetID)
}

func (t *GiveTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	itemID := p.String("item_id")
	targetID := p.String("target_id")
	return []world.Event{{
		Kind:      world.EventGive,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{itemID, targetID},
		Payload:   world.Payload{"item_id": itemID, "recipient_id": targetID},
	}}
}

// AnalyzeTool inspects an item in the inventory or the current location.
type AnalyzeTool struct{}

func (t *AnalyzeTool) Name() string  { return "analyze" }
func (t *AnalyzeTool) TimeCost() int { return 1 }

func (t *AnalyzeTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	itemID := p.String("item_id")
	if itemID == "" {
		return false
	}
	if actor.HasItem(itemID) {
		return true
	}
	locID := w.FindAgentLocation(actor.ID)
	if locID == "" {
		return false
	}
	for _, id := range w.LocationsState[locID].Items {
		if id == itemID {
			return true
		}
	}
	return false
}

func (t *AnalyzeTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	itemID := p.String("item_id")
	inst, err := w.Item(itemID)
	if err != nil {
		return nil
	}
	bp, err := w.Blueprint(inst.BlueprintID)
	if err != nil {
		return nil
	}
	return []world.Event{{
		Kind:      world.EventAnalyze,
		Tick:      tick,
		ActorID:   actor.ID,
		TargetIDs: []string{itemID},
		Payload: world.Payload{
			"name":          bp.Name,
			"weight":        bp.Weight,
			"damage_dice":   bp.DamageDice,
			"damage_type":   bp.DamageType,
			"armour_rating": bp.ArmourRating,
			"properties":    bp.Properties,
		},
	}}
}

// InventoryTool lists what the actor carries.
type InventoryTool struct{}

func (t *InventoryTool) Name() string  { return "inventory" }
func (t *InventoryTool) TimeCost() int { return 1 }

func (t *InventoryTool) ValidateIntent(p Params, w *world.World, actor *world.Agent) bool {
	return true
}

func (t *InventoryTool) GenerateEvents(p Params, w *world.World, actor *world.Agent, tick int) []world.Event {
	names := make([]string, 0, len(actor.Inventory))
	for _, id := range actor.Inventory {
		names = append(names, w.ItemName(id))
	}
	return []world.Event{{
		Kind:    world.EventInventory,
		Tick:    tick,
		ActorID: actor.ID,
		Payload: world.Payload{"items": names},
	}}
}
