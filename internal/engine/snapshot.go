package engine

import (
	"sort"

	"github.com/talgya/hamlet/internal/world"
)

// ItemRef resolves an item instance to something displayable.
type ItemRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AgentView is the read-only agent projection for front ends.
type AgentView struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	HP        int                `json:"hp"`
	Hunger    string             `json:"hunger"`
	Dead      bool               `json:"dead"`
	Location  string             `json:"location,omitempty"`
	Inventory []ItemRef          `json:"inventory"`
	Equipped  map[string]ItemRef `json:"equipped"`
	LastLine  string             `json:"last_line,omitempty"`
}

// NeighborView is one edge from a location, with its layout position.
type NeighborView struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Direction world.Direction `json:"direction,omitempty"`
	Axial     world.Axial     `json:"axial"`
}

// LocationView is the read-only location projection.
type LocationView struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Occupants   []string       `json:"occupants"`
	Items       []ItemRef      `json:"items"`
	Neighbors   []NeighborView `json:"neighbors"`
	Axial       world.Axial    `json:"axial"`
}

// Snapshot is the world projection consumed by front ends. It is a copy;
// mutating it does not touch the world.
type Snapshot struct {
	Tick      int            `json:"tick"`
	PlayerID  string         `json:"player_id,omitempty"`
	Agents    []AgentView    `json:"agents"`
	Locations []LocationView `json:"locations"`
}

// Snapshot builds the read-only world projection, including axial
// coordinates from the BFS layout.
func (e *Engine) Snapshot() Snapshot {
	layout := world.AxialLayout(e.World)
	snap := Snapshot{Tick: e.tick, PlayerID: e.PlayerID}

	agentIDs := make([]string, 0, len(e.World.Agents))
	for id := range e.World.Agents {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)
	for _, id := range agentIDs {
		a := e.World.Agents[id]
		view := AgentView{
			ID:       a.ID,
			Name:     a.Name,
			HP:       a.HP,
			Hunger:   string(a.HungerStage),
			Dead:     a.IsDead(),
			Location: e.World.FindAgentLocation(a.ID),
			Equipped: make(map[string]ItemRef),
			LastLine: e.lastActorLines[a.ID],
		}
		for _, itemID := range a.Inventory {
			view.Inventory = append(view.Inventory, ItemRef{ID: itemID, Name: e.World.ItemName(itemID)})
		}
		for slot, itemID := range a.Slots {
			if itemID != "" {
				view.Equipped[slot] = ItemRef{ID: itemID, Name: e.World.ItemName(itemID)}
			}
		}
		snap.Agents = append(snap.Agents, view)
	}

	locIDs := make([]string, 0, len(e.World.LocationsStatic))
	for id := range e.World.LocationsStatic {
		locIDs = append(locIDs, id)
	}
	sort.Strings(locIDs)
	for _, id := range locIDs {
		static := e.World.LocationsStatic[id]
		view := LocationView{
			ID:          id,
			Description: static.Description,
			Axial:       layout[id],
		}
		if state, ok := e.World.LocationsState[id]; ok {
			view.Occupants = append(view.Occupants, state.Occupants...)
			for _, itemID := range state.Items {
				view.Items = append(view.Items, ItemRef{ID: itemID, Name: e.World.ItemName(itemID)})
			}
			neighborIDs := make([]string, 0, len(state.Connections))
			for nb := range state.Connections {
				neighborIDs = append(neighborIDs, nb)
			}
			sort.Strings(neighborIDs)
			for _, nb := range neighborIDs {
				conn := state.Connections[nb]
				status := conn.Status
				if status == "" {
					status = world.EdgeOpen
				}
				view.Neighbors = append(view.Neighbors, NeighborView{
					ID:        nb,
					Status:    status,
					Direction: conn.Direction,
					Axial:     layout[nb],
				})
			}
		}
		snap.Locations = append(snap.Locations, view)
	}
	return snap
}
