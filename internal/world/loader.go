package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a world from the on-disk data layout:
//
//	data/npcs/*.json                   one agent per file
//	data/locations/<id>_static.json    authored location
//	data/locations/<id>_state.json     mutable location
//	data/items/catalog.json            blueprint id -> fields
//	data/items/instances/*.json        one instance per file
//
// Directions are canonicalized on load and the dynamic adjacency is
// hydrated from the static hex layout.
func Load(dataDir string) (*World, error) {
	w := New()
	if err := w.loadAgents(filepath.Join(dataDir, "npcs")); err != nil {
		return nil, err
	}
	if err := w.loadLocations(filepath.Join(dataDir, "locations")); err != nil {
		return nil, err
	}
	if err := w.loadItems(filepath.Join(dataDir, "items")); err != nil {
		return nil, err
	}
	w.HydrateConnectionDirections()
	// Items sitting in a location's item list learn their placement.
	for locID, st := range w.LocationsState {
		for _, itemID := range st.Items {
			if inst, ok := w.Items[itemID]; ok && inst.CurrentLocation == "" && inst.OwnerID == "" {
				inst.CurrentLocation = locID
			}
		}
	}
	return w, nil
}

func (w *World) loadAgents(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("scan npcs: %w", err)
	}
	for _, path := range paths {
		var agent Agent
		if err := readJSON(path, &agent); err != nil {
			return fmt.Errorf("load npc %s: %w", filepath.Base(path), err)
		}
		normalizeAgent(&agent)
		w.Agents[agent.ID] = &agent
	}
	return nil
}

func normalizeAgent(a *Agent) {
	if a.HungerStage == "" {
		a.HungerStage = HungerSated
	}
	if a.Attributes == nil {
		a.Attributes = map[string]int{"strength": 10, "dexterity": 10, "constitution": 10}
	}
	if a.Slots == nil {
		a.Slots = make(map[string]string)
	}
	if a.Skills == nil {
		a.Skills = make(map[string]string)
	}
	if a.Relationships == nil {
		a.Relationships = make(map[string]string)
	}
}

func (w *World) loadLocations(dir string) error {
	statics, err := filepath.Glob(filepath.Join(dir, "*_static.json"))
	if err != nil {
		return fmt.Errorf("scan locations: %w", err)
	}
	for _, path := range statics {
		var loc LocationStatic
		if err := readJSON(path, &loc); err != nil {
			return fmt.Errorf("load location %s: %w", filepath.Base(path), err)
		}
		w.LocationsStatic[loc.ID] = &loc
	}
	states, err := filepath.Glob(filepath.Join(dir, "*_state.json"))
	if err != nil {
		return fmt.Errorf("scan location states: %w", err)
	}
	for _, path := range states {
		var loc LocationState
		if err := readJSON(path, &loc); err != nil {
			return fmt.Errorf("load location state %s: %w", filepath.Base(path), err)
		}
		if loc.Connections == nil {
			loc.Connections = make(map[string]*Connection)
		}
		for _, conn := range loc.Connections {
			if conn.Status == "" {
				conn.Status = EdgeOpen
			}
			if conn.Direction != "" {
				if d, ok := CanonicalDirection(string(conn.Direction)); ok {
					conn.Direction = d
				}
			}
		}
		w.LocationsState[loc.ID] = &loc
	}
	return nil
}

func (w *World) loadItems(dir string) error {
	catalogPath := filepath.Join(dir, "catalog.json")
	if _, err := os.Stat(catalogPath); err == nil {
		var catalog map[string]ItemBlueprint
		if err := readJSON(catalogPath, &catalog); err != nil {
			return fmt.Errorf("load item catalog: %w", err)
		}
		for id, bp := range catalog {
			entry := bp
			entry.ID = id
			w.Blueprints[id] = &entry
		}
	}
	paths, err := filepath.Glob(filepath.Join(dir, "instances", "*.json"))
	if err != nil {
		return fmt.Errorf("scan item instances: %w", err)
	}
	for _, path := range paths {
		var inst ItemInstance
		if err := readJSON(path, &inst); err != nil {
			return fmt.Errorf("load item %s: %w", filepath.Base(path), err)
		}
		w.Items[inst.ID] = &inst
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
