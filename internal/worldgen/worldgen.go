// Package worldgen produces a seeded demo data/ tree: a small patch of
// hex-connected locations with noise-derived descriptions and elevation
// tags, a starter item catalog, and a cast of agents. The same seed
// always yields the same world.
package worldgen

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hamlet/internal/world"
)

// GenConfig holds demo world generation parameters.
type GenConfig struct {
	Radius int   // hex patch radius around town_square
	Seed   int64 // 0 = random
}

// DefaultGenConfig returns the small demo configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{Radius: 2, Seed: 42}
}

// Elevation threshold above which a location gets the vantage tag.
const vantageLevel = 0.72

var placeNouns = []string{
	"square", "market", "alley", "tavern", "chapel", "granary",
	"well", "orchard", "smithy", "watchtower", "bridge", "yard",
	"cellar", "garden", "mill", "stable", "archway", "terrace",
}

var placeAdjectives = []string{
	"quiet", "crowded", "mossy", "sunlit", "shadowed", "windswept",
	"narrow", "broad", "crumbling", "freshly swept", "old", "busy",
}

// Generate builds the demo world in memory.
func Generate(cfg GenConfig) *world.World {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	elevNoise := opensimplex.NewNormalized(seed)
	rng := rand.New(rand.NewSource(seed))

	w := world.New()

	type cell struct {
		id   string
		at   world.Axial
		elev float64
	}
	byCoord := make(map[world.Axial]*cell)
	var cells []*cell

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			s := -q - r
			if maxAbs(q, r, s) > cfg.Radius {
				continue
			}
			at := world.Axial{Q: q, R: r}
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0
			elev := elevNoise.Eval2(x*0.35, y*0.35)

			var id string
			if q == 0 && r == 0 {
				id = "town_square"
			} else {
				noun := placeNouns[rng.Intn(len(placeNouns))]
				id = fmt.Sprintf("%s_%d_%d", noun, q, r)
			}
			c := &cell{id: id, at: at, elev: elev}
			byCoord[at] = c
			cells = append(cells, c)
		}
	}

	for _, c := range cells {
		adjective := placeAdjectives[rng.Intn(len(placeAdjectives))]
		desc := fmt.Sprintf("A %s place. ", adjective)
		var inherent []string
		if c.elev >= vantageLevel {
			inherent = append(inherent, world.VantageTag)
			desc += "It overlooks the surrounding paths."
		} else {
			desc += "Paths lead off between the buildings."
		}
		if c.id == "town_square" {
			desc = "The town square. A fountain murmurs at its center."
		}

		static := &world.LocationStatic{
			ID:             c.id,
			Description:    desc,
			Tags:           world.TagSet{Inherent: inherent},
			HexConnections: make(map[string]string),
		}
		for _, dir := range world.DirectionOrder {
			delta := dir.Delta()
			if nb, ok := byCoord[world.Axial{Q: c.at.Q + delta.Q, R: c.at.R + delta.R}]; ok {
				static.HexConnections[string(dir)] = nb.id
			}
		}
		w.LocationsStatic[c.id] = static
		w.LocationsState[c.id] = &world.LocationState{
			ID:          c.id,
			Connections: make(map[string]*world.Connection),
		}
	}
	w.HydrateConnectionDirections()

	addCatalog(w)
	addCast(w)
	scatterItems(w, rng)
	return w
}

func addCatalog(w *world.World) {
	for _, bp := range []world.ItemBlueprint{
		{ID: "apple", Name: "Apple", Weight: 1, DamageDice: "1d1", DamageType: "bludgeoning", SkillTag: "unarmed_combat", Properties: []string{"food"}},
		{ID: "bread", Name: "Loaf of Bread", Weight: 1, DamageDice: "1d1", DamageType: "bludgeoning", SkillTag: "unarmed_combat", Properties: []string{"food"}},
		{ID: "rusty_sword", Name: "Rusty Sword", Weight: 4, DamageDice: "1d6", DamageType: "slashing", SkillTag: "swords"},
		{ID: "dagger", Name: "Dagger", Weight: 1, DamageDice: "1d4", DamageType: "piercing", SkillTag: "daggers", Properties: []string{"finesse"}},
		{ID: "leather_armor", Name: "Leather Armor", Weight: 8, DamageDice: "1d1", DamageType: "bludgeoning", ArmourRating: 1, SkillTag: "unarmed_combat"},
	} {
		entry := bp
		w.Blueprints[bp.ID] = &entry
	}
}

func addCast(w *world.World) {
	cast := []struct {
		id, name string
		str, dex int
		skills   map[string]string
	}{
		{"npc_bard", "Wren the Bard", 9, 13, map[string]string{"daggers": "novice"}},
		{"npc_guard", "Osric the Guard", 13, 10, map[string]string{"swords": "proficient"}},
		{"npc_baker", "Maud the Baker", 11, 10, map[string]string{"unarmed_combat": "novice"}},
	}
	for _, c := range cast {
		w.Agents[c.id] = &world.Agent{
			ID:   c.id,
			Name: c.name,
			HP:   20,
			Attributes: map[string]int{
				"strength": c.str, "dexterity": c.dex, "constitution": 10,
			},
			Slots:         map[string]string{"main_hand": "", "torso": ""},
			Skills:        c.skills,
			Relationships: make(map[string]string),
			HungerStage:   world.HungerSated,
		}
		w.LocationsState["town_square"].Occupants = append(
			w.LocationsState["town_square"].Occupants, c.id)
	}
}

func scatterItems(w *world.World, rng *rand.Rand) {
	locIDs := make([]string, 0, len(w.LocationsState))
	for id := range w.LocationsState {
		locIDs = append(locIDs, id)
	}
	sort.Strings(locIDs)
	bpIDs := make([]string, 0, len(w.Blueprints))
	for id := range w.Blueprints {
		bpIDs = append(bpIDs, id)
	}
	sort.Strings(bpIDs)
	n := 1
	for _, bpID := range bpIDs {
		locID := locIDs[rng.Intn(len(locIDs))]
		instID := fmt.Sprintf("item_%s_%d", bpID, n)
		n++
		w.Items[instID] = &world.ItemInstance{
			ID:              instID,
			BlueprintID:     bpID,
			CurrentLocation: locID,
		}
		w.LocationsState[locID].Items = append(w.LocationsState[locID].Items, instID)
	}
}

func maxAbs(vals ...int) int {
	m := 0
	for _, v := range vals {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// WriteData writes the world as the on-disk data layout under dir.
func WriteData(w *world.World, dir string) error {
	for _, sub := range []string{"npcs", "locations", filepath.Join("items", "instances")} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", sub, err)
		}
	}
	for id, agent := range w.Agents {
		if err := writeJSONFile(filepath.Join(dir, "npcs", id+".json"), agent); err != nil {
			return err
		}
	}
	for id, static := range w.LocationsStatic {
		if err := writeJSONFile(filepath.Join(dir, "locations", id+"_static.json"), static); err != nil {
			return err
		}
	}
	for id, state := range w.LocationsState {
		if err := writeJSONFile(filepath.Join(dir, "locations", id+"_state.json"), state); err != nil {
			return err
		}
	}
	catalog := make(map[string]*world.ItemBlueprint, len(w.Blueprints))
	for id, bp := range w.Blueprints {
		entry := *bp
		entry.ID = "" // id is the catalog key, not a field
		catalog[id] = &entry
	}
	if err := writeJSONFile(filepath.Join(dir, "items", "catalog.json"), catalog); err != nil {
		return err
	}
	for id, inst := range w.Items {
		if err := writeJSONFile(filepath.Join(dir, "items", "instances", id+".json"), inst); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
