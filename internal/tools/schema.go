package tools

import (
	"encoding/json"
	"log/slog"

	"github.com/invopop/jsonschema"
)

// Schema describes a tool's parameter contract for the planner: which
// keys are required, which alternatives satisfy a one_of group, a tiny
// example command, and the reflected JSON Schema embedded in the prompt.
type Schema struct {
	Required   []string        `json:"required,omitempty"`
	Optional   []string        `json:"optional,omitempty"`
	OneOf      [][]string      `json:"one_of,omitempty"`
	Example    map[string]any  `json:"example,omitempty"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// Parameter structs reflected into JSON Schemas for the planner prompt.
type (
	moveParams struct {
		TargetLocation string `json:"target_location" jsonschema:"description=Open neighbor location id"`
	}
	edgeParams struct {
		TargetLocation string `json:"target_location" jsonschema:"description=Neighbor location id"`
	}
	attackParams struct {
		TargetID string `json:"target_id" jsonschema:"description=Co-located living agent id"`
	}
	talkParams struct {
		Content  string `json:"content"`
		TargetID string `json:"target_id,omitempty" jsonschema:"description=Optional co-located addressee"`
	}
	shoutParams struct {
		Content string `json:"content"`
	}
	itemParams struct {
		ItemID string `json:"item_id"`
	}
	equipParams struct {
		ItemID string `json:"item_id"`
		Slot   string `json:"slot"`
	}
	unequipParams struct {
		Slot string `json:"slot"`
	}
	giveParams struct {
		ItemID   string `json:"item_id"`
		TargetID string `json:"target_id"`
	}
	starvationParams struct {
		Enabled bool `json:"enabled"`
	}
	durationParams struct {
		Ticks int `json:"ticks,omitempty" jsonschema:"minimum=1"`
	}
	interjectParams struct {
		ConversationID string `json:"conversation_id"`
		Content        string `json:"content"`
	}
	emptyParams struct{}
)

func reflectSchema(v any) json.RawMessage {
	reflector := jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := reflector.Reflect(v)
	raw, err := json.Marshal(schema)
	if err != nil {
		slog.Warn("schema reflection failed", "error", err)
		return nil
	}
	return raw
}

// Schemas returns the per-tool parameter contracts, keyed by tool name.
// Built once at startup; the reflected schemas document the contract in
// the prompt while Required/OneOf drive the planner's own validation.
func Schemas() map[string]Schema {
	return map[string]Schema{
		"move": {
			OneOf:      [][]string{{"target_location"}},
			Example:    map[string]any{"target_location": "market_square"},
			JSONSchema: reflectSchema(&moveParams{}),
		},
		"open": {
			Required:   []string{"target_location"},
			Example:    map[string]any{"target_location": "alley"},
			JSONSchema: reflectSchema(&edgeParams{}),
		},
		"close": {
			Required:   []string{"target_location"},
			Example:    map[string]any{"target_location": "market_square"},
			JSONSchema: reflectSchema(&edgeParams{}),
		},
		"attack": {
			Required:   []string{"target_id"},
			Example:    map[string]any{"target_id": "npc_enemy"},
			JSONSchema: reflectSchema(&attackParams{}),
		},
		"talk": {
			Required:   []string{"content"},
			Optional:   []string{"target_id"},
			Example:    map[string]any{"target_id": "npc_guard", "content": "Good day."},
			JSONSchema: reflectSchema(&talkParams{}),
		},
		"talk_loud": {
			Required:   []string{"content"},
			Example:    map[string]any{"content": "Hello up there!"},
			JSONSchema: reflectSchema(&shoutParams{}),
		},
		"scream": {
			Required:   []string{"content"},
			Example:    map[string]any{"content": "Help!"},
			JSONSchema: reflectSchema(&shoutParams{}),
		},
		"grab": {
			Required:   []string{"item_id"},
			Example:    map[string]any{"item_id": "item_rusty_sword_1"},
			JSONSchema: reflectSchema(&itemParams{}),
		},
		"drop": {
			Required:   []string{"item_id"},
			Example:    map[string]any{"item_id": "item_rusty_sword_1"},
			JSONSchema: reflectSchema(&itemParams{}),
		},
		"equip": {
			Required:   []string{"item_id", "slot"},
			Example:    map[string]any{"item_id": "item_leather_armor_1", "slot": "torso"},
			JSONSchema: reflectSchema(&equipParams{}),
		},
		"unequip": {
			Required:   []string{"slot"},
			Example:    map[string]any{"slot": "torso"},
			JSONSchema: reflectSchema(&unequipParams{}),
		},
		"inventory": {
			Example:    map[string]any{},
			JSONSchema: reflectSchema(&emptyParams{}),
		},
		"stats": {
			Example:    map[string]any{},
			JSONSchema: reflectSchema(&emptyParams{}),
		},
		"look": {
			Example:    map[string]any{},
			JSONSchema: reflectSchema(&emptyParams{}),
		},
		"analyze": {
			Required:   []string{"item_id"},
			Example:    map[string]any{"item_id": "item_apple_1"},
			JSONSchema: reflectSchema(&itemParams{}),
		},
		"eat": {
			Required:   []string{"item_id"},
			Example:    map[string]any{"item_id": "item_apple_1"},
			JSONSchema: reflectSchema(&itemParams{}),
		},
		"give": {
			Required:   []string{"item_id", "target_id"},
			Example:    map[string]any{"item_id": "item_apple_1", "target_id": "npc_bard"},
			JSONSchema: reflectSchema(&giveParams{}),
		},
		"toggle_starvation": {
			Required:   []string{"enabled"},
			Example:    map[string]any{"enabled": false},
			JSONSchema: reflectSchema(&starvationParams{}),
		},
		"wait": {
			Optional:   []string{"ticks"},
			Example:    map[string]any{"ticks": 1},
			JSONSchema: reflectSchema(&durationParams{}),
		},
		"rest": {
			Optional:   []string{"ticks"},
			Example:    map[string]any{"ticks": 1},
			JSONSchema: reflectSchema(&durationParams{}),
		},
		"interject": {
			Required:   []string{"conversation_id", "content"},
			Example:    map[string]any{"conversation_id": "convo_123", "content": "Wait."},
			JSONSchema: reflectSchema(&interjectParams{}),
		},
		"leave_conversation": {
			Example:    map[string]any{},
			JSONSchema: reflectSchema(&emptyParams{}),
		},
	}
}
