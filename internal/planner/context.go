// Package planner produces exactly one structured command per agent turn
// from the language model: it assembles the working-memory slice, runs
// the propose/repair/fallback protocol, and normalizes the result.
package planner

import (
	"github.com/talgya/hamlet/internal/world"
)

// Command is the planner's output: one tool invocation.
type Command struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// WaitFallback is the command executed when the model's output cannot be
// repaired.
func WaitFallback() *Command {
	return &Command{Tool: "wait", Params: map[string]any{"ticks": 1}}
}

// Persona is the actor slice of the planner context.
type Persona struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	HP              int                     `json:"hp"`
	Attributes      map[string]int          `json:"attributes,omitempty"`
	Skills          map[string]string       `json:"skills,omitempty"`
	Tags            world.TagSet            `json:"tags"`
	ShortTermMemory []world.PerceptionEvent `json:"short_term_memory,omitempty"`
	Memories        []world.Memory          `json:"memories,omitempty"`
	CoreMemories    []world.Memory          `json:"core_memories,omitempty"`
	Goals           []world.Goal            `json:"goals,omitempty"`
}

// LocationContext describes the actor's surroundings.
type LocationContext struct {
	ID          string                        `json:"id"`
	Name        string                        `json:"name,omitempty"`
	Description string                        `json:"description,omitempty"`
	Neighbors   []string                      `json:"neighbors,omitempty"`
	Connections map[string]*world.Connection  `json:"connections_state,omitempty"`
	Occupants   []string                      `json:"occupants,omitempty"`
	Items       []string                      `json:"items,omitempty"`
}

// ConversationSnapshot is the live conversation view for the actor.
type ConversationSnapshot struct {
	ConversationID      string   `json:"conversation_id"`
	Participants        []string `json:"participants"`
	CurrentSpeaker      string   `json:"current_speaker,omitempty"`
	TurnOrder           []string `json:"turn_order,omitempty"`
	LastInteractionTick int      `json:"last_interaction_tick"`
}

// Context is the per-turn input the engine hands the planner.
type Context struct {
	GameTick       int                   `json:"game_tick"`
	Actor          Persona               `json:"actor"`
	Location       LocationContext       `json:"location"`
	AvailableTools []string              `json:"available_tools"`
	Conversation   *ConversationSnapshot `json:"conversation,omitempty"`
}

// RepetitionHint nudges the model away from repeating itself.
type RepetitionHint struct {
	LastToolByActor   string `json:"last_tool_by_actor,omitempty"`
	AvoidRepeatWithin int    `json:"avoid_repeat_within"`
	LookCooldown      int    `json:"look_cooldown"`
}

// WorkingMemory is the compact slice sent alongside the context.
type WorkingMemory struct {
	Goals             []world.Goal            `json:"goals"`
	CoreMemories      []world.Memory          `json:"core_memories"`
	Perceptions       []world.PerceptionEvent `json:"perceptions"`
	RetrievedMemories []world.Memory          `json:"retrieved_memories"`
}
