package planner

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/tools"
	"github.com/talgya/hamlet/internal/world"
)

// SystemPrompt steers the model toward a single valid JSON command.
const SystemPrompt = `You are an action planner for a deterministic text-sim.
Return ONLY a single JSON object: {"tool": string, "params": object} or null. No prose, no code fences.
A 'tool_schemas' section and tiny examples will be provided in the user payload; obey them strictly.
Rules:
- Choose exactly one tool per turn.
- Keep params minimal and valid; prefer IDs from context.
- If no sensible action, return null.
- If in a conversation and not current speaker, prefer null; consider interject ONLY for brief, meaningful asides.
- Working memory is provided; consider goals, core memories, and recent perceptions when deciding.
- When idle: prefer varied low-impact actions like talk with short emotes (e.g., 'nods.', 'hums.'), or wait; avoid repeating the same action consecutively.
- Avoid selecting 'look' more than once every 5 turns; use it sparingly.
- Use 'move' only to valid open neighbors.
- Use 'attack' only if co-located and context justifies.
- For durations like wait/rest without a number, use ticks=1.

Embodiment and action:
You are controlling a single embodied actor in a physical world. Choose exactly one concrete next action that physically advances the actor's goal (e.g., move toward a target, open/close a door, talk/talk_loud when speech itself advances the goal).

Navigation:
If you intend to investigate something not in your current location, choose move toward an OPEN neighbor from context.location.connections_state. If a connection is closed, choose open (or close) first or pick an alternate OPEN route.

Targeted speech:
Only use talk/talk_loud when speech itself advances the goal. When speaking to someone present, include target_id. If the relevant person is elsewhere, move instead.

Repetition hint:
You receive repetition_hint = {last_tool_by_actor, avoid_repeat_within, look_cooldown}. Do not pick last_tool_by_actor again within avoid_repeat_within turns unless necessary. Avoid 'look' within look_cooldown. If you previously indicated you would investigate, prefer 'move' next.

Hidden reasoning:
Before deciding, write brief hidden reasoning inside <think>...</think>. Then output ONLY one JSON object with the command.`

// chatClient is what the planner needs from the connector.
type chatClient interface {
	Chat(messages []llm.Message) (string, error)
}

// Planner runs the three-stage propose/repair/fallback protocol. Retry is
// bounded to one repair attempt per turn.
type Planner struct {
	client  chatClient
	topK    int
	schemas map[string]tools.Schema
	known   map[string]bool
}

// New builds a planner over the connector. topK bounds long-term memory
// retrieval per turn.
func New(client chatClient, topK int) *Planner {
	schemas := tools.Schemas()
	known := make(map[string]bool, len(schemas))
	for name := range schemas {
		known[name] = true
	}
	return &Planner{client: client, topK: topK, schemas: schemas, known: known}
}

type userPayload struct {
	Context        Context                  `json:"context"`
	WorkingMemory  WorkingMemory            `json:"working_memory"`
	RepetitionHint RepetitionHint           `json:"repetition_hint"`
	NeighborNames  map[string]string        `json:"neighbor_names"`
	ToolSchemas    map[string]tools.Schema  `json:"tool_schemas"`
	ToolExamples   map[string]map[string]any `json:"tool_examples"`
	Input          string                   `json:"input"`
}

// Plan decides the next command for the actor, or nil when the model
// declines to act. It never returns an unvalidated command: either the
// proposal (or its repair) passes schema checks, or the wait fallback is
// returned.
func (p *Planner) Plan(ctx Context, history []string) *Command {
	wm := BuildWorkingMemory(ctx, history, p.topK)

	neighborNames := make(map[string]string)
	for id, conn := range ctx.Location.Connections {
		if conn != nil && conn.Status == world.EdgeOpen {
			neighborNames[id] = id
		}
	}

	toolSchemas := make(map[string]tools.Schema)
	toolExamples := make(map[string]map[string]any)
	for _, name := range ctx.AvailableTools {
		if spec, ok := p.schemas[name]; ok {
			toolSchemas[name] = spec
			if spec.Example != nil {
				toolExamples[name] = spec.Example
			}
		}
	}

	payload := userPayload{
		Context:        ctx,
		WorkingMemory:  wm,
		RepetitionHint: repetitionHint(ctx),
		NeighborNames:  neighborNames,
		ToolSchemas:    toolSchemas,
		ToolExamples:   toolExamples,
		Input: "Decide the next action. Respect repetition_hint.last_tool_by_actor and avoid repeating " +
			"the same tool within repetition_hint.avoid_repeat_within turns. Do not choose look if last " +
			"use was within look_cooldown turns.",
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("planner payload marshal failed", "error", err)
		return WaitFallback()
	}

	// Stage 1: propose.
	reply, err := p.client.Chat([]llm.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: string(raw)},
	})
	if err != nil {
		slog.Warn("planner propose failed", "actor", ctx.Actor.ID, "error", err)
		return WaitFallback()
	}
	parsed, ok := llm.ExtractJSONObject(reply)
	if !ok {
		// A bare null means "no action" on purpose; anything else
		// unparseable degrades to the fallback.
		if llm.StripReasoning(reply) == "null" {
			return nil
		}
		slog.Debug("planner proposal unparseable", "actor", ctx.Actor.ID)
		return WaitFallback()
	}

	cmd, declined := commandFrom(parsed)
	if declined {
		return nil
	}
	if cmd == nil || !p.known[cmd.Tool] {
		if cmd != nil {
			slog.Debug("planner proposed unknown tool", "actor", ctx.Actor.ID, "tool", cmd.Tool)
		}
		return WaitFallback()
	}
	cmd.Params = tools.NormalizeParams(cmd.Tool, cmd.Params)
	errMsg := p.validate(cmd.Tool, cmd.Params)
	if errMsg == "" {
		return cmd
	}

	// Stage 2: repair with a terse error mirror.
	repaired := p.repair(parsed, errMsg, cmd.Tool)
	if repaired != nil {
		cmd2, declined := commandFrom(repaired)
		if !declined && cmd2 != nil && p.known[cmd2.Tool] {
			cmd2.Params = tools.NormalizeParams(cmd2.Tool, cmd2.Params)
			if err2 := p.validate(cmd2.Tool, cmd2.Params); err2 == "" {
				return cmd2
			} else {
				slog.Debug("planner repair still invalid", "actor", ctx.Actor.ID, "error", err2)
			}
		}
	}

	// Stage 3: fallback.
	slog.Debug("planner falling back to wait", "actor", ctx.Actor.ID, "error", errMsg)
	return WaitFallback()
}

// commandFrom converts the parsed object into a Command. declined is true
// when the model explicitly produced a null tool.
func commandFrom(obj map[string]any) (cmd *Command, declined bool) {
	toolRaw, present := obj["tool"]
	if !present {
		// An empty reply (the connector's transport fallback) is a parse
		// failure, not a deliberate pass.
		return nil, false
	}
	if toolRaw == nil {
		return nil, true
	}
	name, ok := toolRaw.(string)
	if !ok {
		return nil, false
	}
	switch name {
	case "", "null", "none":
		return nil, true
	}
	params, _ := obj["params"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	return &Command{Tool: name, Params: params}, false
}

// validate checks required keys and one_of groups against the tool's
// schema, returning "" when the params pass.
func (p *Planner) validate(tool string, params map[string]any) string {
	spec, ok := p.schemas[tool]
	if !ok {
		return ""
	}
	for _, key := range spec.Required {
		if _, present := params[key]; !present {
			return fmt.Sprintf("missing required param %q", key)
		}
	}
	for _, group := range spec.OneOf {
		found := false
		for _, key := range group {
			if _, present := params[key]; present {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("one of %v is required", group)
		}
	}
	return ""
}

// repair re-asks the model once, mirroring the offending output, the
// expected schema, and an example.
func (p *Planner) repair(prev map[string]any, errMsg, toolHint string) map[string]any {
	spec := p.schemas[toolHint]
	clarifier := map[string]any{
		"context": map[string]any{
			"error":           errMsg,
			"last_output":     prev,
			"expected_schema": spec,
			"example":         spec.Example,
		},
		"instruction": "Repair your output to satisfy expected_schema. Return ONLY a single JSON object {tool, params}.",
	}
	raw, err := json.Marshal(clarifier)
	if err != nil {
		return nil
	}
	reply, err := p.client.Chat([]llm.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: string(raw)},
	})
	if err != nil {
		return nil
	}
	obj, ok := llm.ExtractJSONObject(reply)
	if !ok {
		return nil
	}
	return obj
}
