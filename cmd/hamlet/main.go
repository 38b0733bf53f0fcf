// Command hamlet is the interactive terminal front end: the player types
// natural language (or raw JSON commands), NPCs take their rounds in
// between.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/journal"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/planner"
	"github.com/talgya/hamlet/internal/world"
)

const intentPrompt = `You are an intent detector for a text RPG. The player will type any natural language.
Your job: map the input to EXACTLY ONE game tool and parameters, returning ONLY a single JSON object.
Output format (no prose, no code fences): {"tool": string, "params": object}
Available tools and schemas:
{"tool":"look","params":{}}
{"tool":"move","params":{"target_location":"<loc_id>"}}
{"tool":"grab","params":{"item_id":"<item_id>"}}
{"tool":"drop","params":{"item_id":"<item_id>"}}
{"tool":"attack","params":{"target_id":"<npc_id>"}}
{"tool":"talk","params":{"content":"<text>"}}
{"tool":"talk","params":{"target_id":"<npc_id>","content":"<text>"}}
{"tool":"talk_loud","params":{"content":"<text>"}}
{"tool":"scream","params":{"content":"<text>"}}
{"tool":"inventory","params":{}}
{"tool":"stats","params":{}}
{"tool":"equip","params":{"item_id":"<item_id>","slot":"<slot>"}}
{"tool":"unequip","params":{"slot":"<slot>"}}
{"tool":"analyze","params":{"item_id":"<item_id>"}}
{"tool":"eat","params":{"item_id":"<item_id>"}}
{"tool":"give","params":{"item_id":"<item_id>","target_id":"<npc_id>"}}
{"tool":"open","params":{"target_location":"<loc_id>"}}
{"tool":"close","params":{"target_location":"<loc_id>"}}
{"tool":"toggle_starvation","params":{"enabled":true}}
{"tool":"wait","params":{"ticks":1}}
{"tool":"rest","params":{"ticks":1}}
Use ids from the provided context. If the input is unclear, pick wait.`

func main() {
	dataDir := flag.String("data", "data", "world data directory")
	configPath := flag.String("config", "config/llm.json", "LLM config path")
	journalPath := flag.String("journal", "", "run journal path (empty disables)")
	seed := flag.Int64("seed", 1, "engine PRNG seed")
	playerID := flag.String("player", "", "agent id controlled by the player (empty = observe)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	color := isatty.IsTerminal(os.Stdout.Fd())

	w, err := world.Load(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load world:", err)
		os.Exit(1)
	}

	cfg := llm.LoadConfig(*configPath)
	client := llm.NewClient(cfg)

	opts := engine.Options{
		PlayerID:             *playerID,
		Seed:                 *seed,
		PerceptionBufferSize: cfg.Memory.PerceptionBufferSize,
		Planner:              planner.New(client, cfg.Memory.RetrievalTopK),
	}
	if *journalPath != "" {
		db, err := journal.Open(*journalPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to open journal:", err)
			os.Exit(1)
		}
		defer db.Close()
		client.SetTracer(db)
		opts.Journal = db
	}
	eng := engine.New(w, opts)
	eng.OnNarration = func(ev world.Event, text string) {
		if color && ev.ActorID == *playerID {
			fmt.Printf("\033[1m%s\033[0m\n", text)
			return
		}
		fmt.Println(text)
	}

	fmt.Printf("hamlet: %s agents, %s locations\n",
		humanize.Comma(int64(len(w.Agents))), humanize.Comma(int64(len(w.LocationsStatic))))
	if *playerID == "" {
		fmt.Println("observer mode: press enter to run an NPC round, /quit to exit")
	} else {
		fmt.Printf("playing as %s: type what you do, or raw JSON like {\"tool\":\"look\",\"params\":{}}\n", *playerID)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[tick %s] > ", humanize.Comma(int64(eng.Tick())))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit" || line == "/exit":
			return
		case line == "":
			eng.NPCRound()
			continue
		case strings.HasPrefix(line, "/editor "):
			runEditorCommand(eng, strings.TrimPrefix(line, "/editor "))
			continue
		}
		if *playerID == "" {
			fmt.Println("no player agent; press enter for an NPC round")
			continue
		}

		cmd := parsePlayerInput(eng, client, *playerID, line)
		if cmd == nil {
			fmt.Println("could not understand that")
			continue
		}
		if err := eng.PlayerAct(*cmd); err != nil {
			fmt.Println("error:", err)
			continue
		}
		eng.NPCRound()
	}
}

// parsePlayerInput accepts raw {"tool": ...} JSON directly and routes
// anything else through the LLM intent detector with a compact context.
func parsePlayerInput(eng *engine.Engine, client *llm.Client, playerID, line string) *planner.Command {
	if strings.HasPrefix(line, "{") {
		var cmd planner.Command
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			return nil
		}
		if cmd.Params == nil {
			cmd.Params = map[string]any{}
		}
		return &cmd
	}

	context := playerContext(eng, playerID)
	obj := client.ParseCommand(intentPrompt, line, context)
	tool, _ := obj["tool"].(string)
	if tool == "" {
		return nil
	}
	params, _ := obj["params"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	return &planner.Command{Tool: tool, Params: params}
}

// playerContext gives the intent detector the ids it can legally use.
func playerContext(eng *engine.Engine, playerID string) map[string]any {
	w := eng.World
	locID := w.FindAgentLocation(playerID)
	ctx := map[string]any{"location_id": locID}
	if state, ok := w.LocationsState[locID]; ok {
		var occupants, items, neighbors []string
		for _, id := range state.Occupants {
			if id != playerID {
				occupants = append(occupants, id)
			}
		}
		items = append(items, state.Items...)
		for nb := range state.Connections {
			neighbors = append(neighbors, nb)
		}
		ctx["occupants"] = occupants
		ctx["items"] = items
		ctx["neighbors"] = neighbors
	}
	if player, ok := w.Agents[playerID]; ok {
		ctx["inventory"] = player.Inventory
		ctx["slots"] = player.Slots
	}
	return ctx
}

// runEditorCommand handles the small authoring surface:
//
//	/editor spawn_npc <location> [name]
//	/editor spawn_item <location> <blueprint>
//	/editor move <agent> <location>
//	/editor edge <a> <b> open|closed
func runEditorCommand(eng *engine.Engine, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Println("editor: missing op")
		return
	}
	var err error
	switch fields[0] {
	case "spawn_npc":
		if len(fields) < 2 {
			err = fmt.Errorf("usage: spawn_npc <location> [name]")
			break
		}
		name := ""
		if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}
		var id string
		id, err = eng.SpawnAgent(fields[1], name)
		if err == nil {
			fmt.Println("spawned", id)
		}
	case "spawn_item":
		if len(fields) < 3 {
			err = fmt.Errorf("usage: spawn_item <location> <blueprint>")
			break
		}
		var id string
		id, err = eng.SpawnItem(fields[1], fields[2])
		if err == nil {
			fmt.Println("spawned", id)
		}
	case "move":
		if len(fields) < 3 {
			err = fmt.Errorf("usage: move <agent> <location>")
			break
		}
		err = eng.MoveActor(fields[1], fields[2])
	case "edge":
		if len(fields) < 4 {
			err = fmt.Errorf("usage: edge <a> <b> open|closed")
			break
		}
		err = eng.SetEdgeStatus(fields[1], fields[2], fields[3])
	default:
		err = fmt.Errorf("unknown editor op %q", fields[0])
	}
	if err != nil {
		fmt.Println("editor error:", err)
	}
}
