// Package engine runs the simulation: the tick loop, event handling,
// perception fan-out, conversation turn-taking, and NPC planning. The
// world is mutated only from this package's single event-processing
// context; front ends submit commands through one synchronized entry
// point.
package engine

import (
	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/narrator"
	"github.com/talgya/hamlet/internal/planner"
	"github.com/talgya/hamlet/internal/simerr"
	"github.com/talgya/hamlet/internal/tools"
	"github.com/talgya/hamlet/internal/world"
)

// Journal receives best-effort records of the run. Implementations must
// never fail the engine path.
type Journal interface {
	RecordEvent(ev world.Event, narration string)
}

// NarratedEvent pairs an applied event with its rendered line.
type NarratedEvent struct {
	Event     world.Event `json:"event"`
	Narration string      `json:"narration,omitempty"`
}

// Options configure a new engine.
type Options struct {
	PlayerID             string
	Seed                 int64
	PerceptionBufferSize int
	Planner              *planner.Planner
	Journal              Journal
}

// recentEventCap bounds the narrated-event ring kept for front ends.
const recentEventCap = 200

// conversationTimeout is the stale-conversation GC horizon in ticks.
const conversationTimeout = 300

// Engine is the simulator. Not safe for concurrent use; callers
// serialize access (the HTTP adapter holds a mutex).
type Engine struct {
	World    *world.World
	Tools    tools.Registry
	Narrator *narrator.Narrator
	Planner  *planner.Planner
	// Entropy is the engine's single seeded randomness source; tests
	// substitute a scripted roller.
	Entropy  entropy.Roller
	PlayerID string

	// OnNarration, when set, receives every narrated line as it happens.
	OnNarration func(ev world.Event, text string)

	journal Journal

	tick              int
	queue             []world.Event
	starvationEnabled bool

	perceptionBufferSize int

	conversations     map[string]*Conversation
	actorConversation map[string]string

	turnOrder []string
	turnIndex int

	lastActorLines map[string]string
	recent         []NarratedEvent
}

// New builds an engine over a loaded world.
func New(w *world.World, opts Options) *Engine {
	if opts.PerceptionBufferSize <= 0 {
		opts.PerceptionBufferSize = world.DefaultSTMCapacity
	}
	return &Engine{
		World:                w,
		Tools:                tools.DefaultRegistry(),
		Narrator:             narrator.New(w),
		Planner:              opts.Planner,
		Entropy:              entropy.NewSource(opts.Seed),
		PlayerID:             opts.PlayerID,
		journal:              opts.Journal,
		starvationEnabled:    true,
		perceptionBufferSize: opts.PerceptionBufferSize,
		conversations:        make(map[string]*Conversation),
		actorConversation:    make(map[string]string),
		lastActorLines:       make(map[string]string),
	}
}

// Tick returns the current tick.
func (e *Engine) Tick() int {
	return e.tick
}

// StarvationEnabled reports the global hunger clock state.
func (e *Engine) StarvationEnabled() bool {
	return e.starvationEnabled
}

// LastActorLine returns the cached most recent narrated line for an
// actor, used by front ends for speech bubbles.
func (e *Engine) LastActorLine(actorID string) string {
	return e.lastActorLines[actorID]
}

// RecentEvents returns up to n of the most recently narrated events,
// oldest first.
func (e *Engine) RecentEvents(n int) []NarratedEvent {
	if n <= 0 || n > len(e.recent) {
		n = len(e.recent)
	}
	out := make([]NarratedEvent, n)
	copy(out, e.recent[len(e.recent)-n:])
	return out
}

// ProcessCommand validates a command for the actor and enqueues its
// events: unknown tool, busy actor, and invalid intent each surface a
// typed error with no state change. On success the actor's availability
// clock advances by the tool's effective time cost.
func (e *Engine) ProcessCommand(actorID string, cmd planner.Command) error {
	tool, ok := e.Tools[cmd.Tool]
	if !ok {
		return simerr.New(simerr.UnknownToolKind, "unknown tool %q", cmd.Tool)
	}
	actor, err := e.World.Agent(actorID)
	if err != nil {
		return err
	}
	if actor.NextAvailableTick > e.tick {
		return simerr.New(simerr.BusyKind, "%s is busy until tick %d", actorID, actor.NextAvailableTick)
	}
	params := tools.NormalizeParams(cmd.Tool, tools.Params(cmd.Params))
	if !tool.ValidateIntent(params, e.World, actor) {
		return simerr.New(simerr.InvalidIntentKind, "invalid intent for %q", cmd.Tool)
	}

	timeCost := tool.TimeCost()
	if cmd.Tool == "wait" || cmd.Tool == "rest" {
		timeCost = params.Int("ticks", 1)
		if timeCost < 1 {
			timeCost = 1
		}
	}

	e.queue = append(e.queue, tool.GenerateEvents(params, e.World, actor, e.tick)...)
	actor.NextAvailableTick = e.tick + timeCost
	return nil
}

// AdvanceTick advances time by exactly one tick: hunger events are
// queued when starvation is on, then every event scheduled at or before
// the new tick is handled, including follow-ups enqueued mid-drain.
func (e *Engine) AdvanceTick() {
	e.tick++
	if e.starvationEnabled {
		e.queue = append(e.queue, e.World.UpdateHunger(e.tick)...)
	}
	e.drainReady()
}

// drainReady handles every queued event whose tick is due, looping so
// follow-ups enqueued by handlers run within the same tick.
func (e *Engine) drainReady() {
	for {
		var ready, pending []world.Event
		for _, ev := range e.queue {
			if ev.Tick <= e.tick {
				ready = append(ready, ev)
			} else {
				pending = append(pending, ev)
			}
		}
		if len(ready) == 0 {
			return
		}
		e.queue = pending
		for _, ev := range ready {
			e.handleEvent(ev)
		}
	}
}

// PlayerAct runs an explicit player command: validate, enqueue, then
// advance time once so the events drain.
func (e *Engine) PlayerAct(cmd planner.Command) error {
	if e.PlayerID == "" {
		return simerr.New(simerr.LookupKind, "no player agent configured")
	}
	if err := e.ProcessCommand(e.PlayerID, cmd); err != nil {
		return err
	}
	e.AdvanceTick()
	return nil
}

// NPCRound lets every eligible NPC act once, then advances time by one
// tick. Individual turns never advance time themselves.
func (e *Engine) NPCRound() {
	for e.RunOneNPCTurn() {
	}
	e.AdvanceTick()
}
