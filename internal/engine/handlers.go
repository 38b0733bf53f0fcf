package engine

import (
	"log/slog"

	"github.com/talgya/hamlet/internal/combat"
	"github.com/talgya/hamlet/internal/world"
)

// handleEvent dispatches one drained event. Handlers must be total: a
// panic is recovered and logged so the tick proceeds with the remaining
// events.
func (e *Engine) handleEvent(ev world.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "kind", ev.Kind, "actor", ev.ActorID, "panic", r)
		}
	}()

	switch ev.Kind {
	case world.EventAttackAttempt:
		e.handleAttackAttempt(ev)
	case world.EventDamageApplied:
		e.handleDamageApplied(ev)
	case world.EventTalk:
		e.handleTalk(ev)
	case world.EventToggleStarvation:
		e.handleToggleStarvation(ev)
	case world.EventLeaveConvo:
		e.leaveConversation(ev.ActorID)
	case world.EventNPCDied:
		e.World.Apply(ev)
		e.narrate(ev)
		delete(e.lastActorLines, ev.ActorID)
	default:
		// Plain world mutations and observational events.
		e.World.Apply(ev)
		e.narrate(ev)
	}

	e.recordPerception(ev)
	e.recordActorLine(ev)
	e.gcConversations()
}

// narrate renders the event, caches the line, and fans it out to the
// journal and any front-end hook.
func (e *Engine) narrate(ev world.Event) {
	text := e.Narrator.Render(ev)
	e.recent = append(e.recent, NarratedEvent{Event: ev, Narration: text})
	if len(e.recent) > recentEventCap {
		e.recent = e.recent[len(e.recent)-recentEventCap:]
	}
	if e.journal != nil {
		e.journal.RecordEvent(ev, text)
	}
	if text != "" && e.OnNarration != nil {
		e.OnNarration(ev, text)
	}
}

// handleAttackAttempt resolves the swing and enqueues the outcome events
// at the current tick; the drain loop applies them before it returns.
func (e *Engine) handleAttackAttempt(ev world.Event) {
	attacker, err := e.World.Agent(ev.ActorID)
	if err != nil {
		slog.Warn("attack by unknown agent", "actor", ev.ActorID)
		return
	}
	target, err := e.World.Agent(ev.Target())
	if err != nil {
		slog.Warn("attack on unknown agent", "target", ev.Target())
		return
	}
	result := combat.ResolveAttack(e.World, e.Entropy, attacker, target)
	payload := world.Payload{
		"to_hit":    result.ToHit,
		"target_ac": result.TargetAC,
	}
	if result.Hit {
		payload["damage"] = result.Damage
		e.queue = append(e.queue,
			world.Event{
				Kind:      world.EventAttackHit,
				Tick:      e.tick,
				ActorID:   ev.ActorID,
				TargetIDs: ev.TargetIDs,
				Payload:   payload,
			},
			world.Event{
				Kind:      world.EventDamageApplied,
				Tick:      e.tick,
				ActorID:   ev.ActorID,
				TargetIDs: ev.TargetIDs,
				Payload: world.Payload{
					"amount":      result.Damage,
					"damage_type": combat.Weapon(e.World, attacker).DamageType,
				},
			},
		)
	} else {
		e.queue = append(e.queue, world.Event{
			Kind:      world.EventAttackMissed,
			Tick:      e.tick,
			ActorID:   ev.ActorID,
			TargetIDs: ev.TargetIDs,
			Payload:   payload,
		})
	}
	e.narrate(ev)
}

// handleDamageApplied applies the damage and schedules death when the
// target hits zero.
func (e *Engine) handleDamageApplied(ev world.Event) {
	e.World.Apply(ev)
	e.narrate(ev)
	target, err := e.World.Agent(ev.Target())
	if err != nil {
		return
	}
	if target.HP <= 0 && !target.IsDead() {
		var targetIDs []string
		if locID := e.World.FindAgentLocation(target.ID); locID != "" {
			targetIDs = []string{locID}
		}
		e.queue = append(e.queue, world.Event{
			Kind:      world.EventNPCDied,
			Tick:      e.tick,
			ActorID:   target.ID,
			TargetIDs: targetIDs,
		})
	}
}

// handleToggleStarvation flips the simulator's hunger clock. Disabling
// also resets everyone to sated so damage doesn't resume retroactively.
func (e *Engine) handleToggleStarvation(ev world.Event) {
	e.starvationEnabled = ev.Payload.Bool("enabled", true)
	if !e.starvationEnabled {
		for _, a := range e.World.Agents {
			a.HungerStage = world.HungerSated
			a.LastMealTick = e.tick
		}
	}
	e.narrate(ev)
}

// recordActorLine caches the actor's latest narrated line for UI bubbles.
func (e *Engine) recordActorLine(ev world.Event) {
	if ev.ActorID == "" || ev.Kind == world.EventNPCDied {
		return
	}
	if len(e.recent) == 0 {
		return
	}
	last := e.recent[len(e.recent)-1]
	if last.Event.Kind == ev.Kind && last.Event.ActorID == ev.ActorID && last.Narration != "" {
		e.lastActorLines[ev.ActorID] = last.Narration
	}
}
