package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/talgya/hamlet/internal/world"
)

// ConversationLine is one utterance in a conversation's append-only
// history.
type ConversationLine struct {
	Speaker string `json:"speaker"`
	Tick    int    `json:"tick"`
	Content string `json:"content"`
}

// Conversation is a multi-party speech session with explicit turn
// ordering and location affinity.
type Conversation struct {
	ID                  string             `json:"conversation_id"`
	Participants        []string           `json:"participants"`
	TurnOrder           []string           `json:"turn_order"`
	CurrentSpeaker      string             `json:"current_speaker,omitempty"`
	StartTick           int                `json:"start_tick"`
	LastInteractionTick int                `json:"last_interaction_tick"`
	History             []ConversationLine `json:"history"`
	LocationID          string             `json:"location_id"`
}

func (c *Conversation) hasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

func (c *Conversation) removeParticipant(id string) {
	for i, p := range c.Participants {
		if p == id {
			c.Participants = append(c.Participants[:i], c.Participants[i+1:]...)
			return
		}
	}
}

// ConversationFor returns the actor's active conversation, or nil.
func (e *Engine) ConversationFor(actorID string) *Conversation {
	id, ok := e.actorConversation[actorID]
	if !ok {
		return nil
	}
	return e.conversations[id]
}

// handleTalk runs the conversation state machine over a talk event:
// interjections join the queue tail, a first targeted line starts a new
// conversation, a current speaker's line advances the turn, and an
// out-of-turn line is ignored by the machine.
func (e *Engine) handleTalk(ev world.Event) {
	speakerID := ev.ActorID
	content := ev.Payload.String("content")
	targetID := ev.Payload.String("recipient_id")
	if targetID == "" {
		targetID = ev.Target()
	}
	currentLoc := e.World.FindAgentLocation(speakerID)

	if ev.Payload.Bool("interject", false) {
		if convoID := ev.Payload.String("conversation_id"); convoID != "" {
			e.handleInterjection(ev, convoID, speakerID, content, targetID, currentLoc)
		}
		return
	}

	convoID, inConvo := e.actorConversation[speakerID]
	if !inConvo {
		// A targeted line to a co-located agent starts a conversation;
		// otherwise the line is narrated standalone.
		if targetID == "" || e.World.FindAgentLocation(targetID) != currentLoc {
			e.narrate(ev)
			return
		}
		convo := &Conversation{
			ID:                  "convo_" + uuid.NewString(),
			Participants:        []string{speakerID, targetID},
			TurnOrder:           []string{targetID},
			CurrentSpeaker:      speakerID,
			StartTick:           e.tick,
			LastInteractionTick: e.tick,
			History:             []ConversationLine{{Speaker: speakerID, Tick: e.tick, Content: content}},
			LocationID:          currentLoc,
		}
		e.conversations[convo.ID] = convo
		e.actorConversation[speakerID] = convo.ID
		e.actorConversation[targetID] = convo.ID
		e.narrate(ev)
		e.advanceConversationTurn(convo.ID, targetID)
		return
	}

	convo := e.conversations[convoID]
	if convo == nil || convo.CurrentSpeaker != speakerID {
		// Out of turn: the state machine ignores the line.
		return
	}
	convo.History = append(convo.History, ConversationLine{Speaker: speakerID, Tick: e.tick, Content: content})
	convo.LastInteractionTick = e.tick
	e.narrate(ev)
	e.advanceConversationTurn(convoID, targetID)
}

// handleInterjection adds a co-located outsider to the conversation tail;
// the line lands in history, but the turn only advances when the
// interjector already held it.
func (e *Engine) handleInterjection(ev world.Event, convoID, speakerID, content, targetID, currentLoc string) {
	convo := e.conversations[convoID]
	if convo == nil {
		return
	}
	if currentLoc == "" || currentLoc != convo.LocationID {
		return
	}
	if !convo.hasParticipant(speakerID) {
		convo.Participants = append(convo.Participants, speakerID)
		e.actorConversation[speakerID] = convoID
		if speakerID != convo.CurrentSpeaker {
			inQueue := false
			for _, id := range convo.TurnOrder {
				if id == speakerID {
					inQueue = true
					break
				}
			}
			if !inQueue {
				convo.TurnOrder = append(convo.TurnOrder, speakerID)
			}
		}
	}
	convo.History = append(convo.History, ConversationLine{Speaker: speakerID, Tick: e.tick, Content: content})
	convo.LastInteractionTick = e.tick
	e.narrate(ev)
	if convo.CurrentSpeaker == speakerID {
		e.advanceConversationTurn(convoID, targetID)
	}
}

// advanceConversationTurn rotates the queue: an addressed participant
// jumps to the front, the previous speaker goes to the back, and the
// conversation dissolves when nobody is left to speak.
func (e *Engine) advanceConversationTurn(convoID, hintTarget string) {
	convo := e.conversations[convoID]
	if convo == nil {
		return
	}
	current := convo.CurrentSpeaker

	queue := convo.TurnOrder[:0:0]
	for _, id := range convo.TurnOrder {
		if id != current && convo.hasParticipant(id) {
			queue = append(queue, id)
		}
	}
	if hintTarget != "" && hintTarget != current && convo.hasParticipant(hintTarget) {
		filtered := queue[:0:0]
		filtered = append(filtered, hintTarget)
		for _, id := range queue {
			if id != hintTarget {
				filtered = append(filtered, id)
			}
		}
		queue = filtered
	}
	if current != "" && convo.hasParticipant(current) {
		queue = append(queue, current)
	}

	var next string
	if len(queue) > 0 {
		next = queue[0]
		queue = queue[1:]
	}
	convo.TurnOrder = queue
	convo.CurrentSpeaker = next
	convo.LastInteractionTick = e.tick

	if len(convo.Participants) < 2 || next == "" {
		e.dissolveConversation(convoID)
	}
}

// leaveConversation removes the actor; if they held the floor the queue
// advances immediately.
func (e *Engine) leaveConversation(actorID string) {
	convoID, ok := e.actorConversation[actorID]
	if !ok {
		return
	}
	convo := e.conversations[convoID]
	if convo == nil {
		delete(e.actorConversation, actorID)
		return
	}
	convo.removeParticipant(actorID)
	if convo.CurrentSpeaker == actorID {
		convo.CurrentSpeaker = ""
		e.advanceConversationTurn(convoID, "")
	}
	remaining := convo.TurnOrder[:0:0]
	for _, id := range convo.TurnOrder {
		if id != actorID {
			remaining = append(remaining, id)
		}
	}
	convo.TurnOrder = remaining
	delete(e.actorConversation, actorID)
	if len(convo.Participants) < 2 {
		e.dissolveConversation(convoID)
	} else {
		convo.LastInteractionTick = e.tick
	}
}

func (e *Engine) dissolveConversation(convoID string) {
	convo, ok := e.conversations[convoID]
	if !ok {
		return
	}
	delete(e.conversations, convoID)
	for _, pid := range convo.Participants {
		if e.actorConversation[pid] == convoID {
			delete(e.actorConversation, pid)
		}
	}
}

// gcConversations removes conversations that have gone stale or whose
// participants dispersed from the conversation's location.
func (e *Engine) gcConversations() {
	var stale []string
	for convoID, convo := range e.conversations {
		if e.tick-convo.LastInteractionTick > conversationTimeout {
			stale = append(stale, convoID)
			continue
		}
		if convo.LocationID == "" {
			continue
		}
		colocated := 0
		for _, pid := range convo.Participants {
			if e.World.FindAgentLocation(pid) == convo.LocationID {
				colocated++
			}
		}
		if colocated < 2 {
			stale = append(stale, convoID)
		}
	}
	sort.Strings(stale)
	for _, convoID := range stale {
		e.dissolveConversation(convoID)
	}
}
