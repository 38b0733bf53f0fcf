package planner

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/talgya/hamlet/internal/world"
)

const (
	maxGoalsInPrompt  = 5
	maxCoreInPrompt   = 10
	maxSTMInPrompt    = 10
	convoKeywordLines = 4
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// tokenize lowercases and splits text into keyword tokens.
func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// keywordSet gathers retrieval keywords from the actor identity, the
// location description, the tail of the conversation, and recent
// perception payloads.
func keywordSet(ctx Context, history []string) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(tokens []string) {
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				keywords = append(keywords, t)
			}
		}
	}
	add(tokenize(ctx.Actor.Name))
	add(tokenize(ctx.Actor.ID))
	add(tokenize(ctx.Location.Description))
	start := len(history) - convoKeywordLines
	if start < 0 {
		start = 0
	}
	for _, line := range history[start:] {
		add(tokenize(line))
	}
	stm := ctx.Actor.ShortTermMemory
	if len(stm) > maxSTMInPrompt {
		stm = stm[len(stm)-maxSTMInPrompt:]
	}
	for _, p := range stm {
		if raw, err := json.Marshal(p.Payload); err == nil {
			add(tokenize(string(raw)))
		}
	}
	return keywords
}

// scoreMemory ranks a long-term memory for retrieval: keyword hits in
// text and payload, a status multiplier (archived x0.6, consolidated
// x1.2), confidence clamped to [0.3, 1.2], and a recency bonus of at most
// 2.0.
func scoreMemory(keywords []string, m world.Memory) float64 {
	blob := m.Text
	if raw, err := json.Marshal(m.Payload); err == nil {
		blob += " " + string(raw)
	}
	blob = strings.ToLower(blob)

	score := 0.0
	for _, k := range keywords {
		if strings.Contains(blob, k) {
			score += 1.0
		}
	}
	switch m.Status {
	case world.MemoryArchived:
		score *= 0.6
	case world.MemoryConsolidated:
		score *= 1.2
	}
	conf := m.Confidence
	if conf < 0.3 {
		conf = 0.3
	} else if conf > 1.2 {
		conf = 1.2
	}
	score *= conf

	recency := float64(m.Tick) / 100000.0
	if recency > 2.0 {
		recency = 2.0
	}
	return score + recency
}

// BuildWorkingMemory assembles the per-turn slice: the first goals and
// core memories, the STM tail, and the top-K retrieved long-term
// memories.
func BuildWorkingMemory(ctx Context, history []string, topK int) WorkingMemory {
	wm := WorkingMemory{
		Goals:             head(ctx.Actor.Goals, maxGoalsInPrompt),
		CoreMemories:      head(ctx.Actor.CoreMemories, maxCoreInPrompt),
		Perceptions:       tail(ctx.Actor.ShortTermMemory, maxSTMInPrompt),
		RetrievedMemories: []world.Memory{},
	}
	if len(ctx.Actor.Memories) == 0 || topK <= 0 {
		return wm
	}

	keywords := keywordSet(ctx, history)
	type scored struct {
		score float64
		index int
	}
	ranked := make([]scored, 0, len(ctx.Actor.Memories))
	for i, m := range ctx.Actor.Memories {
		ranked = append(ranked, scored{score: scoreMemory(keywords, m), index: i})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	for _, r := range ranked {
		wm.RetrievedMemories = append(wm.RetrievedMemories, ctx.Actor.Memories[r.index])
	}
	return wm
}

// repetitionHint surfaces the actor's most recent own action from STM.
func repetitionHint(ctx Context) RepetitionHint {
	hint := RepetitionHint{AvoidRepeatWithin: 2, LookCooldown: 5}
	stm := ctx.Actor.ShortTermMemory
	start := len(stm) - 6
	if start < 0 {
		start = 0
	}
	for i := len(stm) - 1; i >= start; i-- {
		if stm[i].ActorID == ctx.Actor.ID {
			hint.LastToolByActor = string(stm[i].Kind)
			break
		}
	}
	return hint
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
