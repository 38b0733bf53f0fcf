package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/world"
)

// fakeChat replays canned replies, one per call.
type fakeChat struct {
	replies []string
	calls   int
}

func (f *fakeChat) Chat(messages []llm.Message) (string, error) {
	if f.calls >= len(f.replies) {
		return "{}", nil
	}
	reply := f.replies[f.calls]
	f.calls++
	return reply, nil
}

func plannerContext() Context {
	return Context{
		GameTick: 5,
		Actor: Persona{
			ID:   "npc_bard",
			Name: "Wren",
			HP:   10,
		},
		Location: LocationContext{
			ID: "town_square",
			Connections: map[string]*world.Connection{
				"market_square": {Status: world.EdgeOpen, Direction: world.DirE},
				"alley":         {Status: world.EdgeClosed, Direction: world.DirW},
			},
		},
		AvailableTools: []string{"move", "talk", "wait", "look"},
	}
}

func TestPlanAcceptsValidProposal(t *testing.T) {
	chat := &fakeChat{replies: []string{
		`<think>go shopping</think>{"tool":"move","params":{"target_location":"market_square"}}`,
	}}
	p := New(chat, 6)

	cmd := p.Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "move", cmd.Tool)
	assert.Equal(t, "market_square", cmd.Params["target_location"])
	assert.Equal(t, 1, chat.calls)
}

func TestPlanNormalizesAliases(t *testing.T) {
	chat := &fakeChat{replies: []string{
		`{"tool":"move","params":{"target":"market_square"}}`,
	}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "market_square", cmd.Params["target_location"])
}

func TestPlanClampsContent(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	chat := &fakeChat{replies: []string{
		`{"tool":"talk","params":{"content":"` + string(long) + `"}}`,
	}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Len(t, cmd.Params["content"], 200)
}

func TestPlanNullMeansNoAction(t *testing.T) {
	chat := &fakeChat{replies: []string{`null`}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	assert.Nil(t, cmd)

	chat = &fakeChat{replies: []string{`{"tool":null}`}}
	cmd = New(chat, 6).Plan(plannerContext(), nil)
	assert.Nil(t, cmd)
}

func TestPlanUnknownToolFallsBackToWait(t *testing.T) {
	chat := &fakeChat{replies: []string{`{"tool":"teleport","params":{}}`}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "wait", cmd.Tool)
	assert.EqualValues(t, 1, cmd.Params["ticks"])
	// Unknown tool skips the repair stage entirely.
	assert.Equal(t, 1, chat.calls)
}

func TestPlanRepairStageFixesParams(t *testing.T) {
	chat := &fakeChat{replies: []string{
		`{"tool":"attack","params":{}}`,
		`{"tool":"attack","params":{"target_id":"npc_guard"}}`,
	}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "attack", cmd.Tool)
	assert.Equal(t, "npc_guard", cmd.Params["target_id"])
	assert.Equal(t, 2, chat.calls)
}

func TestPlanGarbageDegradesToWait(t *testing.T) {
	// Scenario: the proposal is hidden reasoning plus garbage; an
	// unparseable proposal skips the repair stage.
	chat := &fakeChat{replies: []string{
		`<think>hmm</think>garbage`,
	}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "wait", cmd.Tool)
	assert.EqualValues(t, 1, cmd.Params["ticks"])
}

func TestPlanEmptyReplyDegradesToWait(t *testing.T) {
	// "{}" is what the connector returns on transport failure.
	chat := &fakeChat{replies: []string{`{}`}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "wait", cmd.Tool)
}

func TestPlanRepairStillInvalidFallsBackToWait(t *testing.T) {
	chat := &fakeChat{replies: []string{
		`{"tool":"give","params":{"item_id":"item_apple_1"}}`,
		`{"tool":"give","params":{"item_id":"item_apple_1"}}`,
	}}
	cmd := New(chat, 6).Plan(plannerContext(), nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "wait", cmd.Tool)
	assert.Equal(t, 2, chat.calls)
}
