package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripReasoningRemovesAllBlocks(t *testing.T) {
	in := "<think>first</think>middle<THINK>second</THINK> end"
	assert.Equal(t, "middle end", StripReasoning(in))

	in = "<thought>a</thought><reasoning>b</reasoning>{\"tool\":\"wait\"}"
	assert.Equal(t, `{"tool":"wait"}`, StripReasoning(in))

	assert.Equal(t, "no tags here", StripReasoning("  no tags here  "))
}

func TestExtractThink(t *testing.T) {
	assert.Equal(t, "plan the route", ExtractThink("<think> plan the route </think>{}"))
	assert.Equal(t, "", ExtractThink("{}"))
}

func TestExtractJSONObjectDirect(t *testing.T) {
	obj, ok := ExtractJSONObject(`<think>hmm</think>{"tool":"move","params":{"target_location":"market_square"}}`)
	require.True(t, ok)
	assert.Equal(t, "move", obj["tool"])
}

func TestExtractJSONObjectLastBalanced(t *testing.T) {
	in := `Sure! Here is something: {"tool":"look","params":{}} but actually {"tool":"wait","params":{"ticks":2}} trailing prose`
	obj, ok := ExtractJSONObject(in)
	require.True(t, ok)
	assert.Equal(t, "wait", obj["tool"])
	params := obj["params"].(map[string]any)
	assert.EqualValues(t, 2, params["ticks"])
}

func TestExtractJSONObjectNestedBraces(t *testing.T) {
	in := `noise {"tool":"reason","params":{"desired_outcome":{"add_goal":{"text":"x","type":"task"}}}} tail`
	obj, ok := ExtractJSONObject(in)
	require.True(t, ok)
	assert.Equal(t, "reason", obj["tool"])
}

func TestExtractJSONObjectGarbageFails(t *testing.T) {
	_, ok := ExtractJSONObject("<think>planning...</think>garbage")
	assert.False(t, ok)

	_, ok = ExtractJSONObject("{broken")
	assert.False(t, ok)
}

func TestExtractJSONObjectBracesInsideStrings(t *testing.T) {
	in := `{"tool":"talk","params":{"content":"use { and } freely"}}`
	obj, ok := ExtractJSONObject(in)
	require.True(t, ok)
	assert.Equal(t, "talk", obj["tool"])
}
