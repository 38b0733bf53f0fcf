package llm

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/simerr"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", cfg.Endpoint)
	assert.Equal(t, 30, cfg.Memory.PerceptionBufferSize)
	assert.Equal(t, 6, cfg.Memory.RetrievalTopK)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.json")
	writeFile(t, path, `{
		"endpoint": "http://localhost:8000/v1/chat/completions",
		"model": "local-model",
		"max_output_tokens": -1,
		"memory": {"perception_buffer_size": 12, "retrieval_top_k": 3}
	}`)
	cfg := LoadConfig(path)
	assert.Equal(t, "local-model", cfg.Model)
	assert.Equal(t, -1, cfg.MaxOutputTokens)
	assert.Equal(t, 12, cfg.Memory.PerceptionBufferSize)
	assert.Equal(t, 3, cfg.Memory.RetrievalTopK)
}

func TestChatReturnsMessageContent(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"content":"{\"tool\":\"wait\",\"params\":{\"ticks\":1}}"}}]}`)
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "test-model", MaxOutputTokens: 128})
	reply, err := client.Chat([]Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Contains(t, reply, `"tool":"wait"`)

	// The JSON guard is prepended as the first system message.
	msgs := gotBody["messages"].([]any)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Contains(t, first["content"], "single JSON object")
	assert.EqualValues(t, 128, gotBody["max_tokens"])
}

func TestChatFallsBackToTopLevelContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"content":"{}"}`)
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "m"})
	reply, err := client.Chat(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", reply)
}

func TestChatHTTPErrorReturnsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "m"})
	reply, err := client.Chat(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", reply)
}

func TestChatTransportFailureReturnsEmptyObject(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://127.0.0.1:1/never", Model: "m"})
	reply, err := client.Chat(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", reply)
}

func TestChatHostedEndpointRequiresKey(t *testing.T) {
	client := NewClient(Config{Endpoint: "https://openrouter.ai/api/v1/chat/completions", Model: "m"})
	_, err := client.Chat(nil)
	require.Error(t, err)
	assert.True(t, simerr.Is(err, simerr.ConfigKind))
}

func TestParseCommandExtractsObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[{"message":{"content":"<think>ok</think>{\"tool\":\"look\",\"params\":{}}"}}]}`)
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "m"})
	obj := client.ParseCommand("system", "look around", nil)
	assert.Equal(t, "look", obj["tool"])
}
