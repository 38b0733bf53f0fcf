// Package llm provides the connector to an OpenAI-compatible chat
// endpoint plus the text utilities that recover a JSON command from a
// model reply (hidden-reasoning stripping, balanced-brace extraction).
package llm

import (
	"encoding/json"
	"log/slog"
	"os"
)

// MemoryConfig tunes the perception and retrieval knobs.
type MemoryConfig struct {
	PerceptionBufferSize int `json:"perception_buffer_size"`
	RetrievalTopK        int `json:"retrieval_top_k"`
}

// Config is the connector configuration loaded from config/llm.json.
type Config struct {
	Endpoint        string            `json:"endpoint"`
	Model           string            `json:"model"`
	APIKey          string            `json:"api_key,omitempty"`
	MaxOutputTokens int               `json:"max_output_tokens"`
	ExtraHeaders    map[string]string `json:"extra_headers,omitempty"`
	Debug           bool              `json:"debug"`
	Memory          MemoryConfig      `json:"memory"`
}

// DefaultConfig returns the safe defaults used when the config
// file is missing or unreadable.
func DefaultConfig() Config {
	return Config{
		Endpoint:        "https://openrouter.ai/api/v1/chat/completions",
		Model:           "openai/gpt-4o-mini",
		MaxOutputTokens: 256,
		Memory: MemoryConfig{
			PerceptionBufferSize: 30,
			RetrievalTopK:        6,
		},
	}
}

// LoadConfig reads config/llm.json, degrading to defaults with a warning
// when the file is missing or invalid. Hosted endpoints missing an
// api_key fail at request time, not here.
func LoadConfig(path string) Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("llm config not found, using safe defaults", "path", path, "error", err)
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("llm config invalid, using safe defaults", "path", path, "error", err)
		return DefaultConfig()
	}
	if cfg.Memory.PerceptionBufferSize <= 0 {
		cfg.Memory.PerceptionBufferSize = 30
	}
	if cfg.Memory.RetrievalTopK <= 0 {
		cfg.Memory.RetrievalTopK = 6
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = 256
	}
	return cfg
}
