package llm

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/talgya/hamlet/internal/simerr"
)

// Long-thinking local models can take minutes; the engine blocks on the
// call, so the timeout is the only bound.
const requestTimeout = 600 * time.Second

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tracer receives best-effort copies of each request/response pair (the
// hidden-reasoning trace log). Implementations must never block or fail
// the engine path.
type Tracer interface {
	TraceLLM(request, response string)
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tracer     Tracer
}

// NewClient builds a connector from config.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// SetTracer attaches a best-effort request/response tracer.
func (c *Client) SetTracer(t Tracer) {
	c.tracer = t
}

// Config returns the loaded configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// hosted reports whether the endpoint is a hosted service that requires
// an API key.
func (c *Client) hosted() bool {
	return strings.Contains(c.cfg.Endpoint, "openrouter.ai")
}

// jsonGuard is prepended to every conversation so models emit one JSON
// object with hidden reasoning, if any, wrapped before it.
var jsonGuard = Message{
	Role: "system",
	Content: "Output must be ONLY a single JSON object, no prose, no code fences. " +
		"If you produce hidden reasoning, wrap it in <think>...</think> BEFORE the JSON.",
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat   `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	// Some providers return content at the top level.
	Content string `json:"content"`
	Text    string `json:"text"`
}

// Chat sends the messages and returns the reply content. Transport, HTTP,
// and decode failures return "{}" so the planner path degrades to its
// wait fallback; only a missing key for a hosted endpoint is a hard error.
func (c *Client) Chat(messages []Message) (string, error) {
	if c.hosted() && c.cfg.APIKey == "" {
		return "", simerr.New(simerr.ConfigKind, "hosted endpoint %s requires an api_key", c.cfg.Endpoint)
	}

	req := chatRequest{
		Model:    c.cfg.Model,
		Messages: append([]Message{jsonGuard}, messages...),
	}
	if c.cfg.MaxOutputTokens > 0 {
		req.MaxTokens = c.cfg.MaxOutputTokens
	}
	if c.hosted() {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Error("llm request marshal failed", "error", err)
		return "{}", nil
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		slog.Error("llm request build failed", "error", err)
		return "{}", nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	for k, v := range c.cfg.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	if c.cfg.Debug {
		slog.Debug("llm request", "bytes", len(body), "model", c.cfg.Model)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Warn("llm transport failure", "error", err)
		c.trace(string(body), "")
		return "{}", nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("llm response read failed", "error", err)
		c.trace(string(body), "")
		return "{}", nil
	}
	c.trace(string(body), string(raw))

	if resp.StatusCode != http.StatusOK {
		slog.Warn("llm http error", "status", resp.StatusCode, "body", truncateForLog(raw))
		return "{}", nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		slog.Warn("llm empty response")
		return "{}", nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		slog.Warn("llm response decode failed", "error", err)
		return "{}", nil
	}

	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != "" {
		return parsed.Choices[0].Message.Content, nil
	}
	if parsed.Content != "" {
		return parsed.Content, nil
	}
	if parsed.Text != "" {
		return parsed.Text, nil
	}
	return "{}", nil
}

// ParseCommand sends free text through the connector with a
// command-parsing system prompt and returns the extracted JSON object.
// Used by front ends for natural-language player input.
func (c *Client) ParseCommand(systemPrompt, input string, context map[string]any) map[string]any {
	userPayload := input
	if context != nil {
		if raw, err := json.Marshal(map[string]any{"context": context, "input": input}); err == nil {
			userPayload = string(raw)
		}
	}
	reply, err := c.Chat([]Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPayload},
	})
	if err != nil {
		slog.Warn("command parse failed", "error", err)
		return map[string]any{}
	}
	if obj, ok := ExtractJSONObject(reply); ok {
		return obj
	}
	return map[string]any{}
}

func (c *Client) trace(request, response string) {
	if c.tracer == nil || !c.cfg.Debug {
		return
	}
	c.tracer.TraceLLM(request, response)
}

func truncateForLog(raw []byte) string {
	const max = 500
	if len(raw) > max {
		return string(raw[:max])
	}
	return string(raw)
}
