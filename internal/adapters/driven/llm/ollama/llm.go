// Package ollama provides an LLM service adapter for a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama host. A bare "host:port" as found in
	// OLLAMA_HOST is accepted.
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService talks to the Ollama chat API.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type modelOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *modelOptions `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: normaliseHost(cfg.BaseURL),
		model:   cfg.Model,
	}
}

func normaliseHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return DefaultBaseURL
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []chatMessage{{Role: "user", Content: prompt}}
	return s.chat(ctx, messages, buildOptions(opts.MaxTokens, opts.Temperature, opts.StopWords))
}

// Chat conducts a multi-turn conversation. Ollama accepts system messages
// inline, so the history is sent as is.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	converted := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	return s.chat(ctx, converted, buildOptions(opts.MaxTokens, opts.Temperature, nil))
}

func buildOptions(maxTokens int, temperature float64, stop []string) *modelOptions {
	if maxTokens <= 0 && temperature <= 0 && len(stop) == 0 {
		return nil
	}
	opts := &modelOptions{NumPredict: maxTokens, Stop: stop}
	if temperature > 0 {
		t := temperature
		opts.Temperature = &t
	}
	return opts
}

func (s *LLMService) chat(ctx context.Context, messages []chatMessage, opts *modelOptions) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: messages,
		Stream:   false,
		Options:  opts,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: send request: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	return out.Message.Content, nil
}

// statusError converts a non-200 response into an error with its body.
func statusError(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
	}
	return fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// ModelName returns the model in use.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the server is reachable by listing local models.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	return statusError(resp)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
