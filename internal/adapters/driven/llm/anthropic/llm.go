// Package anthropic provides an LLM service adapter for the Anthropic
// Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService talks to the Anthropic Messages API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model         string    `json:"model"`
	System        string    `json:"system,omitempty"`
	Messages      []message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   *float64  `json:"temperature,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.newRequest(opts.MaxTokens, opts.Temperature)
	req.Messages = []message{{Role: "user", Content: prompt}}
	req.StopSequences = opts.StopWords
	return s.send(ctx, req)
}

// Chat conducts a multi-turn conversation. The API takes the system prompt
// as a separate field, so system messages are lifted out of the history and
// joined in order.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := s.newRequest(opts.MaxTokens, opts.Temperature)

	var system []string
	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
			continue
		}
		req.Messages = append(req.Messages, message{Role: msg.Role, Content: msg.Content})
	}
	req.System = strings.Join(system, "\n\n")

	if len(req.Messages) == 0 {
		return "", errors.New("anthropic: conversation has no user messages")
	}
	return s.send(ctx, req)
}

func (s *LLMService) newRequest(maxTokens int, temperature float64) messagesRequest {
	// max_tokens is mandatory for this API.
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	req := messagesRequest{Model: s.model, MaxTokens: maxTokens}
	if temperature > 0 {
		t := temperature
		req.Temperature = &t
	}
	return req
}

func (s *LLMService) send(ctx context.Context, reqBody messagesRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorise(req)

	body, err := s.do(req)
	if err != nil {
		return "", err
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic: no text content returned")
	}
	return text.String(), nil
}

// do executes req and returns the body of a 200 response. Other statuses
// are turned into errors carrying the API's message when it sent one.
func (s *LLMService) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: read response: %w", err)
	}
	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
	}
	return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func (s *LLMService) authorise(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

// ModelName returns the model in use.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key against the models endpoint without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: create ping request: %w", err)
	}
	s.authorise(req)

	if _, err := s.do(req); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
