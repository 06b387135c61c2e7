// Package openai provides an LLM service adapter for OpenAI and Azure OpenAI
// built on the go-openai client.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL       = "https://api.openai.com/v1"
	DefaultLLMModel      = "gpt-4o-mini"
	DefaultAzureVersion  = "2024-02-15-preview"
	DefaultLLMTimeout    = 120 * time.Second
	defaultAzureDeploy   = "gpt-4"
	errNoChoicesReturned = "no response choices returned"
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI or Azure OpenAI key (required).
	APIKey string

	// BaseURL is the API base URL. For Azure this is the resource endpoint,
	// e.g. https://my-resource.openai.azure.com/.
	BaseURL string

	// Model is the model name, or the deployment name when Azure is set.
	Model string

	// Azure selects Azure OpenAI request routing and authentication.
	Azure bool

	// APIVersion is the Azure OpenAI API version.
	APIVersion string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides chat completions through the OpenAI API.
type LLMService struct {
	client *goopenai.Client
	model  string
	azure  bool
}

// NewLLMService creates a new OpenAI or Azure OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	var clientCfg goopenai.ClientConfig
	if cfg.Azure {
		if cfg.BaseURL == "" {
			return nil, errors.New("openai: Azure endpoint is required")
		}
		if cfg.Model == "" {
			cfg.Model = defaultAzureDeploy
		}
		if cfg.APIVersion == "" {
			cfg.APIVersion = DefaultAzureVersion
		}
		clientCfg = goopenai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		clientCfg.APIVersion = cfg.APIVersion
		deployment := cfg.Model
		// Deployment names are used verbatim; the default mapper strips dots.
		clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
	} else {
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = DefaultLLMModel
		}
		clientCfg = goopenai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		azure:  cfg.Azure,
	}, nil
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request([]driven.ChatMessage{{Role: goopenai.ChatMessageRoleUser, Content: prompt}},
		opts.MaxTokens, opts.Temperature)
	req.Stop = opts.StopWords
	return s.complete(ctx, req)
}

// Chat conducts a multi-turn conversation. System messages are passed
// through unchanged.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.complete(ctx, s.request(messages, opts.MaxTokens, opts.Temperature))
}

func (s *LLMService) request(messages []driven.ChatMessage, maxTokens int, temperature float64) goopenai.ChatCompletionRequest {
	out := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = goopenai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}
	return goopenai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    out,
		MaxTokens:   maxTokens,
		Temperature: wireTemperature(temperature),
	}
}

// wireTemperature maps a zero temperature to the smallest positive float32.
// go-openai omits a zero value, which the API reads as its default of 1.
func wireTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func (s *LLMService) complete(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s error (status %d): %s", s.provider(), apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%s: chat completion: %w", s.provider(), err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %s", s.provider(), errNoChoicesReturned)
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) provider() string {
	if s.azure {
		return "azure openai"
	}
	return "openai"
}

// ModelName returns the model, or the deployment name for Azure.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key by listing models. No inference is run.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s: ping failed: %w", s.provider(), err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
