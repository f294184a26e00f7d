// Package ai wraps the external text-generation providers behind a common
// client interface and routes calls across them with timeout, retry and
// fallback discipline.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"article-server/internal/models"
)

// Pricing used for cost estimation when the provider reports token usage.
const (
	pricePerMillionInputTokensUSD  = 0.1
	pricePerMillionOutputTokensUSD = 0.4
)

// Usage holds token accounting for one provider call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// GenerationParams are per-call sampling parameters. Pointers distinguish
// "unset" from zero.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// Prompt is one generation request: fixed instructions plus the serialized
// section context.
type Prompt struct {
	System string
	User   string
}

// ProviderClient is one text-generation backend.
type ProviderClient interface {
	// GenerateText sends a single chat completion request and returns the
	// generated text with token usage.
	GenerateText(ctx context.Context, prompt Prompt, params GenerationParams) (string, Usage, error)
	// Name returns the provider name used in routing and metrics.
	Name() string
}

func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

// ClientConfig configures one provider client.
type ClientConfig struct {
	Provider string // "openai", "openrouter" or "ollama"
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// NewProviderClient builds a client for the configured provider type.
// OpenRouter speaks the OpenAI wire protocol, so both share the go-openai
// implementation with different base URLs.
func NewProviderClient(cfg ClientConfig, logger *zap.Logger) (ProviderClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "openrouter":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %s: API key is not configured", cfg.Provider)
		}
		openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			openaiConfig.BaseURL = cfg.BaseURL
		}
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		return &openAIClient{
			name:   strings.ToLower(cfg.Provider),
			client: openaigo.NewClientWithConfig(openaiConfig),
			model:  cfg.Model,
			logger: logger.Named("OpenAIClient").With(zap.String("provider", cfg.Provider)),
		}, nil
	case "ollama":
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider type: '%s'", cfg.Provider)
	}
}

// --- OpenAI-compatible implementation ---

type openAIClient struct {
	name   string
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (c *openAIClient) Name() string { return c.name }

func (c *openAIClient) GenerateText(ctx context.Context, prompt Prompt, params GenerationParams) (string, Usage, error) {
	usage := Usage{}

	if strings.TrimSpace(prompt.System) == "" {
		recordRequest(c.name, c.model, "error", 0)
		return "", usage, fmt.Errorf("system prompt is empty")
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: prompt.System},
	}
	if prompt.User != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role: openaigo.ChatMessageRoleUser, Content: prompt.User,
		})
	}

	startTime := time.Now()
	c.logger.Debug("Sending request to AI provider",
		zap.String("model", c.model),
		zap.Int("system_bytes", len(prompt.System)),
		zap.Int("user_bytes", len(prompt.User)))

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP),
	})

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Warn("AI provider request failed", zap.Duration("duration", duration), zap.Error(err))
		recordRequest(c.name, c.model, "error", duration.Seconds())
		return "", usage, err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		recordRequest(c.name, c.model, "error_empty_response", duration.Seconds())
		return "", usage, models.ErrEmptyResponse
	}

	recordRequest(c.name, c.model, "success", duration.Seconds())
	generatedText := resp.Choices[0].Message.Content

	if resp.Usage.TotalTokens > 0 {
		usage.PromptTokens = resp.Usage.PromptTokens
		usage.CompletionTokens = resp.Usage.CompletionTokens
		usage.TotalTokens = resp.Usage.TotalTokens
		usage.EstimatedCostUSD = calculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	} else {
		// Some OpenRouter models omit the usage block; estimate with tiktoken.
		usage = estimateUsage(c.model, prompt, generatedText)
	}
	recordUsage(c.name, c.model, usage)

	c.logger.Debug("AI provider request succeeded",
		zap.Duration("duration", duration),
		zap.Int("response_chars", len(generatedText)),
		zap.Int("total_tokens", usage.TotalTokens))

	return generatedText, usage, nil
}

func estimateUsage(model string, prompt Prompt, response string) Usage {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Unknown model for tiktoken; fall back to the cl100k base encoding.
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return Usage{}
		}
	}
	promptTokens := len(tke.Encode(prompt.System, nil, nil)) + len(tke.Encode(prompt.User, nil, nil))
	completionTokens := len(tke.Encode(response, nil, nil))
	return Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		EstimatedCostUSD: calculateCost(promptTokens, completionTokens),
	}
}

// --- Ollama implementation ---

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg ClientConfig, logger *zap.Logger) (ProviderClient, error) {
	// api.NewClient wants the URL without the /v1 suffix.
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/v1")
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("provider ollama: base URL is not configured")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Ollama base URL '%s': %w", baseURL, err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &ollamaClient{
		client:  api.NewClient(parsedURL, httpClient),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("OllamaClient"),
	}, nil
}

func (c *ollamaClient) Name() string { return "ollama" }

func (c *ollamaClient) GenerateText(ctx context.Context, prompt Prompt, params GenerationParams) (string, Usage, error) {
	usage := Usage{} // local models have no billed cost

	if strings.TrimSpace(prompt.System) == "" {
		recordRequest("ollama", c.model, "error", 0)
		return "", usage, fmt.Errorf("system prompt is empty")
	}

	messages := []api.Message{{Role: "system", Content: prompt.System}}
	if prompt.User != "" {
		messages = append(messages, api.Message{Role: "user", Content: prompt.User})
	}

	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   boolPtr(false),
		Options: map[string]interface{}{
			"temperature": params.Temperature,
			"top_p":       params.TopP,
			"num_predict": intVal(params.MaxTokens),
		},
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Warn("Ollama request failed", zap.Duration("duration", duration), zap.Error(err))
		recordRequest("ollama", c.model, "error", duration.Seconds())
		return "", usage, err
	}
	if resp.Message.Content == "" {
		recordRequest("ollama", c.model, "error_empty_response", duration.Seconds())
		return "", usage, models.ErrEmptyResponse
	}

	recordRequest("ollama", c.model, "success", duration.Seconds())

	usage.PromptTokens = resp.PromptEvalCount
	usage.CompletionTokens = resp.EvalCount
	usage.TotalTokens = resp.PromptEvalCount + resp.EvalCount
	recordUsage("ollama", c.model, usage)

	return resp.Message.Content, usage, nil
}

func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 1.0
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func boolPtr(b bool) *bool { return &b }
