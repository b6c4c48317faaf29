package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"support_chat_backend/internal/reply"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-8b-instant"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	// Provider names the backend in errors and metrics ("openai", "groq").
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAIClient implements reply.Client on top of the official OpenAI SDK.
// Groq speaks the same protocol and goes through this adapter too.
type OpenAIClient struct {
	client   openai.Client
	model    string
	provider string
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIClient{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		provider: cfg.Provider,
	}
}

func (c *OpenAIClient) Name() string {
	return c.provider
}

func (c *OpenAIClient) Complete(ctx context.Context, req reply.CompletionRequest) (reply.Completion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+2)
	messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	for _, turn := range req.Turns {
		if turn.Role == reply.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}
	messages = append(messages, openai.UserMessage(req.UserMessage))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return reply.Completion{}, reply.NewProviderError(c.provider, status, err)
	}

	var out reply.Completion
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	out.TokensUsed = tokenCount(resp.Usage.TotalTokens)
	return out, nil
}

func tokenCount(n int64) *int {
	if n <= 0 {
		return nil
	}
	v := int(n)
	return &v
}
