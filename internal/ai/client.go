package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/jobtracker/jobtracker-backend/pkg/config"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the provider-neutral request shape.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer performs a single chat completion and returns the text of the
// first choice.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

var errEmptyCompletion = errors.New("completion returned no choices")

// LLMCompleter adapts a langchaingo model to Completer.
type LLMCompleter struct {
	model llms.Model
	// googleai takes no system role, so system text is folded into the
	// first user message.
	foldSystem bool
}

// NewLLMCompleter wraps an existing langchaingo model.
func NewLLMCompleter(model llms.Model) *LLMCompleter {
	return &LLMCompleter{model: model}
}

// NewCompleter builds the provider configured in cfg.
func NewCompleter(ctx context.Context, cfg config.AIConfig) (*LLMCompleter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s is required", config.EnvAIAPIKey)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.AIProviderGoogle:
		model, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("googleai client: %w", err)
		}
		return &LLMCompleter{model: model, foldSystem: true}, nil
	default:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		return &LLMCompleter{model: model}, nil
	}
}

func (c *LLMCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	callOpts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}

	resp, err := c.model.GenerateContent(ctx, c.toContent(req.Messages), callOpts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}

func (c *LLMCompleter) toContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	var pendingSystem []string
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			if c.foldSystem {
				pendingSystem = append(pendingSystem, msg.Content)
				continue
			}
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case RoleAssistant:
			out = append(out, llms.TextParts(llms.ChatMessageTypeAI, msg.Content))
		default:
			content := msg.Content
			if len(pendingSystem) > 0 {
				content = strings.Join(append(pendingSystem, content), "\n\n")
				pendingSystem = nil
			}
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, content))
		}
	}
	if len(pendingSystem) > 0 {
		out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, strings.Join(pendingSystem, "\n\n")))
	}
	return out
}
