// Package ai wraps the external language-model API behind a small interface
// and turns stage input into structured artifacts.
package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mvpforge/mvpforge/internal/profile"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs one synchronous chat completion.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Config holds the LLM provider configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewConfigFromProfile builds the LLM config from the server profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		BaseURL: p.LLMBaseURL,
		APIKey:  p.LLMAPIKey,
		Model:   p.LLMModel,
		Timeout: time.Duration(p.LLMTimeoutSec) * time.Second,
	}
}

type llmService struct {
	client *openai.Client
	config *Config
}

// NewLLMService creates an OpenAI-compatible chat client. Any provider with
// an OpenAI-style API works through BaseURL.
func NewLLMService(cfg *Config) (LLMService, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &llmService{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Chat performs a chat completion. Failed calls are not retried; the stage
// controller falls back to a default artifact instead.
func (s *llmService) Chat(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: llmMessages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat response")
	}

	return resp.Choices[0].Message.Content, nil
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
