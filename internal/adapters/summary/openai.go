// Package summary produces short token descriptions with an OpenAI chat model.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

const (
	DefaultModel     = openai.GPT4oMini
	DefaultMaxTokens = 300

	systemPrompt = `You are a cryptocurrency analyst. Given the JSON description of a token (price, liquidity, volumes, price changes, links and trading pairs), write a neutral summary of at most three sentences. Do not give financial advice.`
)

// OpenAIConfig configures the summarizer.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// OpenAISummarizer summarizes tokens with the chat completions API.
type OpenAISummarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAISummarizer(cfg OpenAIConfig) *OpenAISummarizer {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAISummarizer{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Summarize returns a short description of token.
func (s *OpenAISummarizer) Summarize(ctx context.Context, token *domain.TokenData) (string, error) {
	if token == nil {
		return "", fmt.Errorf("no token to summarize")
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Debug().Str("symbol", token.Symbol).Int("tokens", resp.Usage.TotalTokens).Msg("token summarized")
	return summary, nil
}
