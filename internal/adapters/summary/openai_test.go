package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

func TestOpenAISummarizer_Summarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, `"symbol":"FOO"`)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "  Foo trades on Solana.  "},
			}},
		})
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})

	summary, err := s.Summarize(context.Background(), &domain.TokenData{Name: "Foo", Symbol: "FOO"})
	require.NoError(t, err)
	assert.Equal(t, "Foo trades on Solana.", summary)
}

func TestOpenAISummarizer_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})

	_, err := s.Summarize(context.Background(), &domain.TokenData{Symbol: "FOO"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = s.Summarize(context.Background(), nil)
	require.Error(t, err)
}
