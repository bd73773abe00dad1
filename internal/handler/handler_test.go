package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/core/service"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
	"github.com/TeneoProtocolAI/defai-agent/pkg/types"
)

type fakeService struct {
	token    *domain.TokenLookupOutput
	mentions *domain.UserMentionsOutput
	post     *domain.Post
	err      error

	tokenInput   domain.TokenLookupInput
	mentionInput domain.UserMentionsInput
	postInput    domain.PostMessageInput
}

func (f *fakeService) FindTokenInformations(_ context.Context, input domain.TokenLookupInput) (*domain.TokenLookupOutput, error) {
	f.tokenInput = input
	return f.token, f.err
}

func (f *fakeService) GetUserTweetsWithTickerMentions(_ context.Context, input domain.UserMentionsInput) (*domain.UserMentionsOutput, error) {
	f.mentionInput = input
	if f.err != nil {
		return nil, f.err
	}
	if input.UserID == "" && input.Username == "" {
		return nil, &domain.ValidationError{Field: "user_id", Message: "either user_id or username must be provided"}
	}
	return f.mentions, nil
}

func (f *fakeService) PostMessage(_ context.Context, input domain.PostMessageInput) (*domain.Post, error) {
	f.postInput = input
	return f.post, f.err
}

func tokenOutput(links ...domain.TokenLink) *domain.TokenLookupOutput {
	return &domain.TokenLookupOutput{
		Token: "SERV",
		Path:  "crypto_SERV.json",
		Data: &domain.TokenData{
			Name:   "Serv",
			Symbol: "SERV",
			Links:  links,
			Pairs:  []domain.SimplifiedPair{},
		},
	}
}

func TestParseTask(t *testing.T) {
	tests := []struct {
		name       string
		task       string
		capability string
		args       string
		wantErr    error
	}{
		{"json", `{"capability":"findTokenInformations","args":{"token":"$SERV"}}`, CapabilityFindTokenInformations, `{"token":"$SERV"}`, nil},
		{"command", "findTokenInformations $SERV", CapabilityFindTokenInformations, `{"token":"$SERV"}`, nil},
		{"slash command", "/twitterPostMessage gm all", CapabilityPostMessage, `{"message":"gm all"}`, nil},
		{"mentions command", "twitterGetUserTweetsWithTickerMentions @alice", CapabilityUserTickerMentions, `{"username":"@alice"}`, nil},
		{"empty", "   ", "", "", types.ErrInvalidTask},
		{"bad json", `{"capability":`, "", "", types.ErrInvalidTask},
		{"missing capability", `{"args":{}}`, "", "", types.ErrInvalidTask},
		{"unknown command", "dance now", "", "", types.ErrUnknownCapability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := ParseTask(tt.task)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.capability, task.Capability)
			assert.JSONEq(t, tt.args, string(task.Args))
		})
	}
}

func TestProcessTask_FindTokenInformations(t *testing.T) {
	svc := &fakeService{token: tokenOutput(domain.TokenLink{Label: "Website", URL: "https://serv.example"})}
	metrics := observability.NewMetrics("")
	h := NewTaskHandler(svc, metrics)

	reply, err := h.ProcessTask(context.Background(), `{"capability":"findTokenInformations","args":{"token":"serv"}}`)
	require.NoError(t, err)

	assert.Equal(t, "serv", svc.tokenInput.Token)
	assert.Contains(t, reply, "Comprehensive data about the crypto ticker Serv (SERV)")
	assert.Contains(t, reply, "You can find the details in the file named: crypto_SERV.json.")
	assert.Contains(t, reply, "Crypto ticker website is: https://serv.example.")
	assert.Contains(t, reply, `"symbol": "SERV"`)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.TasksProcessed.WithLabelValues(CapabilityFindTokenInformations, observability.OutcomeSuccess)))
}

func TestProcessTask_FindTokenInformationsNoWebsite(t *testing.T) {
	h := NewTaskHandler(&fakeService{token: tokenOutput()}, nil)

	reply, err := h.ProcessTask(context.Background(), "findTokenInformations SERV")
	require.NoError(t, err)
	assert.Contains(t, reply, "Crypto ticker website is: No website url found.")
}

func TestProcessTask_TokenNotFound(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("lookup: %w", &domain.NotFoundError{Query: "GHOST"})}
	h := NewTaskHandler(svc, nil)

	reply, err := h.ProcessTask(context.Background(), "findTokenInformations GHOST")
	require.NoError(t, err)
	assert.Contains(t, reply, `No data was found for the cryptocurrency token "GHOST"`)
}

func TestProcessTask_UpstreamError(t *testing.T) {
	upstream := &domain.UpstreamError{Source: "DexScreener", StatusCode: 502}
	metrics := observability.NewMetrics("")
	h := NewTaskHandler(&fakeService{err: upstream}, metrics)

	_, err := h.ProcessTask(context.Background(), "findTokenInformations SERV")
	require.Error(t, err)

	var upErr *domain.UpstreamError
	assert.True(t, errors.As(err, &upErr))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.TasksProcessed.WithLabelValues(CapabilityFindTokenInformations, observability.OutcomeError)))
}

func TestProcessTask_PostMessage(t *testing.T) {
	svc := &fakeService{post: &domain.Post{ID: "999", Text: "gm"}}
	h := NewTaskHandler(svc, nil)

	reply, err := h.ProcessTask(context.Background(), `{"capability":"twitterPostMessage","args":{"message":"gm"}}`)
	require.NoError(t, err)
	assert.Equal(t, "gm", svc.postInput.Message)
	assert.Contains(t, reply, "Message successfully posted on Twitter :")
	assert.Contains(t, reply, `"id": "999"`)
}

func TestProcessTask_UserTickerMentions(t *testing.T) {
	tests := []struct {
		name    string
		output  *domain.UserMentionsOutput
		args    string
		want    string
		wantArg domain.UserMentionsInput
	}{
		{
			name:    "no posts",
			output:  &domain.UserMentionsOutput{UserID: "42", Tickers: []string{}, CreatedFiles: []string{}},
			args:    `{"user_id":"42"}`,
			want:    `Warning: No tweets were found from Twitter user ID : "42"`,
			wantArg: domain.UserMentionsInput{UserID: "42"},
		},
		{
			name:    "no tickers",
			output:  &domain.UserMentionsOutput{UserID: "42", PostCount: 3, Tickers: []string{}, CreatedFiles: []string{}},
			args:    `{"username":"alice","max_results":10}`,
			want:    "but no ticker(s) found.",
			wantArg: domain.UserMentionsInput{Username: "alice", MaxResults: 10},
		},
		{
			name: "created files",
			output: &domain.UserMentionsOutput{
				UserID:       "42",
				PostCount:    2,
				Tickers:      []string{"$SERV"},
				CreatedFiles: []string{service.MentionArtifactPath("1", "SERV")},
			},
			args:    `{"user_id":"42"}`,
			want:    "Tweets mentioning ticker(s) successfully retrieved",
			wantArg: domain.UserMentionsInput{UserID: "42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{mentions: tt.output}
			h := NewTaskHandler(svc, nil)

			reply, err := h.ProcessTask(context.Background(), `{"capability":"twitterGetUserTweetsWithTickerMentions","args":`+tt.args+`}`)
			require.NoError(t, err)
			assert.Contains(t, reply, tt.want)
			assert.Equal(t, tt.wantArg, svc.mentionInput)
			for _, f := range tt.output.CreatedFiles {
				assert.Contains(t, reply, f)
			}
		})
	}
}

func TestProcessTask_UserTickerMentionsMissingUser(t *testing.T) {
	h := NewTaskHandler(&fakeService{}, nil)

	reply, err := h.ProcessTask(context.Background(), `{"capability":"twitterGetUserTweetsWithTickerMentions","args":{}}`)
	require.NoError(t, err)
	assert.Equal(t, "Please provide a valid Twitter username or user id.", reply)
}

func TestProcessTask_UserTickerMentionsValidation(t *testing.T) {
	svc := &fakeService{err: &domain.ValidationError{Field: "max_results", Message: "must be between 5 and 100"}}
	h := NewTaskHandler(svc, nil)

	_, err := h.ProcessTask(context.Background(), `{"capability":"twitterGetUserTweetsWithTickerMentions","args":{"user_id":"42","max_results":1}}`)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestProcessTask_UnknownCapability(t *testing.T) {
	metrics := observability.NewMetrics("")
	h := NewTaskHandler(&fakeService{}, metrics)

	_, err := h.ProcessTask(context.Background(), `{"capability":"dance"}`)
	assert.ErrorIs(t, err, types.ErrUnknownCapability)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.TasksProcessed.WithLabelValues("dance", observability.OutcomeError)))
}

func TestTaskHandler_Capabilities(t *testing.T) {
	h := NewTaskHandler(&fakeService{}, nil)

	names := make([]string, 0, len(h.Capabilities()))
	for _, c := range h.Capabilities() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{CapabilityFindTokenInformations, CapabilityPostMessage, CapabilityUserTickerMentions}, names)
}
