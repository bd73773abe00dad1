package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
)

func newTestAgentService(resolver *fakeResolver, social *fakeSocial, sink *memorySink) *AgentService {
	return NewAgentService(
		resolver,
		NewMentionResolver(resolver, nil),
		social,
		sink,
		observability.NewMetrics("test"),
	)
}

func TestAgentService_FindTokenInformations(t *testing.T) {
	resolver := &fakeResolver{data: map[string]*domain.TokenData{"FOO": fooData()}}
	sink := newMemorySink()
	svc := newTestAgentService(resolver, &fakeSocial{}, sink)

	out, err := svc.FindTokenInformations(context.Background(), domain.TokenLookupInput{Token: "$foo"})
	require.NoError(t, err)

	assert.Equal(t, "FOO", out.Token)
	assert.Equal(t, "crypto_FOO.json", out.Path)
	assert.Equal(t, "Foo", out.Data.Name)

	raw, ok := sink.files["crypto_FOO.json"]
	require.True(t, ok)
	var stored domain.TokenData
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "FOO", stored.Symbol)
}

func TestAgentService_FindTokenInformations_Errors(t *testing.T) {
	svc := newTestAgentService(&fakeResolver{}, &fakeSocial{}, newMemorySink())

	_, err := svc.FindTokenInformations(context.Background(), domain.TokenLookupInput{Token: "$"})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.FindTokenInformations(context.Background(), domain.TokenLookupInput{Token: "$GHOST"})
	assert.True(t, domain.IsNotFound(err))
}

func TestAgentService_GetUserTweetsWithTickerMentions(t *testing.T) {
	resolver := &fakeResolver{data: map[string]*domain.TokenData{"FOO": fooData(), "BAR": fooData()}}
	social := &fakeSocial{
		userIDs: map[string]string{"alice": "42"},
		posts: map[string][]domain.Post{"42": {
			{ID: "1", Text: "$FOO to the moon"},
			{ID: "2", Text: "$foo $BAR $NOPE"},
			{ID: "3", Text: "gm"},
		}},
	}
	sink := newMemorySink("tweet_1_FOO.json")
	svc := newTestAgentService(resolver, social, sink)

	out, err := svc.GetUserTweetsWithTickerMentions(context.Background(), domain.UserMentionsInput{Username: "@alice"})
	require.NoError(t, err)

	assert.Equal(t, "42", out.UserID)
	assert.Equal(t, 3, out.PostCount)
	assert.Equal(t, []string{"tweet_2_FOO.json", "tweet_2_BAR.json"}, out.CreatedFiles)
	assert.Equal(t, []string{"$FOO", "$foo", "$BAR", "$NOPE"}, out.Tickers)
	assert.Equal(t, DefaultMaxResults, social.filters.MaxResults)

	var artifact domain.MentionArtifact
	require.NoError(t, json.Unmarshal(sink.files["tweet_2_BAR.json"], &artifact))
	assert.Equal(t, "2", artifact.Post.ID)
	assert.Equal(t, "BAR", artifact.Crypto.Ticker)
}

func TestAgentService_GetUserTweetsWithTickerMentions_PutErrorContinues(t *testing.T) {
	resolver := &fakeResolver{data: map[string]*domain.TokenData{"FOO": fooData(), "BAR": fooData()}}
	social := &fakeSocial{posts: map[string][]domain.Post{"42": {{ID: "1", Text: "$FOO $BAR"}}}}
	sink := newMemorySink()
	sink.putErr["tweet_1_FOO.json"] = errors.New("disk full")
	svc := newTestAgentService(resolver, social, sink)

	out, err := svc.GetUserTweetsWithTickerMentions(context.Background(), domain.UserMentionsInput{UserID: "42"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tweet_1_BAR.json"}, out.CreatedFiles)
}

func TestAgentService_GetUserTweetsWithTickerMentions_NoPosts(t *testing.T) {
	svc := newTestAgentService(&fakeResolver{}, &fakeSocial{}, newMemorySink())

	out, err := svc.GetUserTweetsWithTickerMentions(context.Background(), domain.UserMentionsInput{UserID: "42"})
	require.NoError(t, err)
	assert.Zero(t, out.PostCount)
	assert.Empty(t, out.CreatedFiles)
}

func TestAgentService_GetUserTweetsWithTickerMentions_Errors(t *testing.T) {
	svc := newTestAgentService(&fakeResolver{}, &fakeSocial{err: errors.New("boom")}, newMemorySink())

	_, err := svc.GetUserTweetsWithTickerMentions(context.Background(), domain.UserMentionsInput{})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.GetUserTweetsWithTickerMentions(context.Background(), domain.UserMentionsInput{Username: "nobody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve username nobody")

	_, err = svc.GetUserTweetsWithTickerMentions(context.Background(), domain.UserMentionsInput{UserID: "42"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestBuildPostFilters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   domain.UserMentionsInput
		wantErr string
		check   func(t *testing.T, f domain.PostFilters)
	}{
		{
			name:  "defaults",
			input: domain.UserMentionsInput{},
			check: func(t *testing.T, f domain.PostFilters) {
				assert.Equal(t, 100, f.MaxResults)
				assert.Nil(t, f.StartTime)
			},
		},
		{
			name: "times and ids",
			input: domain.UserMentionsInput{
				MaxResults: 5,
				StartTime:  "2024-01-01T00:00:00Z",
				EndTime:    "2024-01-02T00:00:00Z",
				SinceID:    " 10 ",
			},
			check: func(t *testing.T, f domain.PostFilters) {
				assert.Equal(t, 5, f.MaxResults)
				require.NotNil(t, f.StartTime)
				assert.True(t, start.Equal(*f.StartTime))
				assert.Equal(t, "10", f.SinceID)
			},
		},
		{name: "too few", input: domain.UserMentionsInput{MaxResults: 4}, wantErr: "max_results"},
		{name: "too many", input: domain.UserMentionsInput{MaxResults: 101}, wantErr: "max_results"},
		{name: "bad time", input: domain.UserMentionsInput{StartTime: "yesterday"}, wantErr: "start_time"},
		{
			name:    "start after end",
			input:   domain.UserMentionsInput{StartTime: "2024-01-02T00:00:00Z", EndTime: "2024-01-01T00:00:00Z"},
			wantErr: "must be before end_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := BuildPostFilters(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}

func TestAgentService_PostMessage(t *testing.T) {
	social := &fakeSocial{}
	svc := newTestAgentService(&fakeResolver{}, social, newMemorySink())

	post, err := svc.PostMessage(context.Background(), domain.PostMessageInput{Message: "gm"})
	require.NoError(t, err)
	assert.Equal(t, "999", post.ID)
	assert.Equal(t, []string{"gm"}, social.created)

	_, err = svc.PostMessage(context.Background(), domain.PostMessageInput{Message: "  "})
	assert.True(t, domain.IsValidation(err))
}
