package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
)

const (
	DefaultMaxResults = 100
	MinMaxResults     = 5
	MaxMaxResults     = 100
)

// AgentService implements the agent capabilities on top of the token
// resolver, the mention resolver, the social source and the artifact sink.
type AgentService struct {
	tokens   domain.TokenResolver
	mentions *MentionResolver
	social   domain.SocialSource
	sink     domain.ArtifactSink
	metrics  *observability.Metrics
}

func NewAgentService(
	tokens domain.TokenResolver,
	mentions *MentionResolver,
	social domain.SocialSource,
	sink domain.ArtifactSink,
	metrics *observability.Metrics,
) *AgentService {
	return &AgentService{
		tokens:   tokens,
		mentions: mentions,
		social:   social,
		sink:     sink,
		metrics:  metrics,
	}
}

// FindTokenInformations resolves a single ticker and stores the result as
// crypto_<TICKER>.json.
func (s *AgentService) FindTokenInformations(ctx context.Context, input domain.TokenLookupInput) (*domain.TokenLookupOutput, error) {
	token := NormalizeToken(input.Token)
	if token == "" {
		return nil, &domain.ValidationError{Field: "token", Message: "must not be empty"}
	}

	log.Info().Str("token", token).Msgf("Retrieve %s informations", token)

	data, err := s.tokens.FindTokenBySymbol(ctx, token)
	if err != nil {
		if domain.IsNotFound(err) {
			s.metrics.RecordTokenLookup(observability.OutcomeNotFound)
		} else {
			s.metrics.RecordTokenLookup(observability.OutcomeError)
		}
		return nil, err
	}
	s.metrics.RecordTokenLookup(observability.OutcomeFound)

	path := TokenArtifactPath(token)
	if err := s.store(ctx, path, data); err != nil {
		return nil, err
	}

	return &domain.TokenLookupOutput{
		Token: token,
		Path:  path,
		Data:  data,
	}, nil
}

// GetUserTweetsWithTickerMentions lists the latest posts of a user and stores
// one artifact per (post, ticker) not already stored.
func (s *AgentService) GetUserTweetsWithTickerMentions(ctx context.Context, input domain.UserMentionsInput) (*domain.UserMentionsOutput, error) {
	userID := strings.TrimSpace(input.UserID)
	username := strings.TrimPrefix(strings.TrimSpace(input.Username), "@")
	if userID == "" && username == "" {
		return nil, &domain.ValidationError{Field: "user_id", Message: "either user_id or username must be provided"}
	}

	filters, err := BuildPostFilters(input)
	if err != nil {
		return nil, err
	}

	if userID == "" {
		userID, err = s.social.ResolveUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve username %s: %w", username, err)
		}
	}

	posts, err := s.social.ListUserPosts(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts of user %s: %w", userID, err)
	}

	out := &domain.UserMentionsOutput{
		UserID:       userID,
		PostCount:    len(posts),
		Tickers:      []string{},
		CreatedFiles: []string{},
	}
	if len(posts) == 0 {
		log.Warn().Str("user_id", userID).Msg("no posts found for user")
		return out, nil
	}

	existing, err := s.sink.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing artifacts: %w", err)
	}

	artifacts, err := s.mentions.Resolve(ctx, posts, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mentions: %w", err)
	}

	for _, a := range artifacts {
		if err := s.store(ctx, a.Path, a); err != nil {
			log.Error().Err(err).Str("path", a.Path).Msg("failed to store mention artifact")
			s.metrics.RecordMentionArtifact(observability.OutcomeError)
			continue
		}
		s.metrics.RecordMentionArtifact(observability.OutcomeCreated)
		out.CreatedFiles = append(out.CreatedFiles, a.Path)
	}

	seen := make(map[string]struct{})
	for _, item := range FilterPostsWithTickers(posts) {
		for _, t := range item.Tickers {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out.Tickers = append(out.Tickers, t)
		}
	}

	log.Info().
		Str("user_id", userID).
		Int("posts", len(posts)).
		Strs("tickers", out.Tickers).
		Int("created", len(out.CreatedFiles)).
		Msg("ticker mentions processed")

	return out, nil
}

// PostMessage publishes message as a new post.
func (s *AgentService) PostMessage(ctx context.Context, input domain.PostMessageInput) (*domain.Post, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, &domain.ValidationError{Field: "message", Message: "must not be empty"}
	}

	post, err := s.social.CreatePost(ctx, input.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	log.Info().Str("post_id", post.ID).Msg("post created")
	return post, nil
}

// BuildPostFilters validates the timeline parameters of input.
func BuildPostFilters(input domain.UserMentionsInput) (domain.PostFilters, error) {
	filters := domain.PostFilters{
		MaxResults:      input.MaxResults,
		SinceID:         strings.TrimSpace(input.SinceID),
		UntilID:         strings.TrimSpace(input.UntilID),
		PaginationToken: strings.TrimSpace(input.PaginationToken),
	}
	if filters.MaxResults == 0 {
		filters.MaxResults = DefaultMaxResults
	}
	if filters.MaxResults < MinMaxResults || filters.MaxResults > MaxMaxResults {
		return filters, &domain.ValidationError{
			Field:   "max_results",
			Message: fmt.Sprintf("must be between %d and %d", MinMaxResults, MaxMaxResults),
		}
	}

	var err error
	if filters.StartTime, err = parseTime("start_time", input.StartTime); err != nil {
		return filters, err
	}
	if filters.EndTime, err = parseTime("end_time", input.EndTime); err != nil {
		return filters, err
	}
	if filters.StartTime != nil && filters.EndTime != nil && !filters.StartTime.Before(*filters.EndTime) {
		return filters, &domain.ValidationError{Field: "start_time", Message: "must be before end_time"}
	}
	return filters, nil
}

func parseTime(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Message: "must be an RFC3339 timestamp"}
	}
	return &t, nil
}

func (s *AgentService) store(ctx context.Context, path string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := s.sink.Put(ctx, path, content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(content)).Msg("artifact stored")
	return nil
}
