// Package social implements the X (Twitter) API v2 client used to read user
// timelines and publish posts.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
)

// SourceName identifies the X API in errors, logs and metrics.
const SourceName = "Twitter-v2"

const (
	DefaultBaseURL = "https://api.twitter.com"
	DefaultTimeout = 15 * time.Second
)

// Fields requested on timeline reads.
var (
	timelineExpansions = []string{
		"attachments.media_keys",
		"attachments.poll_ids",
		"author_id",
		"edit_history_tweet_ids",
		"entities.mentions.username",
		"geo.place_id",
		"in_reply_to_user_id",
		"referenced_tweets.id",
		"referenced_tweets.id.author_id",
	}
	timelineTweetFields = []string{
		"attachments",
		"author_id",
		"conversation_id",
		"created_at",
		"entities",
		"geo",
		"id",
		"in_reply_to_user_id",
		"lang",
		"note_tweet",
		"public_metrics",
		"referenced_tweets",
		"reply_settings",
		"source",
		"text",
		"withheld",
	}
	timelineUserFields = []string{
		"created_at",
		"description",
		"id",
		"name",
		"profile_image_url",
		"public_metrics",
		"username",
		"verified",
	}
)

// Config configures the X API client.
type Config struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
	Metrics     *observability.Metrics
}

// TwitterService talks to the X API v2 with an app bearer token.
type TwitterService struct {
	baseURL string
	token   string
	client  *http.Client
	metrics *observability.Metrics
}

func NewTwitterService(cfg Config) *TwitterService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &TwitterService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.BearerToken,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: cfg.Metrics,
	}
}

type userResponse struct {
	Data *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}

type timelineResponse struct {
	Data []domain.Post `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

type createPostRequest struct {
	Text string `json:"text"`
}

type createPostResponse struct {
	Data *domain.Post `json:"data"`
}

// ResolveUsername looks up the user id of username.
func (s *TwitterService) ResolveUsername(ctx context.Context, username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	endpoint := "/2/users/by/username/" + url.PathEscape(username)

	var resp userResponse
	if err := s.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return "", fmt.Errorf("user %s not found", username)
	}

	log.Debug().Str("username", username).Str("user_id", resp.Data.ID).Msg("username resolved")
	return resp.Data.ID, nil
}

// ListUserPosts returns the latest posts authored by userID.
func (s *TwitterService) ListUserPosts(ctx context.Context, userID string, filters domain.PostFilters) ([]domain.Post, error) {
	endpoint := "/2/users/" + url.PathEscape(userID) + "/tweets"
	params := TimelineQuery(filters)

	log.Info().Str("user_id", userID).Msgf("Retrieving the %d latest tweets from the Twitter user with ID: %s", filters.MaxResults, userID)

	var resp timelineResponse
	if err := s.do(ctx, http.MethodGet, endpoint, params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreatePost publishes text as a new post.
func (s *TwitterService) CreatePost(ctx context.Context, text string) (*domain.Post, error) {
	log.Info().Str("message", text).Msg("Posting message")

	var resp createPostResponse
	if err := s.do(ctx, http.MethodPost, "/2/tweets", nil, createPostRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return nil, fmt.Errorf("%s returned no post", SourceName)
	}
	return resp.Data, nil
}

// TimelineQuery builds the timeline query parameters. Unset filters are
// omitted.
func TimelineQuery(filters domain.PostFilters) url.Values {
	params := url.Values{}
	if filters.MaxResults > 0 {
		params.Set("max_results", strconv.Itoa(filters.MaxResults))
	}
	if filters.PaginationToken != "" {
		params.Set("pagination_token", filters.PaginationToken)
	}
	if filters.StartTime != nil {
		params.Set("start_time", filters.StartTime.UTC().Format(time.RFC3339))
	}
	if filters.EndTime != nil {
		params.Set("end_time", filters.EndTime.UTC().Format(time.RFC3339))
	}
	if filters.SinceID != "" {
		params.Set("since_id", filters.SinceID)
	}
	if filters.UntilID != "" {
		params.Set("until_id", filters.UntilID)
	}
	params.Set("expansions", strings.Join(timelineExpansions, ","))
	params.Set("tweet.fields", strings.Join(timelineTweetFields, ","))
	params.Set("user.fields", strings.Join(timelineUserFields, ","))
	return params
}

func (s *TwitterService) do(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	target := s.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("source", SourceName).Str("method", method).Str("url", target).Msg("request")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		err = &domain.UpstreamError{Source: SourceName, Err: err}
		s.metrics.RecordUpstream(SourceName, err, time.Since(start))
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = &domain.UpstreamError{Source: SourceName, StatusCode: resp.StatusCode, Err: err}
		s.metrics.RecordUpstream(SourceName, err, time.Since(start))
		return err
	}

	log.Debug().Str("source", SourceName).Int("status", resp.StatusCode).Bytes("response", raw).Msg("response")

	err = domain.CheckIntegrationResponse(SourceName, domain.IntegrationResponse{
		StatusCode: resp.StatusCode,
		Message:    string(raw),
	})
	s.metrics.RecordUpstream(SourceName, err, time.Since(start))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", SourceName, err)
	}
	return nil
}
