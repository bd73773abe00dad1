package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
)

// SourceName identifies DexScreener in errors, logs and metrics.
const SourceName = "DexScreener"

const (
	DefaultBaseURL           = "https://api.dexscreener.com"
	DefaultTimeout           = 5 * time.Second
	DefaultRequestsPerMinute = 300

	searchPath = "/latest/dex/search"
)

// Config configures the DexScreener client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Metrics           *observability.Metrics
}

// DexScreenerService searches trading pairs on the DexScreener public API.
// Requests are rate limited and pass through a circuit breaker.
type DexScreenerService struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *observability.Metrics
}

func NewDexScreenerService(cfg Config) *DexScreenerService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.RequestsPerMinute / 60
	if burst < 1 {
		burst = 1
	}

	return &DexScreenerService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    SourceName,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
		metrics: cfg.Metrics,
	}
}

// Search returns every pair matching query.
func (s *DexScreenerService) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	start := time.Now()
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.search(ctx, query)
	})
	s.metrics.RecordUpstream(SourceName, err, time.Since(start))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.UpstreamError{Source: SourceName, Err: err}
		}
		return nil, err
	}
	return res.(*domain.SearchResult), nil
}

func (s *DexScreenerService) search(ctx context.Context, query string) (*domain.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	endpoint := s.baseURL + searchPath + "?" + params.Encode()

	log.Debug().Str("source", SourceName).Str("url", endpoint).Msg("search pairs")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: SourceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: SourceName, StatusCode: resp.StatusCode, Err: err}
	}

	log.Debug().Str("source", SourceName).Int("status", resp.StatusCode).RawJSON("response", rawOrString(body)).Msg("search response")

	if err := domain.CheckIntegrationResponse(SourceName, domain.IntegrationResponse{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}); err != nil {
		return nil, err
	}

	var result domain.SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &result, nil
}

// isBreakerSuccess keeps client errors from opening the breaker. Only
// transport failures and server errors count.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return ue.Err == nil && ue.StatusCode > 0 && ue.StatusCode < http.StatusInternalServerError
	}
	return false
}

func rawOrString(body []byte) []byte {
	if json.Valid(body) {
		return body
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
