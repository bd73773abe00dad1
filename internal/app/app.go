// Package app wires the adapters and services from a configuration.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/internal/adapters/artifact"
	"github.com/TeneoProtocolAI/defai-agent/internal/adapters/price"
	"github.com/TeneoProtocolAI/defai-agent/internal/adapters/social"
	"github.com/TeneoProtocolAI/defai-agent/internal/adapters/summary"
	"github.com/TeneoProtocolAI/defai-agent/internal/config"
	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/core/service"
	"github.com/TeneoProtocolAI/defai-agent/internal/handler"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
)

// App holds the wired services of one process.
type App struct {
	Service *service.AgentService
	Handler *handler.TaskHandler
	Metrics *observability.Metrics
	Sink    domain.ArtifactSink
}

// New builds the adapters described by cfg and the services on top of them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	metrics := observability.NewMetrics("")

	sink, err := newSink(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pairs := price.NewDexScreenerService(price.Config{
		BaseURL:           cfg.DexScreener.BaseURL,
		Timeout:           cfg.DexScreener.Timeout,
		RequestsPerMinute: cfg.DexScreener.RequestsPerMinute,
		Metrics:           metrics,
	})
	posts := social.NewTwitterService(social.Config{
		BaseURL:     cfg.Twitter.BaseURL,
		BearerToken: cfg.Twitter.BearerToken,
		Metrics:     metrics,
	})

	var summarizer domain.Summarizer
	if cfg.OpenAI.APIKey != "" {
		summarizer = summary.NewOpenAISummarizer(summary.OpenAIConfig{
			APIKey: cfg.OpenAI.APIKey,
			Model:  cfg.OpenAI.Model,
		})
		log.Info().Str("model", cfg.OpenAI.Model).Msg("token summaries enabled")
	}

	tokens := service.NewTokenService(pairs)
	svc := service.NewAgentService(
		tokens,
		service.NewMentionResolver(tokens, summarizer),
		posts,
		sink,
		metrics,
	)

	return &App{
		Service: svc,
		Handler: handler.NewTaskHandler(svc, metrics),
		Metrics: metrics,
		Sink:    sink,
	}, nil
}

// Close releases the resources held by the sink.
func (a *App) Close() error {
	if c, ok := a.Sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newSink(ctx context.Context, cfg *config.Config) (domain.ArtifactSink, error) {
	if cfg.Redis.Enabled {
		sink, err := artifact.NewRedisSink(ctx, artifact.RedisOptions{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis sink: %w", err)
		}
		log.Info().Str("address", cfg.Redis.Address).Msg("storing artifacts in redis")
		return sink, nil
	}

	sink, err := artifact.NewFileSink(cfg.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create file sink: %w", err)
	}
	log.Info().Str("dir", sink.Dir()).Msg("storing artifacts on disk")
	return sink, nil
}
