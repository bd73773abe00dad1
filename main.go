package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/internal/app"
	"github.com/TeneoProtocolAI/defai-agent/internal/config"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
	"github.com/TeneoProtocolAI/defai-agent/pkg/agent"
	"github.com/TeneoProtocolAI/defai-agent/pkg/version"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	observability.SetupLogging(os.Getenv("LOG_LEVEL"), false)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.SetupLogging(cfg.LogLevel, false)

	if err := cfg.Validate(config.ModeAgent); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer services.Close()

	agentConfig := agent.DefaultConfig()
	agentConfig.Name = cfg.Agent.Name
	agentConfig.PrivateKey = cfg.Agent.PrivateKey
	agentConfig.WebSocketURL = cfg.Agent.WebSocketURL
	agentConfig.HealthPort = cfg.Agent.HealthPort
	agentConfig.TaskTimeout = cfg.Agent.TaskTimeout

	a, err := agent.New(agentConfig, services.Handler, agent.Options{
		MetricsHandler: services.Metrics.Handler(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create agent")
	}

	log.Info().
		Str("agent", agentConfig.Name).
		Str("version", version.GetFullVersionString()).
		Str("address", a.Address()).
		Msg("starting agent")

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("agent stopped with error")
		services.Close()
		os.Exit(1)
	}
	log.Info().Msg("agent stopped")
}
