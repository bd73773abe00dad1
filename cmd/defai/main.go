package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TeneoProtocolAI/defai-agent/internal/app"
	"github.com/TeneoProtocolAI/defai-agent/internal/config"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
)

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

// rootCmd is the base command of the DeFAI CLI
var rootCmd = &cobra.Command{
	Use:   "defai",
	Short: "Token market data and ticker mentions from the command line",
	Long: `defai runs the agent capabilities locally: look up a token by its ticker,
collect the tickers a Twitter user mentions, or post a message.

Artifacts are written to ARTIFACT_DIR, or to Redis when REDIS_ENABLED is set.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		level := logLevel
		if level == "" {
			level = os.Getenv("LOG_LEVEL")
		}
		observability.SetupLogging(level, true)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the raw result as JSON")
}

// setup loads the configuration for mode and wires the services.
func setup(ctx context.Context, mode config.Mode) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
