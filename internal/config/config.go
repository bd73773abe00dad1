// Package config loads the runtime configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects which keys Validate requires.
type Mode int

const (
	// ModeToken covers token lookups only.
	ModeToken Mode = iota
	// ModeSocial adds the social-media capabilities.
	ModeSocial
	// ModeAgent runs the full agent on the network.
	ModeAgent
)

// DexScreenerConfig configures the liquidity-pool data source.
type DexScreenerConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// TwitterConfig configures the social-media source.
type TwitterConfig struct {
	BaseURL     string `yaml:"base_url"`
	BearerToken string `yaml:"bearer_token"`
}

// RedisConfig configures the shared artifact sink.
type RedisConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// OpenAIConfig configures the optional token summarizer.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AgentConfig configures the network runtime.
type AgentConfig struct {
	Name         string        `yaml:"name"`
	PrivateKey   string        `yaml:"private_key"`
	WebSocketURL string        `yaml:"websocket_url"`
	HealthPort   int           `yaml:"health_port"`
	TaskTimeout  time.Duration `yaml:"task_timeout"`
}

type Config struct {
	DexScreener DexScreenerConfig `yaml:"dexscreener"`
	Twitter     TwitterConfig     `yaml:"twitter"`
	ArtifactDir string            `yaml:"artifact_dir"`
	Redis       RedisConfig       `yaml:"redis"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Agent       AgentConfig       `yaml:"agent"`
	LogLevel    string            `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DexScreener: DexScreenerConfig{
			BaseURL:           "https://api.dexscreener.com",
			Timeout:           5 * time.Second,
			RequestsPerMinute: 300,
		},
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com",
		},
		ArtifactDir: "./artifacts",
		Redis: RedisConfig{
			Address:   "localhost:6379",
			KeyPrefix: "defai:",
		},
		Agent: AgentConfig{
			Name:        "DeFAI Agent",
			HealthPort:  8080,
			TaskTimeout: 2 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load reads path, when set, over the defaults and then applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DexScreener.BaseURL, "DEXSCREENER_BASE_URL")
	setString(&c.Twitter.BaseURL, "TWITTER_BASE_URL")
	setString(&c.Twitter.BearerToken, "TWITTER_BEARER_TOKEN")
	setString(&c.ArtifactDir, "ARTIFACT_DIR")
	setString(&c.Redis.Address, "REDIS_ADDRESS")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Redis.KeyPrefix, "REDIS_KEY_PREFIX")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.Agent.Name, "AGENT_NAME")
	setString(&c.Agent.PrivateKey, "PRIVATE_KEY")
	setString(&c.Agent.WebSocketURL, "WEBSOCKET_URL")
	setString(&c.LogLevel, "LOG_LEVEL")

	var errs []error
	errs = append(errs,
		setDuration(&c.DexScreener.Timeout, "DEXSCREENER_TIMEOUT"),
		setInt(&c.DexScreener.RequestsPerMinute, "DEXSCREENER_RPM"),
		setBool(&c.Redis.Enabled, "REDIS_ENABLED"),
		setInt(&c.Redis.DB, "REDIS_DB"),
		setInt(&c.Agent.HealthPort, "HEALTH_PORT"),
		setDuration(&c.Agent.TaskTimeout, "TASK_TIMEOUT"),
	)
	return errors.Join(errs...)
}

// Validate reports every key mode needs that is missing or out of range.
func (c *Config) Validate(mode Mode) error {
	var errs []error

	if c.DexScreener.BaseURL == "" {
		errs = append(errs, errors.New("DEXSCREENER_BASE_URL is required"))
	}
	if c.DexScreener.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("DEXSCREENER_RPM must be positive"))
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		errs = append(errs, errors.New("REDIS_ADDRESS is required when REDIS_ENABLED is set"))
	}

	if mode >= ModeSocial && c.Twitter.BearerToken == "" {
		errs = append(errs, errors.New("TWITTER_BEARER_TOKEN is required"))
	}

	if mode >= ModeAgent {
		if c.Agent.PrivateKey == "" {
			errs = append(errs, errors.New("PRIVATE_KEY is required"))
		}
		if c.Agent.WebSocketURL == "" {
			errs = append(errs, errors.New("WEBSOCKET_URL is required"))
		}
		if c.Agent.TaskTimeout <= 0 {
			errs = append(errs, errors.New("TASK_TIMEOUT must be positive"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

// setDuration accepts Go durations ("30s") and plain seconds ("30").
func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
