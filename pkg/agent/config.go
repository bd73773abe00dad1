package agent

import (
	"fmt"
	"time"

	"github.com/TeneoProtocolAI/defai-agent/pkg/types"
	"github.com/TeneoProtocolAI/defai-agent/pkg/version"
)

// Config holds the agent runtime configuration
type Config struct {
	Name        string
	Description string
	Version     string
	PrivateKey  string

	// Network
	WebSocketURL      string
	Room              string
	HandshakeTimeout  time.Duration
	PingInterval      time.Duration
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration

	// Tasks
	TaskTimeout        time.Duration
	MaxConcurrentTasks int

	// Health server
	HealthEnabled bool
	HealthPort    int
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Name:               "DeFAI Agent",
		Description:        "Retrieves token market data and ticker mentions from social posts",
		Version:            version.Version(),
		HandshakeTimeout:   10 * time.Second,
		PingInterval:       30 * time.Second,
		ReconnectDelay:     time.Second,
		MaxReconnectDelay:  time.Minute,
		TaskTimeout:        2 * time.Minute,
		MaxConcurrentTasks: 4,
		HealthEnabled:      true,
		HealthPort:         8080,
	}
}

// Validate checks the fields required to connect
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: agent name is required", types.ErrInvalidConfig)
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("%w: private key is required", types.ErrInvalidConfig)
	}
	if c.WebSocketURL == "" {
		return fmt.Errorf("%w: websocket url is required", types.ErrInvalidConfig)
	}
	if c.MaxConcurrentTasks < 1 {
		return fmt.Errorf("%w: max concurrent tasks must be positive", types.ErrInvalidConfig)
	}
	return nil
}
