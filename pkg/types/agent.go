package types

import (
	"context"
	"time"
)

// AgentHandler defines the interface that all agents must implement
type AgentHandler interface {
	// ProcessTask processes a single task and returns the result
	ProcessTask(ctx context.Context, task string) (string, error)
}

// AgentCleaner is an optional interface for agents that need custom cleanup
type AgentCleaner interface {
	Cleanup(ctx context.Context) error
}

// CapabilityProvider is an optional interface for handlers that advertise
// their own capabilities at registration
type CapabilityProvider interface {
	Capabilities() []AgentCapability
}

// AgentCapability represents a capability that an agent can perform
type AgentCapability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskResult represents the result of a processed task
type TaskResult struct {
	TaskID   string        `json:"task_id"`
	Result   string        `json:"result"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// AgentStatus represents the current status of an agent
type AgentStatus struct {
	Name            string    `json:"name"`
	Version         string    `json:"version"`
	Wallet          string    `json:"wallet"`
	Capabilities    []string  `json:"capabilities"`
	IsConnected     bool      `json:"is_connected"`
	IsAuthenticated bool      `json:"is_authenticated"`
	ActiveTasks     int       `json:"active_tasks"`
	TasksProcessed  int64     `json:"tasks_processed"`
	TasksFailed     int64     `json:"tasks_failed"`
	Uptime          string    `json:"uptime"`
	SessionExpiry   time.Time `json:"session_expiry,omitempty"`
}

// Constants for log levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)
