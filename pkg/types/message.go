package types

import (
	"encoding/json"
	"errors"
	"time"
)

// Common errors
var (
	ErrNotImplemented       = errors.New("not implemented")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrInvalidTask          = errors.New("invalid task")
	ErrUnknownCapability    = errors.New("unknown capability")
	ErrTaskTimeout          = errors.New("task timeout")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSignatureInvalid     = errors.New("invalid signature")
	ErrNotConnected         = errors.New("not connected")
)

// Message represents a message exchanged with the agent network
type Message struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	From        string          `json:"from,omitempty"`
	ContentType string          `json:"content_type,omitempty"`
	Content     string          `json:"content,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	TaskID      string          `json:"task_id,omitempty"`
	ReplyTo     string          `json:"reply_to,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Room        string          `json:"room,omitempty"`
}

// MessageType constants
const (
	MessageTypeTask             = "task"
	MessageTypeTaskResponse     = "task_response"
	MessageTypeAuth             = "auth"
	MessageTypeError            = "error"
	MessageTypeChallenge        = "challenge"
	MessageTypeRequestChallenge = "request_challenge"
	MessageTypeAuthSuccess      = "auth_success"
	MessageTypeAuthError        = "auth_error"
	MessageTypeRegister         = "register"
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
)

// Constants for standardized content types
const (
	StandardMessageTypeJSON   = "JSON"
	StandardMessageTypeString = "STRING"
)

// ChallengeRequest asks the network for an authentication challenge
type ChallengeRequest struct {
	UserType string `json:"userType"`
	Address  string `json:"address"`
}

// ChallengeMessage represents an authentication challenge
type ChallengeMessage struct {
	Challenge string `json:"challenge"`
	Timestamp int64  `json:"timestamp"`
}

// AuthMessage carries the signed challenge
type AuthMessage struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
	UserType  string `json:"userType"`
	AgentName string `json:"agentName,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// AuthSuccessMessage is returned once the signature is accepted
type AuthSuccessMessage struct {
	Token   string `json:"token"`
	Address string `json:"address,omitempty"`
}

// RegistrationMessage announces the agent and its capabilities
type RegistrationMessage struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Version       string            `json:"version"`
	WalletAddress string            `json:"wallet_address"`
	Capabilities  []AgentCapability `json:"capabilities"`
	Room          string            `json:"room,omitempty"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
