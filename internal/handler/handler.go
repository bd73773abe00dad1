// Package handler turns agent network tasks into capability calls and formats
// their replies.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/observability"
	"github.com/TeneoProtocolAI/defai-agent/pkg/types"
)

// Capability names.
const (
	CapabilityFindTokenInformations = "findTokenInformations"
	CapabilityPostMessage           = "twitterPostMessage"
	CapabilityUserTickerMentions    = "twitterGetUserTweetsWithTickerMentions"
)

// Capabilities lists what the agent can do.
var Capabilities = []types.AgentCapability{
	{
		Name:        CapabilityFindTokenInformations,
		Description: "Retrieve token informations (price, change, liquidity, volume, logo, links, socials, DEX and pairs) by its ticker symbol and save data as a JSON file.",
	},
	{
		Name:        CapabilityPostMessage,
		Description: "Post a tweet message on Twitter and retrieve the Tweet ID if successful.",
	},
	{
		Name:        CapabilityUserTickerMentions,
		Description: "Retrieve tweets mentioning ticker(s) from a specific Twitter user, with detailed cryptocurrency informations related to the tickers attached to the tweets.",
	},
}

// Service is the set of capabilities the handler dispatches to.
type Service interface {
	FindTokenInformations(ctx context.Context, input domain.TokenLookupInput) (*domain.TokenLookupOutput, error)
	GetUserTweetsWithTickerMentions(ctx context.Context, input domain.UserMentionsInput) (*domain.UserMentionsOutput, error)
	PostMessage(ctx context.Context, input domain.PostMessageInput) (*domain.Post, error)
}

// Task is the JSON form of a task.
type Task struct {
	Capability string          `json:"capability"`
	Args       json.RawMessage `json:"args"`
}

// TaskHandler implements types.AgentHandler on top of Service.
type TaskHandler struct {
	service Service
	metrics *observability.Metrics
}

func NewTaskHandler(service Service, metrics *observability.Metrics) *TaskHandler {
	return &TaskHandler{service: service, metrics: metrics}
}

// Capabilities implements types.CapabilityProvider.
func (h *TaskHandler) Capabilities() []types.AgentCapability {
	return Capabilities
}

// ProcessTask parses task and runs the matching capability. Expected outcomes
// such as an unknown token are replies, not errors.
func (h *TaskHandler) ProcessTask(ctx context.Context, task string) (string, error) {
	parsed, err := ParseTask(task)
	if err != nil {
		return "", err
	}

	log.Info().Str("capability", parsed.Capability).Msg("processing task")

	var reply string
	switch parsed.Capability {
	case CapabilityFindTokenInformations:
		reply, err = h.findTokenInformations(ctx, parsed.Args)
	case CapabilityPostMessage:
		reply, err = h.postMessage(ctx, parsed.Args)
	case CapabilityUserTickerMentions:
		reply, err = h.userTickerMentions(ctx, parsed.Args)
	default:
		err = fmt.Errorf("%w: %s", types.ErrUnknownCapability, parsed.Capability)
	}

	h.metrics.RecordTask(parsed.Capability, err)
	return reply, err
}

// ParseTask accepts either a JSON task or a "<capability> <argument>" command.
func ParseTask(task string) (*Task, error) {
	task = strings.TrimSpace(task)
	task = strings.TrimPrefix(task, "/")
	if task == "" {
		return nil, fmt.Errorf("%w: empty task", types.ErrInvalidTask)
	}

	if strings.HasPrefix(task, "{") {
		var t Task
		if err := json.Unmarshal([]byte(task), &t); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidTask, err)
		}
		if t.Capability == "" {
			return nil, fmt.Errorf("%w: missing capability", types.ErrInvalidTask)
		}
		return &t, nil
	}

	name, rest, _ := strings.Cut(task, " ")
	rest = strings.TrimSpace(rest)

	var args any
	switch name {
	case CapabilityFindTokenInformations:
		args = domain.TokenLookupInput{Token: rest}
	case CapabilityPostMessage:
		args = domain.PostMessageInput{Message: rest}
	case CapabilityUserTickerMentions:
		args = domain.UserMentionsInput{Username: rest}
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownCapability, name)
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task args: %w", err)
	}
	return &Task{Capability: name, Args: raw}, nil
}

func (h *TaskHandler) findTokenInformations(ctx context.Context, raw json.RawMessage) (string, error) {
	var input domain.TokenLookupInput
	if err := decodeArgs(raw, &input); err != nil {
		return "", err
	}

	out, err := h.service.FindTokenInformations(ctx, input)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Sprintf("No data was found for the cryptocurrency token %q on the third-party service API. Please verify that the token is correct and try again.", nf.Query), nil
		}
		return "", err
	}
	return FormatTokenReply(out)
}

func (h *TaskHandler) postMessage(ctx context.Context, raw json.RawMessage) (string, error) {
	var input domain.PostMessageInput
	if err := decodeArgs(raw, &input); err != nil {
		return "", err
	}

	post, err := h.service.PostMessage(ctx, input)
	if err != nil {
		return "", err
	}

	tweet, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal post: %w", err)
	}
	return fmt.Sprintf("Message successfully posted on Twitter :\nTweet: %s", tweet), nil
}

func (h *TaskHandler) userTickerMentions(ctx context.Context, raw json.RawMessage) (string, error) {
	var input domain.UserMentionsInput
	if err := decodeArgs(raw, &input); err != nil {
		return "", err
	}

	out, err := h.service.GetUserTweetsWithTickerMentions(ctx, input)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field == "user_id" {
			return "Please provide a valid Twitter username or user id.", nil
		}
		if ve != nil {
			return "", err
		}
		id := input.UserID
		if id == "" {
			id = input.Username
		}
		return "", fmt.Errorf("tweets could not be retrieved from Twitter user %s: %w", id, err)
	}
	return FormatMentionsReply(out)
}

// FormatTokenReply renders the reply of a token lookup.
func FormatTokenReply(out *domain.TokenLookupOutput) (string, error) {
	website := "No website url found"
	if w := out.Data.Website(); w != nil && *w != "" {
		website = *w
	}

	informations, err := json.MarshalIndent(out.Data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal token data: %w", err)
	}

	return fmt.Sprintf(`Comprehensive data about the crypto ticker %s (%s) has been fetched and saved as a JSON file.
You can find the details in the file named: %s.
Crypto ticker website is: %s.
Informations found : %s`, out.Data.Name, out.Data.Symbol, out.Path, website, informations), nil
}

// FormatMentionsReply renders the reply of a user mentions run.
func FormatMentionsReply(out *domain.UserMentionsOutput) (string, error) {
	if out.PostCount == 0 {
		return fmt.Sprintf("Warning: No tweets were found from Twitter user ID : %q", out.UserID), nil
	}
	if len(out.CreatedFiles) == 0 {
		return fmt.Sprintf("Tweets successfully retrieved from Twitter user ID : %q but no ticker(s) found.", out.UserID), nil
	}

	files, err := json.MarshalIndent(out.CreatedFiles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal created files: %w", err)
	}
	return fmt.Sprintf(`Tweets mentioning ticker(s) successfully retrieved from Twitter user ID : %q.
Here is the list of files, one per tweet, each containing detailed cryptocurrency information (price, change, liquidity, volume, logo, links, socials, DEX and pairs) related to the mentioned ticker(s):
%s`, out.UserID, files), nil
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: invalid args: %v", types.ErrInvalidTask, err)
	}
	return nil
}
