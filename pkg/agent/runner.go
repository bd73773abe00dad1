package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/pkg/types"
)

// Agent connects a task handler to the agent network over a WebSocket
// session. It authenticates with a signed challenge, registers its
// capabilities and answers tasks until its context ends, reconnecting with
// exponential backoff.
type Agent struct {
	config  *Config
	handler types.AgentHandler
	auth    *Authenticator
	health  *HealthServer
	dialer  *websocket.Dialer

	mu            sync.RWMutex
	conn          *websocket.Conn
	connected     bool
	authenticated bool
	startTime     time.Time

	writeMu     sync.Mutex
	sem         chan struct{}
	activeTasks atomic.Int32
	processed   atomic.Int64
	failed      atomic.Int64
}

// Options holds optional collaborators of an Agent
type Options struct {
	// MetricsHandler is served on /metrics by the health server
	MetricsHandler http.Handler
}

// New creates an agent for handler
func New(config *Config, handler types.AgentHandler, opts Options) (*Agent, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is required", types.ErrInvalidConfig)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: agent handler is required", types.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	auth, err := NewAuthenticator(config.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	a := &Agent{
		config:  config,
		handler: handler,
		auth:    auth,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
		},
		sem: make(chan struct{}, config.MaxConcurrentTasks),
	}
	if config.HealthEnabled {
		a.health = NewHealthServer(config.HealthPort, a, opts.MetricsHandler)
	}
	return a, nil
}

// Run keeps a session open until ctx is done
func (a *Agent) Run(ctx context.Context) error {
	a.mu.Lock()
	a.startTime = time.Now()
	a.mu.Unlock()

	log.Info().
		Str("name", a.config.Name).
		Str("version", a.config.Version).
		Str("wallet", a.auth.Address()).
		Msg("starting agent")

	if a.health != nil {
		go func() {
			if err := a.health.Start(); err != nil {
				log.Error().Err(err).Msg("health server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.health.Stop(shutdownCtx)
		}()
	}

	delay := a.config.ReconnectDelay
	for {
		registered, err := a.session(ctx)
		if ctx.Err() != nil {
			a.cleanup()
			log.Info().Str("name", a.config.Name).Msg("agent stopped")
			return nil
		}
		if registered {
			delay = a.config.ReconnectDelay
		}

		log.Warn().Err(err).Dur("retry_in", delay).Msg("session ended, reconnecting")

		select {
		case <-ctx.Done():
			a.cleanup()
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > a.config.MaxReconnectDelay {
			delay = a.config.MaxReconnectDelay
		}
	}
}

// session runs one connection from dial to disconnect. It reports whether the
// agent got registered.
func (a *Agent) session(ctx context.Context) (bool, error) {
	header := http.Header{}
	if token, ok := a.auth.Session(); ok {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := a.dialer.DialContext(ctx, a.config.WebSocketURL, header)
	if err != nil {
		return false, fmt.Errorf("failed to connect to %s: %w", a.config.WebSocketURL, err)
	}
	a.setConn(conn)
	defer a.setConn(nil)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-sessionCtx.Done()
		conn.Close()
	}()
	go a.pingLoop(sessionCtx)

	log.Info().Str("url", a.config.WebSocketURL).Msg("connected")

	if err := a.send(types.MessageTypeRequestChallenge, "", types.ChallengeRequest{
		UserType: "agent",
		Address:  a.auth.Address(),
	}); err != nil {
		return false, err
	}

	registered := false
	for {
		var msg types.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return registered, fmt.Errorf("failed to read message: %w", err)
		}

		done, err := a.handleMessage(sessionCtx, &msg)
		if err != nil {
			return registered, err
		}
		if done {
			registered = true
		}
	}
}

// handleMessage dispatches one inbound message. It returns true once the
// agent has registered.
func (a *Agent) handleMessage(ctx context.Context, msg *types.Message) (bool, error) {
	switch msg.Type {
	case types.MessageTypeChallenge:
		var challenge types.ChallengeMessage
		if err := json.Unmarshal(msg.Data, &challenge); err != nil {
			return false, fmt.Errorf("failed to parse challenge: %w", err)
		}
		signature, err := a.auth.SignChallenge(challenge.Challenge)
		if err != nil {
			return false, err
		}
		return false, a.send(types.MessageTypeAuth, "", types.AuthMessage{
			Address:   a.auth.Address(),
			Signature: signature,
			Message:   challenge.Challenge,
			UserType:  "agent",
			AgentName: a.config.Name,
			Timestamp: time.Now().Unix(),
		})

	case types.MessageTypeAuthSuccess:
		var success types.AuthSuccessMessage
		if err := json.Unmarshal(msg.Data, &success); err != nil {
			return false, fmt.Errorf("failed to parse auth success: %w", err)
		}
		a.auth.SetSession(success.Token)
		a.setAuthenticated(true)
		log.Info().Time("session_expiry", a.auth.SessionExpiry()).Msg("authenticated")

		if err := a.send(types.MessageTypeRegister, "", types.RegistrationMessage{
			Name:          a.config.Name,
			Description:   a.config.Description,
			Version:       a.config.Version,
			WalletAddress: a.auth.Address(),
			Capabilities:  a.capabilities(),
			Room:          a.config.Room,
		}); err != nil {
			return false, err
		}
		log.Info().Str("name", a.config.Name).Msg("registered")
		return true, nil

	case types.MessageTypeAuthError:
		a.auth.ClearSession()
		return false, fmt.Errorf("%w: %s", types.ErrAuthenticationFailed, msg.Content)

	case types.MessageTypeTask:
		go a.runTask(ctx, *msg)
		return false, nil

	case types.MessageTypePing:
		return false, a.send(types.MessageTypePong, "", nil)

	case types.MessageTypePong:
		return false, nil

	case types.MessageTypeError:
		log.Warn().Str("content", msg.Content).RawJSON("data", nonEmptyJSON(msg.Data)).Msg("network error message")
		return false, nil

	default:
		log.Debug().Str("type", msg.Type).Msg("ignoring message")
		return false, nil
	}
}

func (a *Agent) runTask(ctx context.Context, msg types.Message) {
	select {
	case a.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-a.sem }()

	a.activeTasks.Add(1)
	defer a.activeTasks.Add(-1)

	taskID := msg.TaskID
	if taskID == "" {
		taskID = msg.ID
	}

	taskCtx, cancel := context.WithTimeout(ctx, a.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	result, err := a.handler.ProcessTask(taskCtx, msg.Content)
	if errors.Is(taskCtx.Err(), context.DeadlineExceeded) && err != nil {
		err = fmt.Errorf("%w: %v", types.ErrTaskTimeout, err)
	}

	a.processed.Add(1)
	taskResult := types.TaskResult{
		TaskID:   taskID,
		Result:   result,
		Success:  err == nil,
		Duration: time.Since(start),
	}
	if err != nil {
		a.failed.Add(1)
		taskResult.Error = err.Error()
		if taskResult.Result == "" {
			taskResult.Result = err.Error()
		}
		log.Error().Err(err).Str("task_id", taskID).Msg("task failed")
	} else {
		log.Info().Str("task_id", taskID).Dur("duration", taskResult.Duration).Msg("task completed")
	}

	if sendErr := a.sendTaskResponse(msg, taskResult); sendErr != nil {
		log.Error().Err(sendErr).Str("task_id", taskID).Msg("failed to send task response")
	}
}

func (a *Agent) sendTaskResponse(task types.Message, result types.TaskResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal task result: %w", err)
	}
	return a.write(types.Message{
		ID:          uuid.NewString(),
		Type:        types.MessageTypeTaskResponse,
		From:        a.auth.Address(),
		ContentType: types.StandardMessageTypeString,
		Content:     result.Result,
		Timestamp:   time.Now().UTC(),
		TaskID:      result.TaskID,
		ReplyTo:     task.ID,
		Data:        data,
		Room:        task.Room,
	})
}

func (a *Agent) pingLoop(ctx context.Context) {
	if a.config.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(a.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.send(types.MessageTypePing, "", nil); err != nil {
				log.Warn().Err(err).Msg("failed to send ping")
			}
		}
	}
}

func (a *Agent) send(msgType, content string, data any) error {
	msg := types.Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		From:      a.auth.Address(),
		Content:   content,
		Timestamp: time.Now().UTC(),
		Room:      a.config.Room,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", msgType, err)
		}
		msg.Data = raw
	}
	return a.write(msg)
}

func (a *Agent) write(msg types.Message) error {
	a.mu.RLock()
	conn := a.conn
	a.mu.RUnlock()
	if conn == nil {
		return types.ErrNotConnected
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write %s: %w", msg.Type, err)
	}
	return nil
}

func (a *Agent) capabilities() []types.AgentCapability {
	if p, ok := a.handler.(types.CapabilityProvider); ok {
		return p.Capabilities()
	}
	return nil
}

func (a *Agent) setConn(conn *websocket.Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conn = conn
	a.connected = conn != nil
	if conn == nil {
		a.authenticated = false
	}
}

func (a *Agent) setAuthenticated(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authenticated = v
}

func (a *Agent) cleanup() {
	if cleaner, ok := a.handler.(types.AgentCleaner); ok {
		if err := cleaner.Cleanup(context.Background()); err != nil {
			log.Warn().Err(err).Msg("error cleaning up agent handler")
		}
	}
}

// Status implements StatusGetter
func (a *Agent) Status() types.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var names []string
	for _, c := range a.capabilities() {
		names = append(names, c.Name)
	}

	var uptime time.Duration
	if !a.startTime.IsZero() {
		uptime = time.Since(a.startTime).Round(time.Second)
	}

	return types.AgentStatus{
		Name:            a.config.Name,
		Version:         a.config.Version,
		Wallet:          a.auth.Address(),
		Capabilities:    names,
		IsConnected:     a.connected,
		IsAuthenticated: a.authenticated,
		ActiveTasks:     int(a.activeTasks.Load()),
		TasksProcessed:  a.processed.Load(),
		TasksFailed:     a.failed.Load(),
		Uptime:          uptime.String(),
		SessionExpiry:   a.auth.SessionExpiry(),
	}
}

// Address returns the agent wallet address
func (a *Agent) Address() string {
	return a.auth.Address()
}

func nonEmptyJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
