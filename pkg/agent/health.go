package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/pkg/types"
)

// StatusGetter reports the runtime status exposed by the health server
type StatusGetter interface {
	Status() types.AgentStatus
}

// HealthServer exposes /health and, when a metrics handler is set, /metrics
type HealthServer struct {
	server *http.Server
}

// NewHealthServer creates a health server listening on port
func NewHealthServer(port int, status StatusGetter, metrics http.Handler) *HealthServer {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		s := status.Status()

		code := http.StatusOK
		if !s.IsConnected || !s.IsAuthenticated {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(s)
	})
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	return &HealthServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the HTTP handler of the server
func (h *HealthServer) Handler() http.Handler {
	return h.server.Handler
}

// Start serves until Stop is called
func (h *HealthServer) Start() error {
	log.Info().Str("addr", h.server.Addr).Msg("starting health server")
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down
func (h *HealthServer) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}
