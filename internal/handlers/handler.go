package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/agent"
	"github.com/uxtriage/uxtriage/internal/retrieval"
	"github.com/uxtriage/uxtriage/internal/session"
	"github.com/uxtriage/uxtriage/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	orchestrator *agent.Orchestrator
	sessions     *session.Manager
	retriever    *retrieval.Retriever
	issues       store.IssueStore // nil when no store is configured
	redis        *redis.Client    // nil when Redis is not configured
	logger       zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies. issues and
// rdb may be nil.
func NewHandler(orch *agent.Orchestrator, sessions *session.Manager, retriever *retrieval.Retriever, issues store.IssueStore, rdb *redis.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		orchestrator: orch,
		sessions:     sessions,
		retriever:    retriever,
		issues:       issues,
		redis:        rdb,
		logger:       logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
