package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/uxtriage/uxtriage/internal/agent"
	"github.com/uxtriage/uxtriage/internal/session"
)

// maxMessageLength guards against oversized chat input.
const maxMessageLength = 4000

// ChatRequest is the body of POST /chat. An empty conversation_id starts a
// new conversation.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
}

// Chat handles one conversation turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(message) > maxMessageLength {
		h.Error(w, http.StatusBadRequest, "message too long")
		return
	}

	sess, err := h.resolveSession(req.ConversationID)
	if err != nil {
		h.Error(w, http.StatusNotFound, err.Error())
		return
	}

	answer, err := sess.RunTurn(r.Context(), h.orchestrator, message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("conversation_id", sess.ID.String()).
			Msg("turn failed")

		if errors.Is(err, agent.ErrLoopLimitExceeded) {
			h.Error(w, http.StatusServiceUnavailable, "the assistant could not reach an answer, please try rephrasing")
			return
		}
		h.Error(w, http.StatusBadGateway, "the assistant is unavailable, please try again")
		return
	}

	h.JSON(w, http.StatusOK, ChatResponse{
		ConversationID: sess.ID.String(),
		Answer:         answer,
	})
}

func (h *Handler) resolveSession(conversationID string) (*session.Session, error) {
	if conversationID == "" {
		return h.sessions.Create(), nil
	}
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, errors.New("invalid conversation_id format")
	}
	sess, ok := h.sessions.Get(id)
	if !ok {
		return nil, errors.New("unknown conversation_id")
	}
	return sess, nil
}
