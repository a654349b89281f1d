package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/agent"
	"github.com/uxtriage/uxtriage/internal/models"
	"github.com/uxtriage/uxtriage/internal/retrieval"
	"github.com/uxtriage/uxtriage/internal/session"
)

type cannedOracle struct {
	answer string
	err    error
}

func (o cannedOracle) Invoke(ctx context.Context, history []models.Message, tools []agent.ToolSchema) (models.Message, error) {
	if o.err != nil {
		return models.Message{}, o.err
	}
	return models.Message{Role: models.RoleAssistant, Content: o.answer}, nil
}

func newTestHandler(oracle agent.Oracle) *Handler {
	retriever := retrieval.New(nil, zerolog.Nop(), 0)
	dispatcher := agent.NewToolset(retriever, zerolog.Nop())
	orch := agent.NewOrchestrator(oracle, dispatcher, zerolog.Nop(), agent.OrchestratorConfig{})
	return NewHandler(orch, session.NewManager(), retriever, nil, nil, zerolog.Nop())
}

func postChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Chat(w, req)
	return w
}

func TestChatNewConversation(t *testing.T) {
	h := newTestHandler(cannedOracle{answer: "add a spinner"})

	w := postChat(t, h, `{"message":"checkout is stuck"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "add a spinner" {
		t.Fatalf("answer = %q", resp.Answer)
	}
	if resp.ConversationID == "" {
		t.Fatal("conversation_id not assigned")
	}
}

func TestChatContinuesConversation(t *testing.T) {
	h := newTestHandler(cannedOracle{answer: "ok"})

	w := postChat(t, h, `{"message":"first"}`)
	var first ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}

	w = postChat(t, h, `{"conversation_id":"`+first.ConversationID+`","message":"second"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var second ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatal("conversation_id changed between turns")
	}
}

func TestChatValidation(t *testing.T) {
	h := newTestHandler(cannedOracle{answer: "ok"})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed JSON", `{`, http.StatusBadRequest},
		{"blank message", `{"message":"   "}`, http.StatusBadRequest},
		{"oversized message", `{"message":"` + strings.Repeat("a", maxMessageLength+1) + `"}`, http.StatusBadRequest},
		{"bad conversation id", `{"conversation_id":"not-a-uuid","message":"hi"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postChat(t, h, tt.body); w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
		})
	}
}

func TestChatOracleFailure(t *testing.T) {
	h := newTestHandler(cannedOracle{err: context.DeadlineExceeded})

	w := postChat(t, h, `{"message":"checkout is stuck"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "error") {
		t.Fatalf("expected error body, got %s", w.Body.String())
	}
}

type loopOracle struct{}

func (loopOracle) Invoke(ctx context.Context, history []models.Message, tools []agent.ToolSchema) (models.Message, error) {
	return models.Message{
		Role: models.RoleAssistant,
		ToolCalls: []models.ToolCall{
			{ID: "call_x", Name: agent.ToolUXHeuristics, Arguments: map[string]any{"query": "again"}},
		},
	}, nil
}

func TestChatLoopLimit(t *testing.T) {
	h := newTestHandler(loopOracle{})

	w := postChat(t, h, `{"message":"checkout is stuck"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestFindWithoutStore(t *testing.T) {
	h := newTestHandler(cannedOracle{answer: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/find?q=slow+checkout", nil)
	w := httptest.NewRecorder()
	h.Find(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp FindResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 0 || len(resp.Results) != 0 {
		t.Fatalf("expected empty result set, got %+v", resp)
	}
}

func TestFindRequiresQuery(t *testing.T) {
	h := newTestHandler(cannedOracle{answer: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/find", nil)
	w := httptest.NewRecorder()
	h.Find(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
