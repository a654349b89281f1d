package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/models"
	"github.com/uxtriage/uxtriage/internal/retrieval"
)

// scriptedOracle replays canned responses and records every history it was
// shown.
type scriptedOracle struct {
	responses []models.Message
	histories [][]models.Message
	err       error
}

func (o *scriptedOracle) Invoke(ctx context.Context, history []models.Message, tools []ToolSchema) (models.Message, error) {
	o.histories = append(o.histories, append([]models.Message(nil), history...))
	if o.err != nil {
		return models.Message{}, o.err
	}
	if len(o.responses) == 0 {
		return models.Message{Role: models.RoleAssistant, Content: "done"}, nil
	}
	resp := o.responses[0]
	o.responses = o.responses[1:]
	return resp, nil
}

func newTestOrchestrator(oracle Oracle, maxIterations int) *Orchestrator {
	dispatcher := NewToolset(retrieval.New(nil, zerolog.Nop(), 0), zerolog.Nop())
	return NewOrchestrator(oracle, dispatcher, zerolog.Nop(), OrchestratorConfig{MaxIterations: maxIterations})
}

func toolCallMsg(id, name, query string) models.Message {
	return models.Message{
		Role: models.RoleAssistant,
		ToolCalls: []models.ToolCall{
			{ID: id, Name: name, Arguments: map[string]any{"query": query}},
		},
	}
}

func TestRunTurnEmptyInput(t *testing.T) {
	o := newTestOrchestrator(&scriptedOracle{}, 0)
	state := &State{}

	if _, err := o.RunTurn(context.Background(), state, "   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRunTurnDirectAnswer(t *testing.T) {
	oracle := &scriptedOracle{responses: []models.Message{
		{Role: models.RoleAssistant, Content: "try clearing the cart"},
	}}
	o := newTestOrchestrator(oracle, 0)
	state := &State{}

	answer, err := o.RunTurn(context.Background(), state, "checkout hangs")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "try clearing the cart" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	// system, user, assistant
	if len(state.Messages) != 3 {
		t.Fatalf("history length = %d, want 3", len(state.Messages))
	}
	if state.Messages[0].Role != models.RoleSystem {
		t.Fatal("system message not first")
	}
	if state.Messages[1].Role != models.RoleUser || state.Messages[1].Content != "checkout hangs" {
		t.Fatalf("unexpected user message: %+v", state.Messages[1])
	}
}

func TestRunTurnScenarioSearchThenHeuristics(t *testing.T) {
	// First response asks for the issue search (empty store, so zero rows),
	// second asks for heuristics, third is the final answer. The oracle must
	// be consulted exactly three times.
	oracle := &scriptedOracle{responses: []models.Message{
		toolCallMsg("call_1", ToolSearchUXDB, "delivery fees surprise"),
		toolCallMsg("call_2", ToolUXHeuristics, "delivery fees surprise"),
		{Role: models.RoleAssistant, Content: "final diagnosis"},
	}}
	o := newTestOrchestrator(oracle, 0)
	state := &State{}

	answer, err := o.RunTurn(context.Background(), state, "delivery fees surprise")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "final diagnosis" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if got := len(oracle.histories); got != 3 {
		t.Fatalf("oracle invoked %d times, want 3", got)
	}

	// system, user, assistant+call_1, tool(call_1), assistant+call_2,
	// tool(call_2), assistant final
	roles := make([]string, 0, len(state.Messages))
	for _, m := range state.Messages {
		roles = append(roles, m.Role)
	}
	want := []string{"system", "user", "assistant", "tool", "assistant", "tool", "assistant"}
	if len(roles) != len(want) {
		t.Fatalf("history roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("history roles = %v, want %v", roles, want)
		}
	}

	if state.Messages[3].ToolCallID != "call_1" || state.Messages[5].ToolCallID != "call_2" {
		t.Fatal("tool messages do not answer their requests in order")
	}

	// The second invocation must already see the first tool answer.
	second := oracle.histories[1]
	last := second[len(second)-1]
	if last.Role != models.RoleTool || last.ToolCallID != "call_1" {
		t.Fatalf("second invocation did not end with the call_1 answer: %+v", last)
	}
}

func TestRunTurnAnswersEveryToolCallBeforeNextInvocation(t *testing.T) {
	// One oracle response with two tool calls: both must be answered, in
	// emission order, before the next invocation.
	multi := models.Message{
		Role: models.RoleAssistant,
		ToolCalls: []models.ToolCall{
			{ID: "call_a", Name: ToolSearchUXDB, Arguments: map[string]any{"query": "frozen checkout"}},
			{ID: "call_b", Name: ToolUXHeuristics, Arguments: map[string]any{"query": "frozen checkout"}},
		},
	}
	oracle := &scriptedOracle{responses: []models.Message{
		multi,
		{Role: models.RoleAssistant, Content: "ok"},
	}}
	o := newTestOrchestrator(oracle, 0)
	state := &State{}

	if _, err := o.RunTurn(context.Background(), state, "frozen checkout"); err != nil {
		t.Fatal(err)
	}

	second := oracle.histories[1]
	n := len(second)
	if second[n-2].Role != models.RoleTool || second[n-2].ToolCallID != "call_a" {
		t.Fatalf("first tool answer missing or out of order: %+v", second[n-2])
	}
	if second[n-1].Role != models.RoleTool || second[n-1].ToolCallID != "call_b" {
		t.Fatalf("second tool answer missing or out of order: %+v", second[n-1])
	}

	// Round trip: every request answered exactly once.
	answered := map[string]int{}
	for _, m := range state.Messages {
		if m.Role == models.RoleTool {
			answered[m.ToolCallID]++
		}
	}
	if answered["call_a"] != 1 || answered["call_b"] != 1 {
		t.Fatalf("tool answers per request = %v, want exactly one each", answered)
	}
}

func TestRunTurnLoopLimit(t *testing.T) {
	// An oracle that never stops asking for tools must trip the bound, and
	// the partial history of the turn is discarded.
	looping := &loopingOracle{}
	o := newTestOrchestrator(looping, 3)
	state := &State{}

	_, err := o.RunTurn(context.Background(), state, "checkout hangs")
	if !errors.Is(err, ErrLoopLimitExceeded) {
		t.Fatalf("expected ErrLoopLimitExceeded, got %v", err)
	}
	if looping.calls != 3 {
		t.Fatalf("oracle invoked %d times, want 3", looping.calls)
	}

	// Only the system message survives the rollback.
	if len(state.Messages) != 1 || state.Messages[0].Role != models.RoleSystem {
		t.Fatalf("history after rollback = %+v", state.Messages)
	}
}

type loopingOracle struct {
	calls int
}

func (o *loopingOracle) Invoke(ctx context.Context, history []models.Message, tools []ToolSchema) (models.Message, error) {
	o.calls++
	return toolCallMsg("call_x", ToolUXHeuristics, "again"), nil
}

func TestRunTurnOracleErrorRollsBack(t *testing.T) {
	oracle := &scriptedOracle{err: errors.New("upstream 500")}
	o := newTestOrchestrator(oracle, 0)
	state := &State{Messages: []models.Message{
		{Role: models.RoleSystem, Content: SystemPrompt},
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}}

	_, err := o.RunTurn(context.Background(), state, "new question")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(state.Messages) != 3 {
		t.Fatalf("prior history disturbed: %d messages", len(state.Messages))
	}
}

func TestRunTurnSystemPromptInsertedOnce(t *testing.T) {
	oracle := &scriptedOracle{responses: []models.Message{
		{Role: models.RoleAssistant, Content: "first"},
		{Role: models.RoleAssistant, Content: "second"},
	}}
	o := newTestOrchestrator(oracle, 0)
	state := &State{}

	if _, err := o.RunTurn(context.Background(), state, "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.RunTurn(context.Background(), state, "two"); err != nil {
		t.Fatal(err)
	}

	systems := 0
	for _, m := range state.Messages {
		if m.Role == models.RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Fatalf("system messages = %d, want 1", systems)
	}
	if state.Messages[0].Role != models.RoleSystem {
		t.Fatal("system message not first")
	}
}
