package session

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/agent"
	"github.com/uxtriage/uxtriage/internal/models"
	"github.com/uxtriage/uxtriage/internal/retrieval"
)

type staticOracle struct{}

func (staticOracle) Invoke(ctx context.Context, history []models.Message, tools []agent.ToolSchema) (models.Message, error) {
	return models.Message{Role: models.RoleAssistant, Content: "answer"}, nil
}

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager()

	s := m.Create()
	got, ok := m.Get(s.ID)
	if !ok || got != s {
		t.Fatal("created session not retrievable")
	}
	if _, ok := m.Get(m.Create().ID); !ok {
		t.Fatal("second session not retrievable")
	}
	if m.Count() != 2 {
		t.Fatalf("count = %d, want 2", m.Count())
	}
}

func TestSessionSerializesTurns(t *testing.T) {
	m := NewManager()
	s := m.Create()

	dispatcher := agent.NewToolset(retrieval.New(nil, zerolog.Nop(), 0), zerolog.Nop())
	orch := agent.NewOrchestrator(staticOracle{}, dispatcher, zerolog.Nop(), agent.OrchestratorConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.RunTurn(context.Background(), orch, "question"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	// 1 system + 8 * (user + assistant)
	if got := s.Len(); got != 17 {
		t.Fatalf("history length = %d, want 17", got)
	}
}
