package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/metrics"
	"github.com/uxtriage/uxtriage/internal/models"
)

// ErrLoopLimitExceeded reports that a turn hit the configured bound on
// reasoning/tool-dispatch cycles without reaching a final answer.
var ErrLoopLimitExceeded = errors.New("tool-call loop limit exceeded")

// ErrEmptyInput reports that the caller submitted blank user text.
var ErrEmptyInput = errors.New("empty user input")

// DefaultMaxIterations bounds reasoning cycles per turn.
const DefaultMaxIterations = 8

// State is one conversation's full message history and nothing else. It is
// owned by a single Orchestrator turn at a time and is not safe for
// concurrent mutation; callers serialize turns per conversation.
type State struct {
	Messages []models.Message
}

// Orchestrator owns the turn loop: invoke the oracle, dispatch the tool
// calls it requests, append the answers, repeat until a response carries no
// tool calls.
type Orchestrator struct {
	oracle        Oracle
	dispatcher    *Dispatcher
	logger        zerolog.Logger
	systemPrompt  string
	maxIterations int
}

// OrchestratorConfig tunes an Orchestrator. Zero values get defaults.
type OrchestratorConfig struct {
	SystemPrompt  string
	MaxIterations int
}

// NewOrchestrator wires an oracle and a dispatcher into a turn runner.
func NewOrchestrator(oracle Oracle, dispatcher *Dispatcher, logger zerolog.Logger, cfg OrchestratorConfig) *Orchestrator {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = SystemPrompt
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Orchestrator{
		oracle:        oracle,
		dispatcher:    dispatcher,
		logger:        logger,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: cfg.MaxIterations,
	}
}

// RunTurn appends userText to the history, loops the oracle against the tool
// dispatcher, and returns the final answer. On a failed turn the history is
// rolled back to its pre-turn state (the system message, once inserted,
// stays).
//
// Within one oracle response, tool calls are dispatched in the order emitted
// and every one is answered with a tool message carrying the matching
// tool_call_id before the oracle is consulted again.
func (o *Orchestrator) RunTurn(ctx context.Context, state *State, userText string) (string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", ErrEmptyInput
	}

	// The system prompt is the first element, inserted once, never moved.
	if len(state.Messages) == 0 || state.Messages[0].Role != models.RoleSystem {
		state.Messages = append([]models.Message{{Role: models.RoleSystem, Content: o.systemPrompt}}, state.Messages...)
	}

	checkpoint := len(state.Messages)
	state.Messages = append(state.Messages, models.Message{Role: models.RoleUser, Content: userText})

	for iteration := 0; iteration < o.maxIterations; iteration++ {
		// The oracle gets its own copy: the history is read-only from its
		// point of view.
		history := append([]models.Message(nil), state.Messages...)

		resp, err := o.oracle.Invoke(ctx, history, o.dispatcher.Schemas())
		if err != nil {
			state.Messages = state.Messages[:checkpoint]
			metrics.TurnsTotal.WithLabelValues("oracle_error").Inc()
			return "", fmt.Errorf("reasoning call: %w", err)
		}

		state.Messages = append(state.Messages, resp)

		if len(resp.ToolCalls) == 0 {
			metrics.TurnsTotal.WithLabelValues("answered").Inc()
			o.logger.Debug().Int("iterations", iteration+1).Msg("turn completed")
			return resp.Content, nil
		}

		for _, call := range resp.ToolCalls {
			output := o.dispatcher.Dispatch(ctx, call)
			state.Messages = append(state.Messages, models.Message{
				Role:       models.RoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	state.Messages = state.Messages[:checkpoint]
	metrics.TurnsTotal.WithLabelValues("loop_limit").Inc()
	o.logger.Warn().Int("max_iterations", o.maxIterations).Msg("turn abandoned")
	return "", ErrLoopLimitExceeded
}
