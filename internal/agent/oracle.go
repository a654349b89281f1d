// Package agent implements the conversation loop: a reasoning model is
// invoked with the message history and a tool catalogue, tool calls it emits
// are dispatched, and their answers are fed back until it produces a final
// answer.
package agent

import (
	"context"

	"github.com/uxtriage/uxtriage/internal/models"
)

// ParameterSchema is the subset of JSON Schema used to describe tool
// arguments.
type ParameterSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// ToolSchema declares a tool to the reasoning model: a name, a natural
// language description, and the argument schema. It carries no
// implementation.
type ToolSchema struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  *ParameterSchema `json:"parameters,omitempty"`
}

// Oracle is the reasoning model behind the assistant. Given the history and
// the tool catalogue it returns either a final assistant message or one
// carrying tool calls. Implementations must treat the history as read-only.
type Oracle interface {
	Invoke(ctx context.Context, history []models.Message, tools []ToolSchema) (models.Message, error)
}
