package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/metrics"
	"github.com/uxtriage/uxtriage/internal/models"
)

// Handler executes a tool call and returns a JSON-serializable result.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool pairs a schema with its handler.
type Tool struct {
	Schema  ToolSchema
	Handler Handler
}

// Dispatcher is a static registry of tools. It is read-only after setup and
// safe for concurrent use. Tool failures never escape as errors: they become
// tool output text so the reasoning model can see and react to them.
type Dispatcher struct {
	tools  map[string]Tool
	order  []string
	logger zerolog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register inserts a tool when its name is not in use.
func (d *Dispatcher) Register(t Tool) error {
	name := t.Schema.Name
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", name)
	}
	if _, exists := d.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	d.tools[name] = t
	d.order = append(d.order, name)
	return nil
}

// Schemas returns the declared tool catalogue in registration order.
func (d *Dispatcher) Schemas() []ToolSchema {
	out := make([]ToolSchema, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.tools[name].Schema)
	}
	return out
}

// Dispatch resolves and runs one tool call, returning the tool output text.
// Unknown tools, invalid arguments, and handler failures all produce
// explanatory output rather than an error.
func (d *Dispatcher) Dispatch(ctx context.Context, call models.ToolCall) string {
	tool, ok := d.tools[call.Name]
	if !ok {
		d.logger.Warn().Str("tool", call.Name).Msg("unknown tool requested")
		metrics.ToolDispatches.WithLabelValues(call.Name, "error").Inc()
		return fmt.Sprintf("tool error: unknown tool %q", call.Name)
	}

	if err := validateArguments(call.Arguments, tool.Schema.Parameters); err != nil {
		d.logger.Warn().Str("tool", call.Name).Err(err).Msg("invalid tool arguments")
		metrics.ToolDispatches.WithLabelValues(call.Name, "error").Inc()
		return fmt.Sprintf("tool error: invalid arguments: %v", err)
	}

	result, err := tool.Handler(ctx, call.Arguments)
	if err != nil {
		d.logger.Warn().Str("tool", call.Name).Err(err).Msg("tool execution failed")
		metrics.ToolDispatches.WithLabelValues(call.Name, "error").Inc()
		return fmt.Sprintf("tool error: %v", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		d.logger.Error().Str("tool", call.Name).Err(err).Msg("tool result not serializable")
		metrics.ToolDispatches.WithLabelValues(call.Name, "error").Inc()
		return fmt.Sprintf("tool error: result not serializable: %v", err)
	}

	metrics.ToolDispatches.WithLabelValues(call.Name, "ok").Inc()
	return string(out)
}

// validateArguments checks required fields and primitive types against the
// declared schema.
func validateArguments(args map[string]any, schema *ParameterSchema) error {
	if schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	for _, field := range schema.Required {
		if _, exists := args[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	for key, value := range args {
		propDef, ok := schema.Properties[key]
		if !ok {
			continue
		}
		expected := expectedType(propDef)
		if expected == "" {
			continue
		}
		if err := checkType(value, expected); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

func expectedType(definition any) string {
	if def, ok := definition.(map[string]any); ok {
		if t, ok := def["type"].(string); ok {
			return t
		}
	}
	return ""
}

func checkType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		switch value.(type) {
		case float32, float64, int, int64, json.Number:
			return nil
		}
	case "integer":
		switch v := value.(type) {
		case int, int64:
			return nil
		case float64:
			if v == float64(int64(v)) {
				return nil
			}
		case json.Number:
			if _, err := v.Int64(); err == nil {
				return nil
			}
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}
