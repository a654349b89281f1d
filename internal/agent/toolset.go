package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/heuristics"
	"github.com/uxtriage/uxtriage/internal/retrieval"
)

// Tool names as declared to the reasoning model.
const (
	ToolSearchUXDB   = "search_ux_db"
	ToolUXHeuristics = "ux_heuristics"
)

// queryParams is the argument schema shared by both tools: a single required
// string parameter "query".
func queryParams(description string) *ParameterSchema {
	return &ParameterSchema{
		Type: "object",
		Properties: map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		Required: []string{"query"},
	}
}

// SearchIssuesTool exposes the issue retriever to the reasoning model.
func SearchIssuesTool(r *retrieval.Retriever) Tool {
	return Tool{
		Schema: ToolSchema{
			Name:        ToolSearchUXDB,
			Description: "Search a UX research database for issues similar to the user's message. Returns a list of matching UX issues.",
			Parameters:  queryParams("The user's full original message, verbatim."),
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			return r.Search(ctx, query, retrieval.DefaultLimit)
		},
	}
}

// HeuristicsTool exposes the heuristic matcher to the reasoning model.
func HeuristicsTool() Tool {
	return Tool{
		Schema: ToolSchema{
			Name:        ToolUXHeuristics,
			Description: "Run UX heuristic checks on a described problem. Returns structured signals (matched heuristics, severity, recommendations).",
			Parameters:  queryParams("The user's full original message, verbatim."),
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			return heuristics.Evaluate(query), nil
		},
	}
}

// NewToolset registers the assistant's two tools on a fresh dispatcher.
func NewToolset(r *retrieval.Retriever, logger zerolog.Logger) *Dispatcher {
	d := NewDispatcher(logger)
	// Registration cannot fail here: names are distinct constants.
	_ = d.Register(SearchIssuesTool(r))
	_ = d.Register(HeuristicsTool())
	return d
}
