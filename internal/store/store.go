package store

import (
	"context"

	"github.com/uxtriage/uxtriage/internal/models"
)

// searchColumns are the wide-match columns: the raw query text is matched
// against all of them. Synonyms broaden the symptom column only.
var searchColumns = []string{"symptom", "screen", "root_cause", "recommendation"}

// IssueStore is read-only access to catalogued UX issues.
// Both PostgresStore and SQLiteStore implement this interface; either may be
// shared across conversations concurrently.
type IssueStore interface {
	// SearchIssues returns issues whose symptom, screen, root_cause, or
	// recommendation contains query as a case-insensitive substring, or whose
	// symptom contains any of the synonyms. Results are ordered by recency
	// and capped at limit.
	SearchIssues(ctx context.Context, query string, synonyms []string, limit int) ([]models.UXIssue, error)

	// Connection management
	Ping(ctx context.Context) error
	Close()
}
