// Package retrieval searches the UX issue store with relevance-biased query
// broadening. A missing store is a valid degraded mode, observable only as
// empty results.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/metrics"
	"github.com/uxtriage/uxtriage/internal/models"
	"github.com/uxtriage/uxtriage/internal/store"
)

// DefaultLimit caps result sets when the caller does not specify one.
const DefaultLimit = 5

// minQueryLength guards against near-empty queries producing spurious broad
// matches.
const minQueryLength = 3

// Fixed synonym groups, read-only after process start. A query containing any
// group member gets the group's expansion terms added to the symptom filter.
var (
	deliveryGroup     = []string{"delivery", "shipping", "postage", "courier"}
	deliveryExpansion = []string{"delivery", "shipping"}

	priceGroup     = []string{"price", "cost", "fee", "fees", "total", "tax"}
	priceExpansion = []string{"price", "cost", "fee", "total"}
)

// ExpandSynonyms derives extra lowercase keywords to broaden a store search,
// but only when they are relevant to the query text. Duplicates are removed
// preserving first-seen order; the query text itself is never included.
func ExpandSynonyms(query string) []string {
	text := strings.ToLower(query)

	var synonyms []string
	if containsAny(text, deliveryGroup) {
		synonyms = append(synonyms, deliveryExpansion...)
	}
	if containsAny(text, priceGroup) {
		synonyms = append(synonyms, priceExpansion...)
	}

	seen := make(map[string]bool, len(synonyms))
	out := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Retriever searches catalogued issues. A nil store means no backend is
// configured; searches then return no rows without error.
type Retriever struct {
	store   store.IssueStore
	logger  zerolog.Logger
	timeout time.Duration
}

// New creates a Retriever. st may be nil. timeout bounds each store query;
// zero disables the bound.
func New(st store.IssueStore, logger zerolog.Logger, timeout time.Duration) *Retriever {
	return &Retriever{store: st, logger: logger, timeout: timeout}
}

// Enabled reports whether a store backend is configured.
func (r *Retriever) Enabled() bool {
	return r.store != nil
}

// Search returns at most limit issues similar to query, most recent first.
// Degraded modes (no store, too-short query) return an empty slice and no
// error; store failures are returned to the caller.
func (r *Retriever) Search(ctx context.Context, query string, limit int) ([]models.UXIssue, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if r.store == nil {
		r.logger.Debug().Msg("issue store not configured, skipping lookup")
		return []models.UXIssue{}, nil
	}

	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		r.logger.Debug().Str("query", query).Msg("query too short, skipping lookup")
		return []models.UXIssue{}, nil
	}

	synonyms := ExpandSynonyms(query)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	metrics.SearchQueries.Inc()
	issues, err := r.store.SearchIssues(ctx, query, synonyms, limit)
	if err != nil {
		return nil, fmt.Errorf("issue search: %w", err)
	}

	r.logger.Debug().
		Str("query", query).
		Strs("synonyms", synonyms).
		Int("rows", len(issues)).
		Msg("issue store searched")

	if issues == nil {
		issues = []models.UXIssue{}
	}
	return issues, nil
}
