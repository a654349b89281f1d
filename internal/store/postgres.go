package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uxtriage/uxtriage/internal/metrics"
	"github.com/uxtriage/uxtriage/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SearchIssues runs the disjunctive substring filter over ux_issues.
func (s *PostgresStore) SearchIssues(ctx context.Context, query string, synonyms []string, limit int) ([]models.UXIssue, error) {
	conditions := make([]string, 0, len(searchColumns)+len(synonyms))
	args := make([]any, 0, len(searchColumns)+len(synonyms)+1)

	// Primary search: query across all searchable columns
	for _, col := range searchColumns {
		args = append(args, query)
		conditions = append(conditions, fmt.Sprintf("%s ilike '%%' || $%d || '%%'", col, len(args)))
	}

	// Synonym broadening targets symptom only
	for _, syn := range synonyms {
		args = append(args, syn)
		conditions = append(conditions, fmt.Sprintf("symptom ilike '%%' || $%d || '%%'", len(args)))
	}

	args = append(args, limit)
	sql := fmt.Sprintf(`
		select product, screen, symptom, root_cause, recommendation, metric
		from ux_issues
		where %s
		order by created_at desc
		limit $%d
	`, strings.Join(conditions, " or "), len(args))

	start := time.Now()
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []models.UXIssue
	for rows.Next() {
		var issue models.UXIssue
		if err := rows.Scan(
			&issue.Product,
			&issue.Screen,
			&issue.Symptom,
			&issue.RootCause,
			&issue.Recommendation,
			&issue.Metric,
		); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.StoreQueryLatency.Observe(time.Since(start).Seconds())
	return issues, nil
}
