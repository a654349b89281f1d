package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/uxtriage/uxtriage/internal/metrics"
	"github.com/uxtriage/uxtriage/internal/models"
)

// SQLiteStore handles SQLite database operations. It exists for local
// development; the query shape matches PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/uxtriage.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/uxtriage.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates the issues table if it doesn't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ux_issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product TEXT NOT NULL DEFAULT '',
		screen TEXT NOT NULL DEFAULT '',
		symptom TEXT NOT NULL DEFAULT '',
		root_cause TEXT NOT NULL DEFAULT '',
		recommendation TEXT NOT NULL DEFAULT '',
		metric TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_ux_issues_created_at ON ux_issues(created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SearchIssues runs the disjunctive substring filter over ux_issues.
// SQLite LIKE is case-insensitive for ASCII only, so both sides are lowered.
func (s *SQLiteStore) SearchIssues(ctx context.Context, query string, synonyms []string, limit int) ([]models.UXIssue, error) {
	conditions := make([]string, 0, len(searchColumns)+len(synonyms))
	args := make([]any, 0, len(searchColumns)+len(synonyms)+1)

	for _, col := range searchColumns {
		conditions = append(conditions, fmt.Sprintf("lower(%s) like '%%' || lower(?) || '%%'", col))
		args = append(args, query)
	}

	for _, syn := range synonyms {
		conditions = append(conditions, "lower(symptom) like '%' || lower(?) || '%'")
		args = append(args, syn)
	}

	args = append(args, limit)
	sqlText := fmt.Sprintf(`
		SELECT product, screen, symptom, root_cause, recommendation, metric
		FROM ux_issues
		WHERE %s
		ORDER BY created_at DESC
		LIMIT ?
	`, strings.Join(conditions, " OR "))

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
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
