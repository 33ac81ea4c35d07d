package publisher

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteSink keeps one table per destination; each publish drops and
// recreates it inside a transaction, so readers never see a partial table.
type SQLiteSink struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteSink opens (or creates) the SQLite database.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite sink opened")
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Publish(ctx context.Context, t Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := quoteIdent(t.Destination)
	cols := make([]string, len(t.Columns))
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(ColumnKey(c))
		defs[i] = cols[i] + " " + sqlType(t, i)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		"DROP TABLE IF EXISTS " + table,
		fmt.Sprintf("CREATE TABLE %s (rank INTEGER PRIMARY KEY, %s)", table, strings.Join(defs, ", ")),
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("exec %q: %w", q, err)
		}
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (rank, %s) VALUES (?, %s)",
		table, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for i, row := range t.Rows {
		args := make([]any, 0, len(row)+1)
		args = append(args, i+1)
		args = append(args, row...)
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Close() error {
	log.Info().Msg("closing sqlite sink")
	return s.db.Close()
}

// ColumnKey turns a display column into a snake_case identifier:
// "Near Upside (%)" becomes "near_upside_pct".
func ColumnKey(col string) string {
	col = strings.ReplaceAll(strings.ToLower(col), "%", "pct")
	var b strings.Builder
	underscore := false
	for _, r := range col {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlType infers a column affinity from the first row.
func sqlType(t Table, col int) string {
	if len(t.Rows) == 0 || col >= len(t.Rows[0]) {
		return "TEXT"
	}
	switch t.Rows[0][col].(type) {
	case int, int64:
		return "INTEGER"
	case float64:
		return "REAL"
	default:
		return "TEXT"
	}
}
