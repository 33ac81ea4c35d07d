package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"MarketScreener/internal/scanner"
)

// SQLiteRecorder appends every run to history tables in a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS group_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			group_name    TEXT NOT NULL,
			destination   TEXT,
			profile       TEXT,
			started_at    INTEGER NOT NULL,
			finished_at   INTEGER NOT NULL,
			records       INTEGER,
			skipped       INTEGER,
			published     INTEGER,
			publish_error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_group_runs_ts ON group_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS picks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			group_name  TEXT NOT NULL,
			rank        INTEGER,
			ticker      TEXT NOT NULL,
			price       REAL,
			score       INTEGER,
			action      TEXT,
			risk_reward REAL,
			stop_loss   REAL,
			near_target REAL,
			rationale   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_picks_ticker ON picks(ticker)`,

		`CREATE TABLE IF NOT EXISTS skips (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			group_name TEXT NOT NULL,
			ticker     TEXT NOT NULL,
			kind       TEXT,
			error      TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the group outcomes, ranked records and skips of one run
// in a single transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, report scanner.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, g := range report.Groups {
		if _, err := tx.ExecContext(ctx, `INSERT INTO group_runs
			(run_id, group_name, destination, profile, started_at, finished_at,
			 records, skipped, published, publish_error)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			report.RunID, g.Group, g.Destination, g.Profile,
			g.StartedAt.Unix(), g.FinishedAt.Unix(),
			len(g.Records), len(g.Skipped), g.Published, g.PublishError,
		); err != nil {
			return fmt.Errorf("insert group run: %w", err)
		}

		for i, rec := range g.Records {
			if _, err := tx.ExecContext(ctx, `INSERT INTO picks
				(run_id, group_name, rank, ticker, price, score, action,
				 risk_reward, stop_loss, near_target, rationale)
				VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
				report.RunID, g.Group, i+1, rec.Ticker, rec.Price, rec.Score, string(rec.Action),
				rec.Risk.RiskReward, rec.Risk.StopLoss, rec.Risk.NearTarget, rec.Rationale,
			); err != nil {
				return fmt.Errorf("insert pick: %w", err)
			}
		}

		for _, s := range g.Skipped {
			msg := ""
			if s.Err != nil {
				msg = s.Err.Error()
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO skips
				(run_id, group_name, ticker, kind, error)
				VALUES (?,?,?,?,?)`,
				report.RunID, g.Group, s.Ticker, string(s.Kind), msg,
			); err != nil {
				return fmt.Errorf("insert skip: %w", err)
			}
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
