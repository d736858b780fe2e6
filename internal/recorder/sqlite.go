package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MarketPulse/internal/logger"
	"MarketPulse/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	log = logger.OrNop(log)
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets report tooling read while a run is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

// Open returns a SQLiteRecorder for dbPath, or a NoopRecorder when the path is
// empty or the database cannot be opened.
func Open(dbPath string, log *zap.Logger) Recorder {
	if dbPath == "" {
		return NewNoopRecorder()
	}
	r, err := NewSQLiteRecorder(dbPath, log)
	if err != nil {
		logger.OrNop(log).Warn("sqlite recorder unavailable, history disabled", zap.Error(err))
		return NewNoopRecorder()
	}
	return r
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS refresh_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL UNIQUE,
			session_key TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			attempted   INTEGER,
			succeeded   INTEGER,
			failed      TEXT,
			test_mode   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON refresh_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ticker_snapshots (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			session_key     TEXT NOT NULL,
			symbol          TEXT NOT NULL,
			prediction      REAL,
			recommendation  TEXT,
			price           REAL,
			day_change_pct  REAL,
			momentum        REAL,
			rsi             TEXT,
			macd_signal     TEXT,
			consensus_score REAL,
			analyst_total   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol ON ticker_snapshots(symbol, session_key)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO refresh_runs
		(run_id, session_key, started_at, finished_at, attempted, succeeded, failed, test_mode)
		VALUES (?,?,?,?,?,?,?,?)`,
		run.RunID, run.SessionKey, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Attempted, run.Succeeded, strings.Join(run.Failed, ","), run.TestMode,
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshot(runID, sessionKey string, snap *model.TickerSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var price, dayChange float64
	if ci := snap.CompanyInfo; ci != nil {
		price, dayChange = ci.CurrentPrice, ci.DayChangePct
	}
	var consensus sql.NullFloat64
	var total sql.NullInt64
	if ar := snap.AnalystRecommendations; ar != nil {
		consensus = sql.NullFloat64{Float64: ar.ConsensusScore, Valid: true}
		total = sql.NullInt64{Int64: int64(ar.Total), Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO ticker_snapshots
		(run_id, session_key, symbol, prediction, recommendation, price, day_change_pct,
		 momentum, rsi, macd_signal, consensus_score, analyst_total)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, sessionKey, snap.Symbol, snap.Prediction, string(snap.Recommendation),
		price, dayChange, snap.Trends.Momentum,
		snap.TechnicalIndicators.RSI, string(snap.TechnicalIndicators.MACDSignal),
		consensus, total,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, session_key, started_at, finished_at,
		attempted, succeeded, failed, test_mode
		FROM refresh_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			run             RunRecord
			started, finish int64
			failed          string
		)
		if err := rows.Scan(&run.RunID, &run.SessionKey, &started, &finish,
			&run.Attempted, &run.Succeeded, &failed, &run.TestMode); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(started, 0)
		run.FinishedAt = time.Unix(finish, 0)
		if failed != "" {
			run.Failed = strings.Split(failed, ",")
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// SnapshotCount returns the number of stored snapshots for symbol.
func (r *SQLiteRecorder) SnapshotCount(symbol string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM ticker_snapshots WHERE symbol = ?`, symbol).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
