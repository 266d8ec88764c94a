// Package store implements the time-series store: an append-only,
// per-(symbol,kind) ring of timestamped samples backed by an embedded SQL
// database, plus the ScanResult history cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/errs"
)

// Kind identifies one of the six sample series kinds.
type Kind string

const (
	KindCandle  Kind = "candle"
	KindOI      Kind = "oi"
	KindFunding Kind = "funding"
	KindLS      Kind = "ls"
	KindTicker  Kind = "ticker"
	KindBook    Kind = "book"
)

// RetentionOf returns the minimum number of samples retained for a kind.
// KindBook is ephemeral: only the latest snapshot is retained.
func RetentionOf(k Kind) int {
	switch k {
	case KindCandle:
		return 500
	case KindOI:
		return 200
	case KindFunding:
		return 100
	case KindLS:
		return 100
	case KindTicker:
		return 500
	case KindBook:
		return 1
	default:
		return 0
	}
}

// Store is the embedded persistence layer: append/range/latest/cap over
// per-(symbol,kind) series, plus ScanResult history and RegisteredTrade
// persistence.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the embedded SQL database at path and runs
// schema migrations. Migrations are forward-only and idempotent.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.StoreIO, "", "open store", err)
	}
	if err := db.Ping(); err != nil {
		return nil, errs.Wrap(errs.StoreIO, "", "ping store", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.StoreCorruption, "", "migrate store", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	var version int
	_ = s.db.Get(&version, `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`)

	if version < 1 {
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS series (
				symbol TEXT NOT NULL,
				kind   TEXT NOT NULL,
				t      INTEGER NOT NULL,
				payload TEXT NOT NULL,
				PRIMARY KEY (symbol, kind, t)
			);
			CREATE INDEX IF NOT EXISTS idx_series_symbol_kind_t ON series(symbol, kind, t);

			CREATE TABLE IF NOT EXISTS scan_results (
				symbol TEXT NOT NULL,
				t      INTEGER NOT NULL,
				payload TEXT NOT NULL,
				PRIMARY KEY (symbol, t)
			);
			CREATE INDEX IF NOT EXISTS idx_scan_results_symbol_t ON scan_results(symbol, t DESC);

			CREATE TABLE IF NOT EXISTS trades (
				id TEXT PRIMARY KEY,
				symbol TEXT NOT NULL,
				payload TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

type seriesRow struct {
	Symbol  string `db:"symbol"`
	Kind    string `db:"kind"`
	T       int64  `db:"t"`
	Payload string `db:"payload"`
}

// Append idempotently upserts a sample at time t for (symbol, kind); a later
// write at the same t replaces the earlier payload.
func (s *Store) Append(ctx context.Context, symbol string, kind Kind, t int64, sample any) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return errs.Wrap(errs.Internal, symbol, "marshal sample", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO series (symbol, kind, t, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol, kind, t) DO UPDATE SET payload = excluded.payload
	`, symbol, string(kind), t, string(payload))
	if err != nil {
		return errs.Wrap(errs.StoreIO, symbol, "append sample", err)
	}
	return s.enforceCap(ctx, symbol, kind)
}

func (s *Store) enforceCap(ctx context.Context, symbol string, kind Kind) error {
	limit := RetentionOf(kind)
	if limit <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM series WHERE symbol = ? AND kind = ? AND t NOT IN (
			SELECT t FROM series WHERE symbol = ? AND kind = ? ORDER BY t DESC LIMIT ?
		)
	`, symbol, string(kind), symbol, string(kind), limit)
	if err != nil {
		return errs.Wrap(errs.StoreIO, symbol, "enforce retention cap", err)
	}
	return nil
}

// Range returns samples for (symbol, kind) with tFrom <= t <= tTo, ascending.
// dest is called once per sample with its timestamp and raw JSON payload.
func (s *Store) Range(ctx context.Context, symbol string, kind Kind, tFrom, tTo int64, dest func(t int64, payload []byte) error) error {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT t, payload FROM series
		WHERE symbol = ? AND kind = ? AND t >= ? AND t <= ?
		ORDER BY t ASC
	`, symbol, string(kind), tFrom, tTo)
	if err != nil {
		return errs.Wrap(errs.StoreIO, symbol, "range query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t int64
		var payload string
		if err := rows.Scan(&t, &payload); err != nil {
			return errs.Wrap(errs.StoreIO, symbol, "range scan", err)
		}
		if err := dest(t, []byte(payload)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Latest returns the last n samples for (symbol, kind), ascending by t.
func (s *Store) Latest(ctx context.Context, symbol string, kind Kind, n int, dest func(t int64, payload []byte) error) error {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT t, payload FROM series WHERE symbol = ? AND kind = ?
		ORDER BY t DESC LIMIT ?
	`, symbol, string(kind), n)
	if err != nil {
		return errs.Wrap(errs.StoreIO, symbol, "latest query", err)
	}
	defer rows.Close()

	type pair struct {
		t       int64
		payload []byte
	}
	var pairs []pair
	for rows.Next() {
		var t int64
		var payload string
		if err := rows.Scan(&t, &payload); err != nil {
			return errs.Wrap(errs.StoreIO, symbol, "latest scan", err)
		}
		pairs = append(pairs, pair{t, []byte(payload)})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		if err := dest(pairs[i].t, pairs[i].payload); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of retained samples for (symbol, kind); used by
// the scheduler to decide bootstrap vs incremental mode.
func (s *Store) Count(ctx context.Context, symbol string, kind Kind) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM series WHERE symbol = ? AND kind = ?`, symbol, string(kind))
	if err != nil {
		return 0, errs.Wrap(errs.StoreIO, symbol, "count", err)
	}
	return n, nil
}

// SaveScanResult persists a ScanResult, retaining at least the last N per symbol.
func (s *Store) SaveScanResult(ctx context.Context, r domain.ScanResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return errs.Wrap(errs.Internal, r.Symbol, "marshal scan result", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scan_results (symbol, t, payload) VALUES (?, ?, ?)
		ON CONFLICT(symbol, t) DO UPDATE SET payload = excluded.payload
	`, r.Symbol, r.T, string(payload))
	if err != nil {
		return errs.Wrap(errs.StoreIO, r.Symbol, "save scan result", err)
	}
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM scan_results WHERE symbol = ? AND t NOT IN (
			SELECT t FROM scan_results WHERE symbol = ? ORDER BY t DESC LIMIT 2
		)
	`, r.Symbol, r.Symbol)
	if err != nil {
		return errs.Wrap(errs.StoreIO, r.Symbol, "trim scan results", err)
	}
	return nil
}

// PriorScanResult returns the most recent ScanResult for symbol before t, or
// nil if none exists (used by the event detector to diff consecutive scans).
func (s *Store) PriorScanResult(ctx context.Context, symbol string, beforeT int64) (*domain.ScanResult, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `
		SELECT payload FROM scan_results WHERE symbol = ? AND t < ? ORDER BY t DESC LIMIT 1
	`, symbol, beforeT)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.StoreIO, symbol, "prior scan result", err)
	}
	var r domain.ScanResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, errs.Wrap(errs.Internal, symbol, "unmarshal scan result", err)
	}
	return &r, nil
}

// PriceAt6hAgo and similar time-lagged lookups are implemented by callers via
// Range over KindTicker/KindCandle; Store stays a pure value-semantics layer.

// LatestScanResults returns the most recent ScanResult for every symbol that
// has one, used by the /status and /watchlist command handlers.
func (s *Store) LatestScanResults(ctx context.Context) ([]domain.ScanResult, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT payload FROM scan_results sr WHERE t = (
			SELECT MAX(t) FROM scan_results WHERE symbol = sr.symbol
		)
	`)
	if err != nil {
		return nil, errs.Wrap(errs.StoreIO, "", "list latest scan results", err)
	}
	defer rows.Close()

	var out []domain.ScanResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errs.Wrap(errs.StoreIO, "", "scan latest scan result", err)
		}
		var r domain.ScanResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, errs.Wrap(errs.Internal, "", "unmarshal scan result", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveTrade upserts a RegisteredTrade by ID.
func (s *Store) SaveTrade(ctx context.Context, t domain.RegisteredTrade) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return errs.Wrap(errs.Internal, t.Symbol, "marshal trade", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trades (id, symbol, payload) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload
	`, t.ID, t.Symbol, string(payload))
	if err != nil {
		return errs.Wrap(errs.StoreIO, t.Symbol, "save trade", err)
	}
	return nil
}

// DeleteTrade removes a trade by ID (close / final-TP).
func (s *Store) DeleteTrade(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return errs.Wrap(errs.StoreIO, "", "delete trade", err)
	}
	return nil
}

// ListOpenTrades returns all currently tracked trades.
func (s *Store) ListOpenTrades(ctx context.Context) ([]domain.RegisteredTrade, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT payload FROM trades`)
	if err != nil {
		return nil, errs.Wrap(errs.StoreIO, "", "list trades", err)
	}
	defer rows.Close()

	var out []domain.RegisteredTrade
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errs.Wrap(errs.StoreIO, "", "scan trade", err)
		}
		var t domain.RegisteredTrade
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, errs.Wrap(errs.Internal, "", "unmarshal trade", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Cleanup deletes series samples older than retentionDays, invoked by the
// `run --cleanup` CLI verb.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour).UnixMilli()
	_, err := s.db.ExecContext(ctx, `DELETE FROM series WHERE kind != ? AND t < ?`, string(KindBook), cutoff)
	if err != nil {
		return errs.Wrap(errs.StoreIO, "", "cleanup", err)
	}
	return nil
}
