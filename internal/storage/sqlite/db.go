// Package sqlite implements ports.QuoteStore on a single SQLite file using
// the pure Go modernc.org/sqlite driver.
//
// Every connection enables foreign keys and WAL, and begins transactions
// with BEGIN IMMEDIATE so concurrent writers serialize on the database lock
// instead of failing on upgrade.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/jsamuelsen/quotebox/internal/domain"
	"github.com/jsamuelsen/quotebox/internal/ports"
)

const (
	driverName = "sqlite"

	// checkerName identifies the store in readiness responses.
	checkerName = "sqlite"

	timeLayout = time.RFC3339Nano
)

// Config controls how the database file is opened.
type Config struct {
	// Path is the database file. ":memory:" is accepted for throwaway use.
	Path string

	// MaxOpenConns bounds the connection pool. Zero keeps the driver default.
	MaxOpenConns int

	// BusyTimeout is how long a connection waits on a locked database.
	BusyTimeout time.Duration
}

// Store is the SQLite implementation of ports.QuoteStore.
type Store struct {
	db *sql.DB
}

var (
	_ ports.QuoteStore    = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Open opens (creating if needed) the database file and verifies the
// connection. Migrations are not applied; call Migrate.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: empty database path")
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	return &Store{db: db}, nil
}

func dsn(cfg Config) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	params := []string{
		"_pragma=foreign_keys(1)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", busy.Milliseconds()),
		"_txlock=immediate",
	}

	if cfg.Path != ":memory:" {
		params = append(params, "_pragma=journal_mode(WAL)")
	}

	return cfg.Path + "?" + strings.Join(params, "&")
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return checkerName
}

// Check implements ports.HealthChecker. The file must answer and the
// quotes schema must be migrated.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging sqlite database: %w", err)
	}

	var one int

	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM quotes LIMIT 1").Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("quotes schema not ready: %w", err)
	}

	return nil
}

// InTx implements ports.QuoteStore.
func (s *Store) InTx(ctx context.Context, fn func(tx ports.StoreTx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(fmt.Errorf("beginning transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&storeTx{q: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapError(fmt.Errorf("committing transaction: %w", err))
	}

	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mapError converts driver constraint failures into domain errors so they
// reach visitors as form errors rather than server errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	msg := se.Error()

	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: quotes.text"):
		return domain.NewValidationError(domain.FieldText, domain.MsgDuplicateText)
	case strings.Contains(msg, domain.MsgSourceLimitExceeded):
		return domain.NewValidationError("", domain.MsgSourceLimitExceeded)
	case strings.Contains(msg, "CHECK constraint failed"):
		return domain.NewValidationError("", msg)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return domain.NewUnavailableError(checkerName, "database is locked")
	}

	return err
}
