// Package library provides Store and Tx for catalog persistence.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediacat/internal/schema"
	"github.com/vmunix/mediacat/internal/syncutil"
)

const timeLayout = "2006-01-02 15:04:05"

// querier abstracts *sql.DB and *sql.Tx for shared query logic.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loggedQuerier logs every statement at debug level before running it.
type loggedQuerier struct {
	q   querier
	log *slog.Logger
}

func (l loggedQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	l.log.DebugContext(ctx, "sql", "query", query, "args", len(args))
	return l.q.QueryRowContext(ctx, query, args...)
}

func (l loggedQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	l.log.DebugContext(ctx, "sql", "query", query, "args", len(args))
	return l.q.QueryContext(ctx, query, args...)
}

func (l loggedQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	l.log.DebugContext(ctx, "sql", "exec", query, "args", len(args))
	return l.q.ExecContext(ctx, query, args...)
}

// Store provides access to catalog data.
// A single lock serializes every read and write, and a transaction holds it until commit or rollback.
type Store struct {
	mu    syncutil.Mutex
	db    *sql.DB
	log   *slog.Logger
	clock clockwork.Clock

	connected bool // set by Connect
	closed    bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for SQL and cascade logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithClock sets the clock used to stamp added/updated/watched times.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// NewStore wraps an existing database handle.
// Every operation fails with ErrNotConnected until Connect succeeds.
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		log:   slog.Default(),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the SQLite database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapErr("open", err)
	}
	// One connection: in-memory databases are per-connection, and the store lock already serializes access.
	db.SetMaxOpenConns(1)

	s := NewStore(db, opts...)
	if err := s.Connect(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Connect verifies the handle and creates missing tables and views.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil || s.closed {
		return notConnected("connect")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return &Error{Location: "connect", Kind: ErrNotConnected, Err: err}
	}
	if err := schema.Apply(ctx, s.db); err != nil {
		return wrapErr("connect.schema", err)
	}
	s.connected = true
	s.log.Debug("catalog schema applied", "views", len(schema.ViewNames()))
	return nil
}

// Close releases the database handle. Later calls fail with ErrNotConnected.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil || s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// usable reports whether the store has been connected and not closed. Callers hold s.mu.
func (s *Store) usable() bool {
	return s.db != nil && s.connected && !s.closed
}

func notConnected(location string) error {
	return &Error{Location: location, Kind: ErrNotConnected}
}

func (s *Store) stamp() string {
	return s.clock.Now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.ParseInLocation(timeLayout, v, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t := parseTime(v.String)
	return &t
}

// read runs fn under the store lock without a transaction.
func (s *Store) read(location string, fn func(q querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.usable() {
		return notConnected(location)
	}
	return wrapErr(location, fn(loggedQuerier{q: s.db, log: s.log}))
}

// withTx runs fn in a transaction, rolling back on error.
// A failed statement yields an error matching both ErrTxAborted and the statement's own kind.
func (s *Store) withTx(ctx context.Context, location string, fn func(q querier) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx.q()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %w", ErrTxAborted, wrapErr(location, err))
	}
	return tx.Commit()
}

// Begin locks the store and starts a transaction.
// The lock is released by Commit or Rollback; Store methods called before then block.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	s.mu.Lock()
	if !s.usable() {
		s.mu.Unlock()
		return nil, notConnected("begin")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.mu.Unlock()
		return nil, &Error{Location: "begin", Kind: ErrTxAborted, Err: err}
	}
	return &Tx{tx: tx, store: s}, nil
}

// Tx wraps a database transaction with the same write methods as Store.
type Tx struct {
	tx    *sql.Tx
	store *Store
	done  bool
}

func (t *Tx) q() querier {
	return loggedQuerier{q: t.tx, log: t.store.log}
}

// Commit commits the transaction and releases the store lock.
func (t *Tx) Commit() error {
	if t.done {
		return &Error{Location: "commit", Kind: ErrTxAborted, Err: sql.ErrTxDone}
	}
	t.done = true
	defer t.store.mu.Unlock()
	if err := t.tx.Commit(); err != nil {
		return &Error{Location: "commit", Kind: ErrTxAborted, Err: err}
	}
	return nil
}

// Rollback aborts the transaction and releases the store lock.
// Calling it after Commit is a no-op, so it is safe to defer.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.store.mu.Unlock()
	return t.tx.Rollback()
}
