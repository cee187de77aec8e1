package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cesargomez89/cratedigger/internal/constants"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// dbOps is satisfied by both *sqlx.DB and *sqlx.Tx so every query helper
// runs unchanged inside or outside a transaction.
type dbOps interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	Exec(query string, args ...interface{}) (sql.Result, error)
	NamedExec(query string, arg interface{}) (sql.Result, error)
}

type DB struct {
	dbOps
	root *sqlx.DB
	inTx bool
}

// DSN appends the connection pragmas every pooled connection needs.
func DSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_txlock=immediate",
		path, constants.DefaultBusyTimeoutMillis)
}

func NewSQLiteDB(path string) (*DB, error) {
	db, err := sqlx.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{dbOps: db, root: db}, nil
}

func (db *DB) Close() error {
	return db.root.Close()
}

// RunInTx runs fn against a DB bound to a single transaction. Nested calls
// reuse the outer transaction.
func (db *DB) RunInTx(ctx context.Context, fn func(txDB *DB) error) error {
	if db.inTx {
		return fn(db)
	}

	tx, err := db.root.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	txDB := &DB{
		dbOps: tx,
		root:  db.root,
		inTx:  true,
	}

	if err := fn(txDB); err != nil {
		return err
	}
	return tx.Commit()
}

// Scope binds the DB to one owner. Every label, release, track, match and
// queue query issued through a Scope filters on that owner.
type Scope struct {
	db    *DB
	owner string
}

func (db *DB) Scope(ownerID string) *Scope {
	return &Scope{db: db, owner: ownerID}
}

func (s *Scope) OwnerID() string {
	return s.owner
}

func (s *Scope) RunInTx(ctx context.Context, fn func(tx *Scope) error) error {
	return s.db.RunInTx(ctx, func(txDB *DB) error {
		return fn(&Scope{db: txDB, owner: s.owner})
	})
}

func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
