// Package storage provides the SQLite persistence layer for companies, transactions, rules and journals.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/service"
)

var (
	_ service.Storage     = (*SQLiteStorage)(nil)
	_ service.Transaction = (*sqliteTransaction)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// store holds the query methods shared by SQLiteStorage and sqliteTransaction.
type store struct {
	q     querier
	db    *sql.DB // nil when running inside a transaction
	hooks *invalidationHooks
}

type invalidationHooks struct {
	target service.CacheInvalidator
	mu     sync.RWMutex
}

func (h *invalidationHooks) rules(companyID int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.target != nil {
		h.target.InvalidateRules(companyID)
	}
}

func (h *invalidationHooks) accounts(companyID int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.target != nil {
		h.target.InvalidateAccounts(companyID)
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	store
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		store:  store{q: db, db: db, hooks: &invalidationHooks{}},
		dbPath: dbPath,
	}, nil
}

// SetInvalidator registers the cache that must be told about rule and account writes.
func (s *SQLiteStorage) SetInvalidator(inv service.CacheInvalidator) {
	s.hooks.mu.Lock()
	defer s.hooks.mu.Unlock()
	s.hooks.target = inv
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDBError("failed to begin transaction", err)
	}

	return &sqliteTransaction{
		store: store{q: tx, hooks: s.hooks},
		tx:    tx,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	store
	tx *sql.Tx
}

func (t *sqliteTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return wrapDBError("failed to commit transaction", err)
	}
	return nil
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("cannot close storage from within a transaction")
}

// inTx runs fn inside a database transaction, reusing the current one when already inside a transaction.
func (s *store) inTx(ctx context.Context, fn func(q querier) error) error {
	if s.db == nil {
		return fn(s.q)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapDBError("failed to commit transaction", err)
	}
	return nil
}

// wrapDBError tags persistence failures and marks busy or locked databases as retryable.
func wrapDBError(msg string, err error) error {
	wrapped := fmt.Errorf("%s: %w: %w", msg, common.ErrPersistence, err)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return &common.RetryableError{Err: wrapped, Retryable: true}
	}
	return wrapped
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
