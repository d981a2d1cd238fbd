package db

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Store is the process-wide handle to the embedded metadata database. It is
// constructed once and passed to collaborators; Open and Close exist so the
// restore/reset flows can swap the backing file out from under the process.
type Store struct {
	mu   sync.Mutex
	db   *sqlx.DB
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing database file.
func (s *Store) Path() string { return s.path }

// Open opens the backing file, enables WAL journaling and foreign-key
// enforcement, and runs any pending schema migrations. Calling Open on an
// already-open store is a no-op.
func (s *Store) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", s.path)
	conn, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open database %s: %w", s.path, err)
	}
	// the sqlite driver serializes writers; a single connection avoids
	// SQLITE_BUSY between our own statements
	conn.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("migrate database: %w", err)
	}

	s.db = conn
	log.Info().Str("path", s.path).Msg("database opened")
	return nil
}

// Close releases the handle so the backing file may be replaced or deleted.
// Safe to call when already closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// handle returns the live connection or an error if the store is closed.
func (s *Store) handle() (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("store is closed")
	}
	return s.db, nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sqlx.Tx) error) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	tx, err := conn.Beginx()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}
	return tx.Commit()
}

// SnapshotTo materializes a transaction-consistent copy of the live database
// into dst using VACUUM INTO. Concurrent writers are never blocked and the
// artifact can never contain a torn write.
func (s *Store) SnapshotTo(dst string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := conn.Exec(`VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dst, err)
	}
	return nil
}

// IsConflict reports whether err is a unique-constraint violation, so callers
// can render "already exists" instead of a generic failure.
func IsConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	return false
}
