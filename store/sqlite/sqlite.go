/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Lets an operator keep the roster, attendance grid and line items across
  server restarts. The default store is in-memory; this one is selected by
  passing a database path to the server.

INTERFACES IMPLEMENTED:
  payroll.AttendanceStore: (worker, date) -> present flag
  payroll.LineItemStore:   (worker, category) -> enabled + raw amount
  payroll.RosterStore:     worker records

KEY TABLES:
  workers:     Roster. IDs are assigned as MAX(id)+1, like the in-memory store.
  attendance:  One row per touched day. Missing rows read as absent.
  line_items:  One row per touched category. Amount is stored as entered.

DELETION:
  attendance and line_items reference workers with ON DELETE CASCADE, so
  deleting a worker purges their data in the same statement.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, which also
  keeps ":memory:" databases shared across calls.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := payroll.NewService(store, payroll.DefaultPayRules(), logger)

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/shift-payroll/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database. The path may carry its own
// go-sqlite3 query parameters; foreign keys and WAL are always added.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on&_journal_mode=WAL"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id INTEGER PRIMARY KEY,
		given_name TEXT NOT NULL,
		family_name TEXT NOT NULL,
		employee_code TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workers_code
		ON workers(employee_code);

	CREATE TABLE IF NOT EXISTS attendance (
		worker_id INTEGER NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		present INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (worker_id, year, month, day)
	);

	CREATE TABLE IF NOT EXISTS line_items (
		worker_id INTEGER NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 0,
		amount TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (worker_id, category)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTENDANCE STORE (payroll.AttendanceStore interface)
// =============================================================================

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) Status(ctx context.Context, key payroll.AttendanceKey) (payroll.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readStatus(ctx, s.db, key)
}

func readStatus(ctx context.Context, db queryRower, key payroll.AttendanceKey) (payroll.Status, error) {
	var present bool
	err := db.QueryRowContext(ctx,
		"SELECT present FROM attendance WHERE worker_id = ? AND year = ? AND month = ? AND day = ?",
		key.WorkerID, key.Date.Year, int(key.Date.Month), key.Date.Day,
	).Scan(&present)

	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Absent, nil
	}
	if err != nil {
		return payroll.Absent, fmt.Errorf("failed to read attendance: %w", err)
	}
	if present {
		return payroll.Present, nil
	}
	return payroll.Absent, nil
}

// ToggleStatus flips the stored flag inside one database transaction.
func (s *Store) ToggleStatus(ctx context.Context, key payroll.AttendanceKey) (payroll.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return payroll.Absent, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	current, err := readStatus(ctx, sqlTx, key)
	if err != nil {
		return payroll.Absent, err
	}
	next := current.Flip()

	query := `
		INSERT INTO attendance (worker_id, year, month, day, present, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, year, month, day) DO UPDATE SET
			present = excluded.present,
			updated_at = excluded.updated_at
	`
	_, err = sqlTx.ExecContext(ctx, query,
		key.WorkerID, key.Date.Year, int(key.Date.Month), key.Date.Day,
		next == payroll.Present,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return payroll.Absent, fmt.Errorf("failed to write attendance: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return payroll.Absent, fmt.Errorf("failed to commit attendance: %w", err)
	}
	return next, nil
}

// =============================================================================
// LINE ITEM STORE (payroll.LineItemStore interface)
// =============================================================================

func (s *Store) LineItems(ctx context.Context, workerID payroll.WorkerID) (map[payroll.Category]payroll.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT category, enabled, amount FROM line_items WHERE worker_id = ?",
		workerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	items := make(map[payroll.Category]payroll.LineItem)
	for rows.Next() {
		var (
			category string
			item     payroll.LineItem
		)
		if err := rows.Scan(&category, &item.Enabled, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items[payroll.Category(category)] = item
	}
	return items, rows.Err()
}

func (s *Store) PutLineItem(ctx context.Context, key payroll.LineItemKey, item payroll.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO line_items (worker_id, category, enabled, amount, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, category) DO UPDATE SET
			enabled = excluded.enabled,
			amount = excluded.amount,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		key.WorkerID, string(key.Category), item.Enabled, item.Amount,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write line item: %w", err)
	}
	return nil
}

// =============================================================================
// ROSTER STORE (payroll.RosterStore interface)
// =============================================================================

// CreateWorker assigns MAX(id)+1 and inserts the worker.
func (s *Store) CreateWorker(ctx context.Context, w payroll.Worker) (payroll.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return payroll.Worker{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	var next int64
	if err := sqlTx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM workers").Scan(&next); err != nil {
		return payroll.Worker{}, fmt.Errorf("failed to allocate worker id: %w", err)
	}
	w.ID = payroll.WorkerID(next)

	_, err = sqlTx.ExecContext(ctx,
		"INSERT INTO workers (id, given_name, family_name, employee_code, created_at) VALUES (?, ?, ?, ?, ?)",
		w.ID, w.GivenName, w.FamilyName, w.EmployeeCode,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return payroll.Worker{}, fmt.Errorf("failed to insert worker: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return payroll.Worker{}, fmt.Errorf("failed to commit worker: %w", err)
	}
	return w, nil
}

func (s *Store) UpdateWorker(ctx context.Context, w payroll.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE workers SET given_name = ?, family_name = ?, employee_code = ? WHERE id = ?",
		w.GivenName, w.FamilyName, w.EmployeeCode, w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update worker: %w", err)
	}
	return requireOneRow(res)
}

// DeleteWorker removes the worker; attendance and line items cascade.
func (s *Store) DeleteWorker(ctx context.Context, id payroll.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM workers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	return requireOneRow(res)
}

func (s *Store) Worker(ctx context.Context, id payroll.WorkerID) (payroll.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var w payroll.Worker
	err := s.db.QueryRowContext(ctx,
		"SELECT id, given_name, family_name, employee_code FROM workers WHERE id = ?",
		id,
	).Scan(&w.ID, &w.GivenName, &w.FamilyName, &w.EmployeeCode)

	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Worker{}, payroll.ErrWorkerNotFound
	}
	if err != nil {
		return payroll.Worker{}, fmt.Errorf("failed to read worker: %w", err)
	}
	return w, nil
}

func (s *Store) Workers(ctx context.Context) ([]payroll.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, given_name, family_name, employee_code FROM workers ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	workers := []payroll.Worker{}
	for rows.Next() {
		var w payroll.Worker
		if err := rows.Scan(&w.ID, &w.GivenName, &w.FamilyName, &w.EmployeeCode); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"attendance", "line_items", "workers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return payroll.ErrWorkerNotFound
	}
	return nil
}
