/*
store.go - Persistence interface for roster, attendance and line items

PURPOSE:
  Defines the boundary between the payroll engine and its state. The engine
  never holds ambient global state: the presentation layer creates a Store,
  hands it to a Service, and closes it at the end of the session.

KEY INTERFACES:
  AttendanceStore: sparse (worker, date) -> Status map
  LineItemStore:   sparse (worker, category) -> LineItem map
  RosterStore:     worker records
  Store:           all three, plus Reset

ATOMIC TOGGLE:
  ToggleStatus flips and returns the new status in one store operation, so
  two concurrent toggles of the same day never lose an update.

DELETION POLICY:
  DeleteWorker removes the worker AND their attendance and line items in one
  step. Orphaned entries are never left behind.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory (default, ephemeral)
  - store/sqlite/sqlite.go:  SQLite

SEE ALSO:
  - ledger.go: Attendance ledger built on AttendanceStore
  - service.go: Session handle using Store
*/
package payroll

import "context"

// AttendanceStore persists attendance flags. Missing keys read as Absent.
type AttendanceStore interface {
	// Status returns the stored status, Absent when the key is unset.
	Status(ctx context.Context, key AttendanceKey) (Status, error)

	// ToggleStatus flips the status (creating the entry if needed) and
	// returns the new value.
	ToggleStatus(ctx context.Context, key AttendanceKey) (Status, error)
}

// LineItemStore persists per-worker bonus and deduction entries.
type LineItemStore interface {
	// LineItems returns every stored item for the worker, keyed by category.
	LineItems(ctx context.Context, workerID WorkerID) (map[Category]LineItem, error)

	// PutLineItem creates or replaces one item.
	PutLineItem(ctx context.Context, key LineItemKey, item LineItem) error
}

// RosterStore persists worker records.
type RosterStore interface {
	// CreateWorker assigns the next ID (max + 1) and stores the worker.
	CreateWorker(ctx context.Context, w Worker) (Worker, error)

	// UpdateWorker replaces an existing worker. ErrWorkerNotFound if missing.
	UpdateWorker(ctx context.Context, w Worker) error

	// DeleteWorker removes the worker and purges their attendance and line
	// items. ErrWorkerNotFound if missing.
	DeleteWorker(ctx context.Context, id WorkerID) error

	// Worker returns one worker. ErrWorkerNotFound if missing.
	Worker(ctx context.Context, id WorkerID) (Worker, error)

	// Workers returns the roster ordered by ID.
	Workers(ctx context.Context) ([]Worker, error)
}

// Store is everything a Service needs.
type Store interface {
	AttendanceStore
	LineItemStore
	RosterStore

	// Reset drops the roster, attendance and line items (demo scenarios,
	// tests).
	Reset(ctx context.Context) error
}
