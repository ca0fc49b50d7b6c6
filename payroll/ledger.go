/*
ledger.go - Attendance ledger

PURPOSE:
  Answers "was this worker present on this day?" and records the operator's
  toggles. The ledger is sparse: only touched days have entries, every other
  day reads as Absent.

PRIVILEGED WRITES:
  Toggle requires the edit capability (see access.go). Without it the call
  is a no-op and returns ErrEditNotAllowed. The ledger enforces this itself
  so that no caller can bypass the gate by forgetting to check.

INVOLUTION:
  Toggling the same (worker, date) twice restores the original status.

SEE ALSO:
  - store.go: AttendanceStore
  - bonus.go: Consumes the status sequence
*/
package payroll

import (
	"context"
	"fmt"
)

type Ledger struct {
	store AttendanceStore
}

func NewLedger(store AttendanceStore) *Ledger {
	return &Ledger{store: store}
}

// Status returns the worker's status on date, Absent when never recorded.
func (l *Ledger) Status(ctx context.Context, workerID WorkerID, date CalendarDate) (Status, error) {
	return l.store.Status(ctx, AttendanceKey{WorkerID: workerID, Date: date})
}

// Toggle flips Present/Absent for the worker on date.
func (l *Ledger) Toggle(ctx context.Context, capability Capability, workerID WorkerID, date CalendarDate) (Status, error) {
	if !capability.CanEdit() {
		return Absent, ErrEditNotAllowed
	}
	status, err := l.store.ToggleStatus(ctx, AttendanceKey{WorkerID: workerID, Date: date})
	if err != nil {
		return Absent, fmt.Errorf("toggle attendance %d/%s: %w", workerID, date, err)
	}
	return status, nil
}

// Statuses returns one status per date, in the order given.
func (l *Ledger) Statuses(ctx context.Context, workerID WorkerID, dates []CalendarDate) ([]Status, error) {
	statuses := make([]Status, len(dates))
	for i, date := range dates {
		s, err := l.Status(ctx, workerID, date)
		if err != nil {
			return nil, fmt.Errorf("read attendance %d/%s: %w", workerID, date, err)
		}
		statuses[i] = s
	}
	return statuses, nil
}
