// Package store provides payroll.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (default, ephemeral)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	workers    map[payroll.WorkerID]payroll.Worker
	attendance map[payroll.AttendanceKey]payroll.Status
	lineItems  map[payroll.LineItemKey]payroll.LineItem
}

var _ payroll.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		workers:    make(map[payroll.WorkerID]payroll.Worker),
		attendance: make(map[payroll.AttendanceKey]payroll.Status),
		lineItems:  make(map[payroll.LineItemKey]payroll.LineItem),
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) Status(_ context.Context, key payroll.AttendanceKey) (payroll.Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attendance[key], nil
}

func (m *Memory) ToggleStatus(_ context.Context, key payroll.AttendanceKey) (payroll.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.attendance[key].Flip()
	m.attendance[key] = next
	return next, nil
}

// =============================================================================
// LINE ITEMS
// =============================================================================

func (m *Memory) LineItems(_ context.Context, workerID payroll.WorkerID) (map[payroll.Category]payroll.LineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[payroll.Category]payroll.LineItem)
	for k, item := range m.lineItems {
		if k.WorkerID == workerID {
			result[k.Category] = item
		}
	}
	return result, nil
}

func (m *Memory) PutLineItem(_ context.Context, key payroll.LineItemKey, item payroll.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lineItems[key] = item
	return nil
}

// =============================================================================
// ROSTER
// =============================================================================

func (m *Memory) CreateWorker(_ context.Context, w payroll.Worker) (payroll.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var maxID payroll.WorkerID
	for id := range m.workers {
		if id > maxID {
			maxID = id
		}
	}
	w.ID = maxID + 1
	m.workers[w.ID] = w
	return w, nil
}

func (m *Memory) UpdateWorker(_ context.Context, w payroll.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[w.ID]; !ok {
		return payroll.ErrWorkerNotFound
	}
	m.workers[w.ID] = w
	return nil
}

// DeleteWorker removes the worker and everything keyed by their ID.
func (m *Memory) DeleteWorker(_ context.Context, id payroll.WorkerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[id]; !ok {
		return payroll.ErrWorkerNotFound
	}
	delete(m.workers, id)
	for k := range m.attendance {
		if k.WorkerID == id {
			delete(m.attendance, k)
		}
	}
	for k := range m.lineItems {
		if k.WorkerID == id {
			delete(m.lineItems, k)
		}
	}
	return nil
}

func (m *Memory) Worker(_ context.Context, id payroll.WorkerID) (payroll.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.workers[id]
	if !ok {
		return payroll.Worker{}, payroll.ErrWorkerNotFound
	}
	return w, nil
}

func (m *Memory) Workers(_ context.Context) ([]payroll.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// SESSION RESET
// =============================================================================

// Reset drops all state (end of session / tests).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = make(map[payroll.WorkerID]payroll.Worker)
	m.attendance = make(map[payroll.AttendanceKey]payroll.Status)
	m.lineItems = make(map[payroll.LineItemKey]payroll.LineItem)
	return nil
}

// Close is a no-op; it lets Memory stand in wherever a closable store is expected.
func (m *Memory) Close() error { return nil }
