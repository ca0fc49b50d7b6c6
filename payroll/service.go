/*
service.go - Session handle over the payroll engine

PURPOSE:
  Bundles one Store with the ledger, calculator and pay rules. The
  presentation layer owns its lifecycle: create it at session start, pass it
  by reference, drop it (and close the store) at the end.

  Every mutating method takes a Capability as its first argument after the
  context. Read methods never need one.

OPERATIONS:
  Roster:     AddWorker, UpdateWorker, DeleteWorker, Worker, Workers, SeedRoster
  Session:    Reset
  Attendance: ToggleAttendance, Attendance
  Line items: SetLineItem, LineItems
  Salary:     Salary, Payslip, Payroll

SEE ALSO:
  - store.go: Store interface
  - access.go: Capability
  - api/handlers.go: HTTP layer calling this service
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type Service struct {
	store  Store
	ledger *Ledger
	calc   *Calculator
	log    logrus.FieldLogger
}

func NewService(store Store, rules PayRules, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:  store,
		ledger: NewLedger(store),
		calc:   NewCalculator(rules),
		log:    log.WithField("module", "payroll"),
	}
}

func (s *Service) Rules() PayRules { return s.calc.Rules }

func (s *Service) Ledger() *Ledger { return s.ledger }

// =============================================================================
// ROSTER
// =============================================================================

func (s *Service) AddWorker(ctx context.Context, capability Capability, w Worker) (Worker, error) {
	if !capability.CanEdit() {
		return Worker{}, ErrEditNotAllowed
	}
	w, err := normalizeWorker(w)
	if err != nil {
		return Worker{}, err
	}
	created, err := s.store.CreateWorker(ctx, w)
	if err != nil {
		return Worker{}, fmt.Errorf("create worker: %w", err)
	}
	s.log.WithFields(logrus.Fields{"worker_id": created.ID, "code": created.EmployeeCode}).Info("worker added")
	return created, nil
}

func (s *Service) UpdateWorker(ctx context.Context, capability Capability, w Worker) (Worker, error) {
	if !capability.CanEdit() {
		return Worker{}, ErrEditNotAllowed
	}
	w, err := normalizeWorker(w)
	if err != nil {
		return Worker{}, err
	}
	if err := s.store.UpdateWorker(ctx, w); err != nil {
		return Worker{}, err
	}
	s.log.WithField("worker_id", w.ID).Info("worker updated")
	return w, nil
}

// DeleteWorker removes the worker together with their attendance and line
// items.
func (s *Service) DeleteWorker(ctx context.Context, capability Capability, id WorkerID) error {
	if !capability.CanEdit() {
		return ErrEditNotAllowed
	}
	if err := s.store.DeleteWorker(ctx, id); err != nil {
		return err
	}
	s.log.WithField("worker_id", id).Info("worker deleted")
	return nil
}

func (s *Service) Worker(ctx context.Context, id WorkerID) (Worker, error) {
	return s.store.Worker(ctx, id)
}

// Workers returns the roster filtered by search (empty = everyone).
func (s *Service) Workers(ctx context.Context, search string) ([]Worker, error) {
	workers, err := s.store.Workers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return FilterWorkers(workers, search), nil
}

// SeedRoster adds workers only when the roster is empty. Returns how many
// were added.
func (s *Service) SeedRoster(ctx context.Context, workers []Worker) (int, error) {
	existing, err := s.store.Workers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list workers: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, w := range workers {
		if _, err := s.AddWorker(ctx, EditCapability(), w); err != nil {
			return i, err
		}
	}
	return len(workers), nil
}

// Reset wipes every worker together with their attendance and line items.
func (s *Service) Reset(ctx context.Context, capability Capability) error {
	if !capability.CanEdit() {
		return ErrEditNotAllowed
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	s.log.Warn("session data reset")
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// DayStatus pairs a period date with the worker's status on it.
type DayStatus struct {
	Date   CalendarDate
	Status Status
}

func (s *Service) ToggleAttendance(ctx context.Context, capability Capability, id WorkerID, date CalendarDate) (Status, error) {
	if !capability.CanEdit() {
		return Absent, ErrEditNotAllowed
	}
	if _, err := s.store.Worker(ctx, id); err != nil {
		return Absent, err
	}
	status, err := s.ledger.Toggle(ctx, capability, id, date)
	if err != nil {
		return Absent, err
	}
	s.log.WithFields(logrus.Fields{
		"worker_id": id,
		"date":      date.String(),
		"status":    status.String(),
	}).Debug("attendance toggled")
	return status, nil
}

// Attendance returns the worker's status for every day of the pay period.
func (s *Service) Attendance(ctx context.Context, id WorkerID, month time.Month, year int) ([]DayStatus, error) {
	dates, err := ComputePeriod(month, year)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Worker(ctx, id); err != nil {
		return nil, err
	}
	statuses, err := s.ledger.Statuses(ctx, id, dates)
	if err != nil {
		return nil, err
	}
	days := make([]DayStatus, len(dates))
	for i := range dates {
		days[i] = DayStatus{Date: dates[i], Status: statuses[i]}
	}
	return days, nil
}

// =============================================================================
// LINE ITEMS
// =============================================================================

// SetLineItem stores one bonus or deduction entry. Unchecking an entry
// clears its amount.
func (s *Service) SetLineItem(ctx context.Context, capability Capability, id WorkerID, category Category, item LineItem) error {
	if !capability.CanEdit() {
		return ErrEditNotAllowed
	}
	if !category.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if _, err := s.store.Worker(ctx, id); err != nil {
		return err
	}
	item = item.Normalized()
	if err := s.store.PutLineItem(ctx, LineItemKey{WorkerID: id, Category: category}, item); err != nil {
		return fmt.Errorf("put line item: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"worker_id": id,
		"category":  category,
		"enabled":   item.Enabled,
		"amount":    item.Amount,
	}).Debug("line item set")
	return nil
}

func (s *Service) LineItems(ctx context.Context, id WorkerID) (map[Category]LineItem, error) {
	if _, err := s.store.Worker(ctx, id); err != nil {
		return nil, err
	}
	return s.store.LineItems(ctx, id)
}

// =============================================================================
// SALARY
// =============================================================================

// Payslip is everything the form shows for one worker in one period.
type Payslip struct {
	Worker     Worker
	Days       []DayStatus
	Bonuses    map[Category]LineItem
	Deductions map[Category]LineItem
	Breakdown  SalaryBreakdown
}

// Salary returns the breakdown for one worker and pay period.
func (s *Service) Salary(ctx context.Context, id WorkerID, month time.Month, year int) (SalaryBreakdown, error) {
	slip, err := s.Payslip(ctx, id, month, year)
	if err != nil {
		return SalaryBreakdown{}, err
	}
	return slip.Breakdown, nil
}

func (s *Service) Payslip(ctx context.Context, id WorkerID, month time.Month, year int) (Payslip, error) {
	dates, err := ComputePeriod(month, year)
	if err != nil {
		return Payslip{}, err
	}
	w, err := s.store.Worker(ctx, id)
	if err != nil {
		return Payslip{}, err
	}
	return s.payslip(ctx, w, dates)
}

// Payroll returns one payslip per worker matching search, in roster order.
func (s *Service) Payroll(ctx context.Context, month time.Month, year int, search string) ([]Payslip, error) {
	dates, err := ComputePeriod(month, year)
	if err != nil {
		return nil, err
	}
	workers, err := s.Workers(ctx, search)
	if err != nil {
		return nil, err
	}
	slips := make([]Payslip, 0, len(workers))
	for _, w := range workers {
		slip, err := s.payslip(ctx, w, dates)
		if err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}
	return slips, nil
}

func (s *Service) payslip(ctx context.Context, w Worker, dates []CalendarDate) (Payslip, error) {
	statuses, err := s.ledger.Statuses(ctx, w.ID, dates)
	if err != nil {
		return Payslip{}, err
	}
	items, err := s.store.LineItems(ctx, w.ID)
	if err != nil {
		return Payslip{}, fmt.Errorf("read line items %d: %w", w.ID, err)
	}
	bonuses, deductions := SplitLineItems(items)

	days := make([]DayStatus, len(dates))
	for i := range dates {
		days[i] = DayStatus{Date: dates[i], Status: statuses[i]}
	}

	summary := s.calc.rule.Apply(statuses)
	return Payslip{
		Worker:     w,
		Days:       days,
		Bonuses:    bonuses,
		Deductions: deductions,
		Breakdown:  s.calc.Breakdown(summary, bonuses, deductions),
	}, nil
}
