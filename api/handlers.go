/*
handlers.go - HTTP API handlers for the shift payroll engine

PURPOSE:
  Exposes the payroll service via a REST API. Handles HTTP request/response,
  JSON serialization, and delegates to payroll.Service.

ENDPOINTS:
  Session:
    POST   /api/session/login                          Shared password -> edit token
    POST   /api/session/logout                         Drop edit token

  Calendar:
    GET    /api/period?month=&year=                    Pay-period dates
    GET    /api/categories                             Fixed line item categories

  Workers:
    GET    /api/workers?search=                        List/search roster
    POST   /api/workers                                Add worker (edit)
    GET    /api/workers/{id}                           Worker
    PUT    /api/workers/{id}                           Edit worker (edit)
    DELETE /api/workers/{id}                           Delete worker + data (edit)

  Attendance:
    GET    /api/workers/{id}/attendance?month=&year=   Grid for one period
    POST   /api/workers/{id}/attendance/{date}/toggle  Flip one day (edit)

  Line items:
    GET    /api/workers/{id}/line-items                Bonuses and deductions
    PUT    /api/workers/{id}/line-items/{category}     Set one entry (edit)

  Scenarios (scenarios.go):
    GET    /api/scenarios                              Demo data sets
    GET    /api/scenarios/current                      Last loaded set
    POST   /api/scenarios/load                         Reset + load (edit)

  Salary:
    GET    /api/workers/{id}/salary?month=&year=       Breakdown
    GET    /api/payroll?month=&year=&search=           All payslips
    GET    /api/payroll/export?month=&year=&search=    Excel workbook

EDIT MODE:
  Mutating endpoints read the X-Edit-Token header. A missing or unknown
  token is read-only and the mutation is rejected with 403.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (month, date, category, incomplete worker)
  - 401: Wrong password
  - 403: Edit mode required
  - 404: Worker not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *payroll.Service
	Gate     *payroll.AccessGate
	Sessions *Sessions
	Log      logrus.FieldLogger

	// now picks the default period when month/year are omitted.
	now func() time.Time

	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler around one payroll session.
func NewHandler(svc *payroll.Service, gate *payroll.AccessGate, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Service:  svc,
		Gate:     gate,
		Sessions: NewSessions(),
		Log:      log.WithField("module", "api"),
		now:      time.Now,
	}
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// Login unlocks edit mode and returns an edit token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	capability, err := h.Gate.Unlock(req.Password)
	if err != nil {
		h.Log.Warn("edit mode login rejected")
		h.writeServiceError(w, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: h.Sessions.Open(capability)})
}

// Logout drops the caller's edit token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Close(r.Header.Get(EditTokenHeader))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetPeriod returns the dates of a pay period.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	month, year, ok := h.periodParams(w, r)
	if !ok {
		return
	}

	dates, err := payroll.ComputePeriod(month, year)
	if err != nil {
		h.writeServiceError(w, "Invalid period", err)
		return
	}

	dto := PeriodDTO{
		Month: int(month),
		Year:  year,
		Start: dates[0].String(),
		End:   dates[len(dates)-1].String(),
		Dates: make([]string, len(dates)),
	}
	for i, d := range dates {
		dto.Dates[i] = d.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListCategories returns the fixed bonus and deduction categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var dtos []CategoryDTO
	for _, group := range [][]payroll.Category{payroll.BonusCategories, payroll.DeductionCategories} {
		for _, c := range group {
			dtos = append(dtos, CategoryDTO{Category: string(c), Kind: string(c.Kind()), Label: c.Label()})
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns the roster, filtered by ?search=.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Service.Workers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, "Failed to list workers", err)
		return
	}

	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWorker returns a single worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	wk, err := h.Service.Worker(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(wk))
}

// CreateWorker adds a worker to the roster.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.Service.AddWorker(r.Context(), h.Sessions.fromRequest(r), payroll.Worker{
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		EmployeeCode: req.EmployeeCode,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create worker", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkerDTO(created))
}

// UpdateWorker edits a worker's names and code.
func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	var req WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.Service.UpdateWorker(r.Context(), h.Sessions.fromRequest(r), payroll.Worker{
		ID:           id,
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		EmployeeCode: req.EmployeeCode,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(updated))
}

// DeleteWorker removes a worker and purges their attendance and line items.
func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteWorker(r.Context(), h.Sessions.fromRequest(r), id); err != nil {
		h.writeServiceError(w, "Failed to delete worker", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetAttendance returns the worker's grid for a period.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	month, year, ok := h.periodParams(w, r)
	if !ok {
		return
	}

	days, err := h.Service.Attendance(r.Context(), id, month, year)
	if err != nil {
		h.writeServiceError(w, "Failed to get attendance", err)
		return
	}

	writeJSON(w, http.StatusOK, AttendanceDTO{
		WorkerID: int64(id),
		Month:    int(month),
		Year:     year,
		Days:     toDayStatusDTOs(days),
	})
}

// ToggleAttendance flips one day.
func (h *Handler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	date, err := payroll.ParseCalendarDate(chi.URLParam(r, "date"))
	if err != nil {
		h.writeServiceError(w, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	status, err := h.Service.ToggleAttendance(r.Context(), h.Sessions.fromRequest(r), id, date)
	if err != nil {
		h.writeServiceError(w, "Failed to toggle attendance", err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleResponse{
		WorkerID: int64(id),
		Date:     date.String(),
		Status:   status.String(),
		Present:  status == payroll.Present,
	})
}

// =============================================================================
// LINE ITEM HANDLERS
// =============================================================================

// GetLineItems returns every bonus and deduction slot for the worker.
func (h *Handler) GetLineItems(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	items, err := h.Service.LineItems(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get line items", err)
		return
	}

	bonuses, deductions := payroll.SplitLineItems(items)
	writeJSON(w, http.StatusOK, LineItemsDTO{
		WorkerID:   int64(id),
		Bonuses:    toLineItemDTOs(bonuses, payroll.BonusCategories),
		Deductions: toLineItemDTOs(deductions, payroll.DeductionCategories),
	})
}

// PutLineItem sets one bonus or deduction entry.
func (h *Handler) PutLineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	category := payroll.Category(chi.URLParam(r, "category"))

	var req LineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item := payroll.LineItem{Enabled: req.Enabled, Amount: string(req.Amount)}.Normalized()
	if err := h.Service.SetLineItem(r.Context(), h.Sessions.fromRequest(r), id, category, item); err != nil {
		h.writeServiceError(w, "Failed to set line item", err)
		return
	}
	writeJSON(w, http.StatusOK, toLineItemDTO(category, item))
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// GetSalary returns one worker's breakdown for a period.
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	month, year, ok := h.periodParams(w, r)
	if !ok {
		return
	}

	breakdown, err := h.Service.Salary(r.Context(), id, month, year)
	if err != nil {
		h.writeServiceError(w, "Failed to calculate salary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryDTO(breakdown))
}

// GetPayroll returns a payslip for every worker matching ?search=.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	month, year, ok := h.periodParams(w, r)
	if !ok {
		return
	}

	slips, err := h.Service.Payroll(r.Context(), month, year, r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, "Failed to calculate payroll", err)
		return
	}

	dto := PayrollDTO{Month: int(month), Year: year, Payslips: make([]PayslipDTO, len(slips))}
	for i, slip := range slips {
		dto.Payslips[i] = toPayslipDTO(slip)
	}
	writeJSON(w, http.StatusOK, dto)
}

// ExportPayroll streams the payroll as an .xlsx workbook.
func (h *Handler) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	month, year, ok := h.periodParams(w, r)
	if !ok {
		return
	}

	slips, err := h.Service.Payroll(r.Context(), month, year, r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, "Failed to calculate payroll", err)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, slips); err != nil {
		h.writeServiceError(w, "Failed to build workbook", err)
		return
	}

	filename := fmt.Sprintf("payroll-%04d-%02d.xlsx", year, int(month))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError picks the status code from the payroll error kind.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, payroll.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, message, err)
	case errors.Is(err, payroll.ErrEditNotAllowed):
		writeError(w, http.StatusForbidden, message, err)
	case payroll.IsClientError(err):
		resp := ErrorResponse{Error: message, Details: err.Error()}
		var verr *payroll.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func workerIDParam(w http.ResponseWriter, r *http.Request) (payroll.WorkerID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid worker id", err)
		return 0, false
	}
	return payroll.WorkerID(id), true
}

// periodParams reads ?month=1-12&year=YYYY, defaulting to the current month.
func (h *Handler) periodParams(w http.ResponseWriter, r *http.Request) (time.Month, int, bool) {
	month, year := payroll.PeriodFor(h.now())
	q := r.URL.Query()

	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use 1-12)", err)
			return 0, 0, false
		}
		month = time.Month(m)
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return 0, 0, false
		}
		year = y
	}
	return month, year, true
}
