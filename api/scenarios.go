/*
scenarios.go - Demo data sets

PURPOSE:
  Lets an operator (or a frontend demo) wipe the session and load a known
  roster with attendance and line items already filled in. Loading always
  resets first, so it needs edit mode.

SCENARIOS:
  empty:          No workers at all
  default-roster: The three sample workers, no attendance
  full-period:    Sample workers with a filled grid for the requested
                  period. One works every day, one works six-on one-off
                  (never earns a bonus day), one works two weeks straight.

SEE ALSO:
  - payroll/roster.go: DefaultRoster
  - handlers.go: Handler
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/warp/shift-payroll/payroll"
)

// ScenarioDTO describes a loadable data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario and, for full-period, the period.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	Month      int    `json:"month,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "No workers, no attendance",
	},
	{
		ID:          "default-roster",
		Name:        "Default Roster",
		Description: "Three sample workers with a blank attendance grid",
	},
	{
		ID:          "full-period",
		Name:        "Full Period",
		Description: "Sample workers with attendance, bonuses and deductions for one pay period",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, or null.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the session and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !knownScenario(req.ScenarioID) {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	capability := h.Sessions.fromRequest(r)
	if !capability.CanEdit() {
		h.writeServiceError(w, "Loading a scenario requires edit mode", payroll.ErrEditNotAllowed)
		return
	}

	month, year := payroll.PeriodFor(h.now())
	if req.Month != 0 {
		month = time.Month(req.Month)
	}
	if req.Year != 0 {
		year = req.Year
	}
	// Nothing is wiped unless the period is valid
	dates, err := payroll.ComputePeriod(month, year)
	if err != nil {
		h.writeServiceError(w, "Invalid period", err)
		return
	}

	ctx := r.Context()

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	// Reset first
	if err := h.Service.Reset(ctx, capability); err != nil {
		h.writeServiceError(w, "Failed to reset session", err)
		return
	}
	h.currentScenario = ""

	switch req.ScenarioID {
	case "empty":
	case "default-roster":
		_, err = h.Service.SeedRoster(ctx, payroll.DefaultRoster())
	case "full-period":
		err = h.loadFullPeriodScenario(ctx, capability, dates)
	}
	if err != nil {
		h.writeServiceError(w, fmt.Sprintf("Failed to load scenario %q", req.ScenarioID), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Log.WithField("scenario", req.ScenarioID).Info("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func knownScenario(id string) bool {
	for _, s := range scenarios {
		if s.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// fullPeriodPattern decides whether worker n (0-based) is present on the
// i-th day of the period.
var fullPeriodPattern = []func(i int) bool{
	func(int) bool { return true },
	func(i int) bool { return i%7 != 6 },
	func(i int) bool { return i < 14 },
}

var fullPeriodItems = []map[payroll.Category]payroll.LineItem{
	{
		payroll.CategoryHoliday: {Enabled: true, Amount: "500"},
		payroll.CategorySocial:  {Enabled: true, Amount: "200"},
	},
	{
		payroll.CategoryAllowance: {Enabled: false, Amount: "300"},
		payroll.CategoryTransport: {Enabled: true, Amount: "150"},
	},
	{
		payroll.CategoryDiligence: {Enabled: true, Amount: "400"},
		payroll.CategoryAdvance:   {Enabled: true, Amount: "1,000"},
	},
}

func (h *Handler) loadFullPeriodScenario(ctx context.Context, capability payroll.Capability, dates []payroll.CalendarDate) error {
	for n, worker := range payroll.DefaultRoster() {
		created, err := h.Service.AddWorker(ctx, capability, worker)
		if err != nil {
			return err
		}

		present := fullPeriodPattern[n%len(fullPeriodPattern)]
		for i, d := range dates {
			if !present(i) {
				continue
			}
			if _, err := h.Service.ToggleAttendance(ctx, capability, created.ID, d); err != nil {
				return err
			}
		}

		for category, item := range fullPeriodItems[n%len(fullPeriodItems)] {
			if err := h.Service.SetLineItem(ctx, capability, created.ID, category, item); err != nil {
				return err
			}
		}
	}
	return nil
}
