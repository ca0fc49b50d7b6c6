/*
handlers_test.go - HTTP tests for the payroll API

Tests for:
- Edit-mode login and the X-Edit-Token gate
- Worker CRUD, validation and search
- Attendance toggling and salary breakdown
- Line items (string and numeric amounts)
- Payroll export and scenarios
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/shift-payroll/api"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/payroll/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	svc    *payroll.Service
	token  string
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	svc := payroll.NewService(store.NewMemory(), payroll.DefaultPayRules(), logger)
	h := api.NewHandler(svc, payroll.NewAccessGate("admin"), logger)
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, svc: svc, client: srv.Client()}
}

func (ts *testServer) do(method, path string, body any) *http.Response {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set(api.EditTokenHeader, ts.token)
	}
	resp, err := ts.client.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) login() {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/api/session/login", api.LoginRequest{Password: "admin"})
	require.Equal(ts.t, http.StatusOK, resp.StatusCode)
	var out api.LoginResponse
	decode(ts.t, resp, &out)
	require.NotEmpty(ts.t, out.Token)
	ts.token = out.Token
}

func (ts *testServer) createWorker(given, family, code string) api.WorkerDTO {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/api/workers", api.WorkerRequest{
		GivenName:    given,
		FamilyName:   family,
		EmployeeCode: code,
	})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	var w api.WorkerDTO
	decode(ts.t, resp, &w)
	return w
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/api/session/login", api.LoginRequest{Password: "guess"})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errResp api.ErrorResponse
	decode(t, resp, &errResp)
	assert.Contains(t, errResp.Details, "wrong password")
}

func TestMutations_RequireEditToken(t *testing.T) {
	ts := newTestServer(t)

	// GIVEN: no login
	resp := ts.do(http.MethodPost, "/api/workers", api.WorkerRequest{GivenName: "a", FamilyName: "b", EmployeeCode: "c"})

	// THEN: forbidden and nothing stored
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = ts.do(http.MethodGet, "/api/workers", nil)
	var workers []api.WorkerDTO
	decode(t, resp, &workers)
	assert.Empty(t, workers)

	// AND: an unknown token is read-only too
	ts.token = "not-a-token"
	resp = ts.do(http.MethodPost, "/api/workers", api.WorkerRequest{GivenName: "a", FamilyName: "b", EmployeeCode: "c"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	ts.createWorker("Somchai", "Jaidee", "G001")

	resp := ts.do(http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(http.MethodDelete, "/api/workers/1", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// =============================================================================
// WORKER TESTS
// =============================================================================

func TestWorkers_CRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	// GIVEN: two workers
	a := ts.createWorker("Somchai", "Jaidee", "G001")
	ts.createWorker("Somying", "Rakngan", "G002")
	assert.Equal(t, int64(1), a.ID)

	// WHEN: editing the first
	resp := ts.do(http.MethodPut, "/api/workers/1", api.WorkerRequest{GivenName: "Somchai", FamilyName: "Srisuk", EmployeeCode: "G001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// THEN: GET reflects the edit
	resp = ts.do(http.MethodGet, "/api/workers/1", nil)
	var got api.WorkerDTO
	decode(t, resp, &got)
	assert.Equal(t, "Srisuk", got.FamilyName)

	// AND: search narrows the list
	resp = ts.do(http.MethodGet, "/api/workers?search=G002", nil)
	var workers []api.WorkerDTO
	decode(t, resp, &workers)
	require.Len(t, workers, 1)
	assert.Equal(t, "Somying", workers[0].GivenName)

	// AND: delete removes it
	resp = ts.do(http.MethodDelete, "/api/workers/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.do(http.MethodGet, "/api/workers/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateWorker_Incomplete(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	resp := ts.do(http.MethodPost, "/api/workers", api.WorkerRequest{GivenName: "Somchai"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp api.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, map[string]string{"family_name": "required", "employee_code": "required"}, errResp.Fields)
}

func TestWorker_BadID(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(http.MethodGet, "/api/workers/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// CALENDAR TESTS
// =============================================================================

func TestGetPeriod(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/api/period?month=1&year=2026", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p api.PeriodDTO
	decode(t, resp, &p)
	assert.Equal(t, "2025-12-16", p.Start)
	assert.Equal(t, "2026-01-15", p.End)
	assert.Len(t, p.Dates, 31)

	resp = ts.do(http.MethodGet, "/api/period?month=13&year=2026", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/period?month=x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListCategories(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(http.MethodGet, "/api/categories", nil)

	var cats []api.CategoryDTO
	decode(t, resp, &cats)
	require.Len(t, cats, 8)
	assert.Equal(t, "holiday", cats[0].Category)
	assert.Equal(t, "bonus", cats[0].Kind)
	assert.Equal(t, "deduction", cats[7].Kind)
}

// =============================================================================
// ATTENDANCE / SALARY TESTS
// =============================================================================

func TestToggleAttendance_AndSalary(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	ts.createWorker("Somchai", "Jaidee", "G001")

	// GIVEN: seven consecutive present days at the start of the October period
	for _, d := range []string{"2025-09-16", "2025-09-17", "2025-09-18", "2025-09-19", "2025-09-20", "2025-09-21", "2025-09-22"} {
		resp := ts.do(http.MethodPost, "/api/workers/1/attendance/"+d+"/toggle", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var tr api.ToggleResponse
		decode(t, resp, &tr)
		assert.True(t, tr.Present)
	}

	// AND: a holiday bonus given as a number and a deduction given as a string
	resp := ts.do(http.MethodPut, "/api/workers/1/line-items/holiday", map[string]any{"enabled": true, "amount": 500})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.do(http.MethodPut, "/api/workers/1/line-items/social", map[string]any{"enabled": true, "amount": "200"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// WHEN
	resp = ts.do(http.MethodGet, "/api/workers/1/salary?month=10&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// THEN: (7 + 1) * 600 + 500 - 200
	var s api.SalaryDTO
	decode(t, resp, &s)
	assert.Equal(t, 7, s.WorkDays)
	assert.Equal(t, 1, s.BonusDayCount)
	assert.Equal(t, 4800.0, s.BasicPay)
	assert.Equal(t, 500.0, s.TotalBonuses)
	assert.Equal(t, 200.0, s.TotalDeductions)
	assert.Equal(t, 5100.0, s.NetPay)

	// AND: the attendance grid shows the toggles
	resp = ts.do(http.MethodGet, "/api/workers/1/attendance?month=10&year=2025", nil)
	var grid api.AttendanceDTO
	decode(t, resp, &grid)
	require.Len(t, grid.Days, 30)
	assert.Equal(t, "present", grid.Days[6].Status)
	assert.Equal(t, "absent", grid.Days[7].Status)
}

func TestToggleAttendance_Errors(t *testing.T) {
	ts := newTestServer(t)

	// Read-only
	ts.createWorkerDirect(t)
	resp := ts.do(http.MethodPost, "/api/workers/1/attendance/2025-10-01/toggle", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ts.login()
	resp = ts.do(http.MethodPost, "/api/workers/1/attendance/2025-02-30/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodPost, "/api/workers/9/attendance/2025-10-01/toggle", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (ts *testServer) createWorkerDirect(t *testing.T) {
	t.Helper()
	_, err := ts.svc.AddWorker(context.Background(), payroll.EditCapability(), payroll.Worker{GivenName: "a", FamilyName: "b", EmployeeCode: "c"})
	require.NoError(t, err)
}

// =============================================================================
// LINE ITEM TESTS
// =============================================================================

func TestLineItems(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	ts.createWorker("Somchai", "Jaidee", "G001")

	resp := ts.do(http.MethodPut, "/api/workers/1/line-items/advance", map[string]any{"enabled": true, "amount": "abc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item api.LineItemDTO
	decode(t, resp, &item)
	assert.Equal(t, "abc", item.Amount)
	assert.Zero(t, item.Value)

	resp = ts.do(http.MethodPut, "/api/workers/1/line-items/overtime", map[string]any{"enabled": true, "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/workers/1/line-items", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items api.LineItemsDTO
	decode(t, resp, &items)
	require.Len(t, items.Bonuses, 4)
	require.Len(t, items.Deductions, 4)
	assert.Equal(t, "advance", items.Deductions[2].Category)
	assert.True(t, items.Deductions[2].Enabled)
	assert.False(t, items.Bonuses[0].Enabled)
}

// =============================================================================
// PAYROLL TESTS
// =============================================================================

func TestPayroll_AndExport(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	// GIVEN: the full-period scenario for October 2025
	resp := ts.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "full-period", Month: 10, Year: 2025})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// WHEN: reading the payroll
	resp = ts.do(http.MethodGet, "/api/payroll?month=10&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pr api.PayrollDTO
	decode(t, resp, &pr)

	// THEN: three payslips with the scenario's attendance patterns
	require.Len(t, pr.Payslips, 3)
	assert.Equal(t, 30, pr.Payslips[0].Salary.WorkDays)
	assert.Equal(t, 4, pr.Payslips[0].Salary.BonusDayCount)
	assert.Equal(t, 34*600.0+500-200, pr.Payslips[0].Salary.NetPay)
	assert.Equal(t, 0, pr.Payslips[1].Salary.BonusDayCount)
	assert.Equal(t, 14, pr.Payslips[2].Salary.WorkDays)
	assert.Equal(t, 2, pr.Payslips[2].Salary.BonusDayCount)
	// "1,000" does not parse, so the advance deducts nothing
	assert.Equal(t, 0.0, pr.Payslips[2].Salary.TotalDeductions)

	// AND: the export is a workbook with one summary row per worker
	resp = ts.do(http.MethodGet, "/api/payroll/export?month=10&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(resp.Header.Get("Content-Disposition"), "payroll-2025-10.xlsx"))

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestScenarios(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/api/scenarios", nil)
	var list []api.ScenarioDTO
	decode(t, resp, &list)
	assert.Len(t, list, 3)

	// Loading wipes data, so it needs edit mode
	resp = ts.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "default-roster"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ts.login()
	resp = ts.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "default-roster"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/scenarios/current", nil)
	var current api.ScenarioDTO
	decode(t, resp, &current)
	assert.Equal(t, "default-roster", current.ID)

	resp = ts.do(http.MethodGet, "/api/workers", nil)
	var workers []api.WorkerDTO
	decode(t, resp, &workers)
	assert.Len(t, workers, 3)

	// Reloading empties the roster first
	resp = ts.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "empty"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.do(http.MethodGet, "/api/workers", nil)
	decode(t, resp, &workers)
	assert.Empty(t, workers)
}

func TestLoadScenario_InvalidPeriodKeepsData(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	// GIVEN: a roster the operator has already entered
	ts.createWorker("สมชาย", "ใจดี", "G001")

	// WHEN: loading a scenario for a month that does not exist
	resp := ts.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "full-period", Month: 13, Year: 2025})

	// THEN: the load is rejected and nothing was wiped
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/workers", nil)
	var workers []api.WorkerDTO
	decode(t, resp, &workers)
	require.Len(t, workers, 1)
	assert.Equal(t, "G001", workers[0].EmployeeCode)

	resp = ts.do(http.MethodGet, "/api/scenarios/current", nil)
	var current *api.ScenarioDTO
	decode(t, resp, &current)
	assert.Nil(t, current)
}

func TestLoadScenario_FullPeriod(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	// GIVEN: the full-period scenario for November 2025 (16 Oct - 15 Nov, 31 days)
	resp := ts.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "full-period", Month: 11, Year: 2025})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// WHEN: reading the payroll for that period
	resp = ts.do(http.MethodGet, "/api/payroll?month=11&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pr api.PayrollDTO
	decode(t, resp, &pr)

	// THEN: every worker follows their attendance pattern
	require.Len(t, pr.Payslips, 3)
	g001, g002, g003 := pr.Payslips[0], pr.Payslips[1], pr.Payslips[2]
	assert.Equal(t, "G001", g001.Worker.EmployeeCode)
	assert.Equal(t, "G002", g002.Worker.EmployeeCode)
	assert.Equal(t, "G003", g003.Worker.EmployeeCode)
	assert.Len(t, g001.Attendance, 31)

	// Present all 31 days: four bonus days
	assert.Equal(t, 31, g001.Salary.WorkDays)
	assert.Equal(t, 4, g001.Salary.BonusDayCount)
	assert.Equal(t, 35*600.0, g001.Salary.BasicPay)
	assert.Equal(t, 500.0, g001.Salary.TotalBonuses)
	assert.Equal(t, 200.0, g001.Salary.TotalDeductions)
	assert.Equal(t, 21300.0, g001.Salary.NetPay)

	// Six on, one off: the streak never reaches seven
	assert.Equal(t, 27, g002.Salary.WorkDays)
	assert.Equal(t, 0, g002.Salary.BonusDayCount)
	// The unchecked allowance counts for nothing
	assert.Equal(t, 150.0, g002.Salary.TotalBonuses)
	assert.Equal(t, 27*600.0+150, g002.Salary.NetPay)

	// Fourteen straight days: two bonus days
	assert.Equal(t, 14, g003.Salary.WorkDays)
	assert.Equal(t, 2, g003.Salary.BonusDayCount)
	assert.Equal(t, 400.0, g003.Salary.TotalBonuses)
	// "1,000" does not parse, so the advance deducts nothing
	assert.Equal(t, 0.0, g003.Salary.TotalDeductions)
	assert.Equal(t, 16*600.0+400, g003.Salary.NetPay)
}
