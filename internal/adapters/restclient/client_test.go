package restclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/rest"
	"github.com/ogurasousui/codex-hr-payroll/internal/app"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svcs := app.NewServices(app.MemoryRepositories(), app.Options{})
	router, err := rest.NewRouter(rest.Services{
		TimeLogs:    svcs.TimeLogs,
		Timer:       svcs.Timer,
		Timesheets:  svcs.Timesheets,
		Payroll:     svcs.Payroll,
		Payslips:    svcs.Payslips,
		Employees:   svcs.Employees,
		Departments: svcs.Departments,
		Leave:       svcs.Leave,
	}, rest.Options{})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func workLog(employeeID string, start time.Time, minutes int) dto.AddTimeLogRequest {
	return dto.AddTimeLogRequest{
		EmployeeID: employeeID,
		StartTime:  start,
		EndTime:    start.Add(time.Duration(minutes) * time.Minute),
		Type:       "work",
	}
}

func TestClient_TimeLogLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	created, err := c.AddTimeLog(ctx, workLog("emp-1", start, 90))
	if err != nil {
		t.Fatalf("AddTimeLog: %v", err)
	}
	if created.Duration != 90 || created.Date != "2024-03-04" {
		t.Fatalf("unexpected log: %+v", created)
	}

	notes := "pairing"
	updated, err := c.UpdateTimeLog(ctx, created.ID, dto.UpdateTimeLogRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateTimeLog: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("expected notes updated, got %+v", updated.Notes)
	}

	logs, err := c.ListTimeLogs(ctx, "emp-1", "2024-03-01", "2024-03-31")
	if err != nil || len(logs) != 1 {
		t.Fatalf("ListTimeLogs = %+v, %v", logs, err)
	}

	if err := c.DeleteTimeLog(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTimeLog: %v", err)
	}
	logs, err = c.ListTimeLogs(ctx, "emp-1", "", "")
	if err != nil || len(logs) != 0 {
		t.Fatalf("expected no logs after delete, got %+v, %v", logs, err)
	}
}

func TestClient_APIError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := New(srv.URL)

	_, err := c.GetEmployee(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", apiErr.StatusCode)
	}
}

func TestClient_TimerAndTimesheet(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.AddTimeLog(ctx, workLog("emp-2", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), 120)); err != nil {
		t.Fatalf("AddTimeLog: %v", err)
	}

	session, err := c.StartTimer(ctx, dto.StartTimerRequest{EmployeeID: "emp-2", Type: "meeting"})
	if err != nil || session.State != "running" {
		t.Fatalf("StartTimer = %+v, %v", session, err)
	}

	sheet, err := c.GenerateTimesheet(ctx, dto.GenerateTimesheetRequest{
		EmployeeID:  "emp-2",
		PeriodStart: "2024-03-01",
		PeriodEnd:   "2024-03-31",
	})
	if err != nil {
		t.Fatalf("GenerateTimesheet: %v", err)
	}
	if sheet.TotalMinutes != 120 {
		t.Fatalf("expected 120 minutes, got %d", sheet.TotalMinutes)
	}

	_, err = c.GenerateTimesheet(ctx, dto.GenerateTimesheetRequest{
		EmployeeID:  "emp-3",
		PeriodStart: "2024-03-01",
		PeriodEnd:   "2024-03-31",
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without logs, got %v", err)
	}
}
