// Package rest は gin による HTTP/JSON API を提供します。
package rest

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
)

// Services はルーターに登録するユースケース群です。
type Services struct {
	TimeLogs    timelog.UseCase
	Timer       timer.UseCase
	Timesheets  timesheet.UseCase
	Payroll     payroll.UseCase
	Payslips    payslip.UseCase
	Employees   employee.UseCase
	Departments department.UseCase
	Leave       leave.UseCase

	PayslipPDF PayslipRenderer
	Register   RegisterRenderer
}

// HealthCheck は依存先の疎通確認です。
type HealthCheck func(ctx context.Context) error

// Options はルーターの動作設定です。
type Options struct {
	// RateLimit は limiter 形式のレートです。空の場合は制限しません。
	RateLimit string
	// JWTSecret が空の場合は認証を行いません。
	JWTSecret string
	Checks    map[string]HealthCheck
}

// NewRouter は /api/v1 配下に全エンドポイントを登録した gin.Engine を返します。
func NewRouter(svcs Services, opts Options) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	if opts.RateLimit != "" {
		limit, err := RateLimit(opts.RateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(limit)
	}

	r.GET("/health", healthHandler(opts.Checks))

	api := r.Group("/api/v1")
	api.Use(JWTAuth(opts.JWTSecret))
	{
		logs := NewTimeLogHandler(svcs.TimeLogs)
		group := api.Group("/time-logs")
		group.POST("", logs.AddLog)
		group.GET("", logs.ListLogs)
		group.GET("/:id", logs.GetLog)
		group.PATCH("/:id", logs.UpdateLog)
		group.DELETE("/:id", logs.DeleteLog)
	}
	{
		t := NewTimerHandler(svcs.Timer)
		group := api.Group("/timer")
		group.POST("/start", t.Start)
		group.POST("/stop", t.Stop)
		group.GET("/:employee_id", t.Current)
		group.DELETE("/:employee_id", t.Reset)
	}
	{
		ts := NewTimesheetHandler(svcs.Timesheets)
		group := api.Group("/timesheets")
		group.POST("", ts.Generate)
		group.GET("", ts.List)
		group.GET("/:id", ts.Get)
		group.DELETE("/:id", ts.Delete)
		group.POST("/:id/submit", ts.Submit)
		group.POST("/:id/approve", ts.Approve)
		group.POST("/:id/reject", ts.Reject)
	}
	{
		l := NewLeaveHandler(svcs.Leave)
		group := api.Group("/leave-requests")
		group.POST("", l.Create)
		group.GET("", l.List)
		group.GET("/:id", l.Get)
		group.DELETE("/:id", l.Cancel)
		group.POST("/:id/approve", l.Approve)
		group.POST("/:id/deny", l.Deny)
	}
	{
		p := NewPayrollHandler(svcs.Payroll, svcs.Register)
		group := api.Group("/payroll")
		group.POST("/tax", p.CalculateTax)
		group.POST("/overtime", p.CalculateOvertime)
		group.POST("/records", p.GeneratePayroll)
		group.GET("/records", p.ListRecords)
		group.GET("/records/:id", p.GetRecord)
		group.PATCH("/records/:id", p.UpdateRecord)
		group.DELETE("/records/:id", p.DeleteRecord)
		group.POST("/periods", p.ProcessPeriod)
		group.GET("/periods", p.ListPeriods)
		group.GET("/periods/:year/:month", p.GetPeriod)
		group.GET("/periods/:year/:month/register", p.ExportRegister)
		group.GET("/settings", p.GetSettings)
		group.PATCH("/settings", p.UpdateSettings)
	}
	{
		ps := NewPayslipHandler(svcs.Payslips, svcs.PayslipPDF)
		group := api.Group("/payslips")
		group.POST("", ps.Generate)
		group.GET("", ps.List)
		group.GET("/:id", ps.Get)
		group.GET("/:id/pdf", ps.PDF)
		group.POST("/:id/send", ps.MarkSent)
		group.POST("/:id/acknowledge", ps.Acknowledge)
	}
	{
		e := NewEmployeeHandler(svcs.Employees)
		group := api.Group("/employees")
		group.POST("", e.Create)
		group.GET("", e.List)
		group.GET("/:id", e.Get)
		group.PATCH("/:id", e.Update)
		group.DELETE("/:id", e.Delete)
	}
	{
		d := NewDepartmentHandler(svcs.Departments)
		group := api.Group("/departments")
		group.POST("", d.Create)
		group.GET("", d.List)
		group.GET("/:id", d.Get)
		group.PATCH("/:id", d.Update)
		group.DELETE("/:id", d.Delete)
	}

	return r, nil
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		statuses := make(map[string]string, len(names))
		healthy := true
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				statuses[name] = err.Error()
				healthy = false
				continue
			}
			statuses[name] = "ok"
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, APIResponse{Success: false, Message: "unhealthy", Data: statuses})
			return
		}
		c.JSON(http.StatusOK, successResponse("ok", statuses))
	}
}
