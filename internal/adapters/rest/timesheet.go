package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
)

// TimesheetHandler はタイムシートの HTTP ハンドラです。
type TimesheetHandler struct {
	svc timesheet.UseCase
}

// NewTimesheetHandler は TimesheetHandler を生成します。
func NewTimesheetHandler(svc timesheet.UseCase) *TimesheetHandler {
	return &TimesheetHandler{svc: svc}
}

// Generate は期間内の作業記録からタイムシートを作成します。
func (h *TimesheetHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !authorizeEmployee(c, req.EmployeeID) {
		return
	}

	created, err := h.svc.Generate(c.Request.Context(), timesheet.GenerateInput{
		EmployeeID:  req.EmployeeID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("timesheet generated", dto.FromTimesheet(created)))
}

// List はタイムシート一覧を返します。
func (h *TimesheetHandler) List(c *gin.Context) {
	employeeID, ok := scopeEmployee(c, c.Query("employee_id"))
	if !ok {
		return
	}
	in := timesheet.ListInput{EmployeeID: employeeID}
	if s := optionalStringQuery(c, "status"); s != nil {
		st := timesheet.Status(*s)
		in.Status = &st
	}

	list, err := h.svc.List(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("timesheets", dto.FromTimesheets(list), ListMeta{Count: len(list)}))
}

// Get はタイムシートを取得します。
func (h *TimesheetHandler) Get(c *gin.Context) {
	found, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, found.EmployeeID) {
		return
	}

	c.JSON(http.StatusOK, successResponse("timesheet", dto.FromTimesheet(found)))
}

// Submit は下書きのタイムシートを提出します。
func (h *TimesheetHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, current.EmployeeID) {
		return
	}

	submitted, err := h.svc.Submit(ctx, current.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("timesheet submitted", dto.FromTimesheet(submitted)))
}

// Approve は提出済みのタイムシートを承認します。
func (h *TimesheetHandler) Approve(c *gin.Context) {
	h.review(c, h.svc.Approve, "timesheet approved")
}

// Reject は提出済みのタイムシートを差し戻します。
func (h *TimesheetHandler) Reject(c *gin.Context) {
	h.review(c, h.svc.Reject, "timesheet rejected")
}

func (h *TimesheetHandler) review(c *gin.Context, fn func(ctx context.Context, in timesheet.ReviewInput) (*timesheet.Timesheet, error), message string) {
	if !requireAdmin(c) {
		return
	}

	var req dto.ReviewTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ReviewerID == "" {
		req.ReviewerID = actingEmployee(c)
	}

	reviewed, err := fn(c.Request.Context(), timesheet.ReviewInput{
		ID:         c.Param("id"),
		ReviewerID: req.ReviewerID,
		Notes:      req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(message, dto.FromTimesheet(reviewed)))
}

// Delete はタイムシートを削除します。
func (h *TimesheetHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, current.EmployeeID) {
		return
	}

	if err := h.svc.Delete(ctx, current.ID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("timesheet deleted", nil))
}
