package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
)

// TimerHandler は社員ごとのタイマー操作を扱います。
type TimerHandler struct {
	svc timer.UseCase
}

// NewTimerHandler は TimerHandler を生成します。
func NewTimerHandler(svc timer.UseCase) *TimerHandler {
	return &TimerHandler{svc: svc}
}

// Start は計測を開始します。計測中の場合は現在のセッションをそのまま返します。
func (h *TimerHandler) Start(c *gin.Context) {
	var req dto.StartTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actingEmployee(c)
	}
	if !authorizeEmployee(c, req.EmployeeID) {
		return
	}

	session, err := h.svc.Start(c.Request.Context(), timer.StartInput{
		EmployeeID: req.EmployeeID,
		Type:       timelog.Type(req.Type),
		Project:    req.Project,
		Task:       req.Task,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("timer running", dto.FromSession(req.EmployeeID, session)))
}

// Stop は計測を終了し、作業記録を返します。計測中でなければ log は null です。
func (h *TimerHandler) Stop(c *gin.Context) {
	var req dto.StopTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actingEmployee(c)
	}
	if !authorizeEmployee(c, req.EmployeeID) {
		return
	}

	logged, err := h.svc.Stop(c.Request.Context(), timer.StopInput{
		EmployeeID: req.EmployeeID,
		Notes:      req.Notes,
		Billable:   req.Billable,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	resp := dto.StopTimerResponse{}
	if logged != nil {
		l := dto.FromTimeLog(logged)
		resp.Log = &l
	}
	c.JSON(http.StatusOK, successResponse("timer stopped", resp))
}

// Reset は記録を残さずに計測を破棄します。
func (h *TimerHandler) Reset(c *gin.Context) {
	employeeID := c.Param("employee_id")
	if !authorizeEmployee(c, employeeID) {
		return
	}

	if err := h.svc.Reset(c.Request.Context(), employeeID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("timer reset", dto.FromSession(employeeID, nil)))
}

// Current は現在のタイマー状態を返します。
func (h *TimerHandler) Current(c *gin.Context) {
	employeeID := c.Param("employee_id")
	if !authorizeEmployee(c, employeeID) {
		return
	}

	session, err := h.svc.Current(c.Request.Context(), employeeID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("timer state", dto.FromSession(employeeID, session)))
}
