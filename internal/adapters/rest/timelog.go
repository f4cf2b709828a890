package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
)

// TimeLogHandler は作業記録の HTTP ハンドラです。
type TimeLogHandler struct {
	svc timelog.UseCase
}

// NewTimeLogHandler は TimeLogHandler を生成します。
func NewTimeLogHandler(svc timelog.UseCase) *TimeLogHandler {
	return &TimeLogHandler{svc: svc}
}

// AddLog は作業記録を登録します。
func (h *TimeLogHandler) AddLog(c *gin.Context) {
	var req dto.AddTimeLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !authorizeEmployee(c, req.EmployeeID) {
		return
	}

	created, err := h.svc.AddLog(c.Request.Context(), req.ToInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("time log created", dto.FromTimeLog(created)))
}

// ListLogs は作業記録を開始時刻順に返します。
func (h *TimeLogHandler) ListLogs(c *gin.Context) {
	in := timelog.ListLogsInput{
		EmployeeID: c.Query("employee_id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}
	if in.EmployeeID == "" {
		in.EmployeeID = actingEmployee(c)
	}
	if !authorizeEmployee(c, in.EmployeeID) {
		return
	}
	if t := optionalStringQuery(c, "type"); t != nil {
		typ := timelog.Type(*t)
		in.Type = &typ
	}

	logs, err := h.svc.ListLogs(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("time logs", dto.FromTimeLogs(logs), ListMeta{Count: len(logs)}))
}

// GetLog は作業記録を取得します。
func (h *TimeLogHandler) GetLog(c *gin.Context) {
	found, err := h.svc.GetLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, found.EmployeeID) {
		return
	}

	c.JSON(http.StatusOK, successResponse("time log", dto.FromTimeLog(found)))
}

// UpdateLog は作業記録を部分更新します。
func (h *TimeLogHandler) UpdateLog(c *gin.Context) {
	var req dto.UpdateTimeLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	current, err := h.svc.GetLog(ctx, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, current.EmployeeID) {
		return
	}

	updated, err := h.svc.UpdateLog(ctx, req.ToInput(current.ID))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("time log updated", dto.FromTimeLog(updated)))
}

// DeleteLog は作業記録を削除します。
func (h *TimeLogHandler) DeleteLog(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.GetLog(ctx, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, current.EmployeeID) {
		return
	}

	if err := h.svc.DeleteLog(ctx, current.ID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("time log deleted", nil))
}
