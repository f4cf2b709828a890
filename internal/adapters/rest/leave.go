package rest

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
)

// LeaveHandler は休暇申請の HTTP ハンドラです。
type LeaveHandler struct {
	svc leave.UseCase
}

// NewLeaveHandler は LeaveHandler を生成します。
func NewLeaveHandler(svc leave.UseCase) *LeaveHandler {
	return &LeaveHandler{svc: svc}
}

// Create は休暇を申請します。
func (h *LeaveHandler) Create(c *gin.Context) {
	var req dto.CreateLeaveRequest
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

	created, err := h.svc.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("leave requested", dto.FromLeaveRequest(created)))
}

// List は休暇申請の一覧を返します。
func (h *LeaveHandler) List(c *gin.Context) {
	employeeID, ok := scopeEmployee(c, c.Query("employee_id"))
	if !ok {
		return
	}
	in := leave.ListInput{EmployeeID: employeeID}
	if s := optionalStringQuery(c, "status"); s != nil {
		st := leave.Status(*s)
		in.Status = &st
	}
	if t := optionalStringQuery(c, "type"); t != nil {
		typ := leave.Type(*t)
		in.Type = &typ
	}

	list, err := h.svc.List(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("leave requests", dto.FromLeaveRequests(list), ListMeta{Count: len(list)}))
}

// Get は休暇申請を取得します。
func (h *LeaveHandler) Get(c *gin.Context) {
	found, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, found.EmployeeID) {
		return
	}

	c.JSON(http.StatusOK, successResponse("leave request", dto.FromLeaveRequest(found)))
}

// Approve は審査待ちの申請を承認します。
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.review(c, h.svc.Approve, "leave approved")
}

// Deny は審査待ちの申請を却下します。
func (h *LeaveHandler) Deny(c *gin.Context) {
	h.review(c, h.svc.Deny, "leave denied")
}

func (h *LeaveHandler) review(c *gin.Context, fn func(ctx context.Context, in leave.ReviewInput) (*leave.Request, error), message string) {
	if !requireAdmin(c) {
		return
	}

	// 本文は省略可能です。
	var req dto.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if req.ReviewerID == "" {
		req.ReviewerID = actingEmployee(c)
	}

	reviewed, err := fn(c.Request.Context(), leave.ReviewInput{
		ID:         c.Param("id"),
		ReviewerID: req.ReviewerID,
		Notes:      req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(message, dto.FromLeaveRequest(reviewed)))
}

// Cancel は審査待ちの申請を取り下げます。
func (h *LeaveHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, current.EmployeeID) {
		return
	}

	if err := h.svc.Cancel(ctx, current.ID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("leave request cancelled", nil))
}
