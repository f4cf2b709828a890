package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
)

// DepartmentHandler は部署の HTTP ハンドラです。
type DepartmentHandler struct {
	svc department.UseCase
}

// NewDepartmentHandler は DepartmentHandler を生成します。
func NewDepartmentHandler(svc department.UseCase) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.svc.CreateDepartment(c.Request.Context(), department.CreateDepartmentInput{
		Name:           req.Name,
		Code:           req.Code,
		HeadEmployeeID: req.HeadEmployeeID,
		ParentID:       req.ParentID,
		Description:    req.Description,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("department created", dto.FromDepartment(created)))
}

func (h *DepartmentHandler) List(c *gin.Context) {
	pageSize, err := optionalIntQuery(c, "page_size")
	if err != nil {
		badRequest(c, err)
		return
	}

	in := department.ListDepartmentsInput{
		PageToken: c.Query("page_token"),
		ParentID:  optionalStringQuery(c, "parent_id"),
	}
	if pageSize != nil {
		in.PageSize = *pageSize
	}
	if s := optionalStringQuery(c, "status"); s != nil {
		st := department.Status(*s)
		in.Status = &st
	}

	result, err := h.svc.ListDepartments(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("departments", dto.FromDepartments(result.Departments), ListMeta{
		Count:         len(result.Departments),
		NextPageToken: result.NextPageToken,
	}))
}

func (h *DepartmentHandler) Get(c *gin.Context) {
	found, err := h.svc.GetDepartment(c.Request.Context(), department.GetDepartmentInput{ID: c.Param("id")})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("department", dto.FromDepartment(found)))
}

func (h *DepartmentHandler) Update(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.svc.UpdateDepartment(c.Request.Context(), req.ToInput(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("department updated", dto.FromDepartment(updated)))
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	if err := h.svc.DeleteDepartment(c.Request.Context(), department.DeleteDepartmentInput{ID: c.Param("id")}); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("department deleted", nil))
}
