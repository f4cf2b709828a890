package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
)

// EmployeeHandler は社員ディレクトリの HTTP ハンドラです。
type EmployeeHandler struct {
	svc employee.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// Create は社員を登録します。旧形式（manager / department / 文字列の salary）も受け付けます。
func (h *EmployeeHandler) Create(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}

	in, err := employee.DecodeLegacy(body)
	if err != nil {
		handleError(c, err)
		return
	}

	created, err := h.svc.CreateEmployee(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("employee created", dto.FromEmployee(created)))
}

// List は社員一覧をページングして返します。
func (h *EmployeeHandler) List(c *gin.Context) {
	pageSize, err := optionalIntQuery(c, "page_size")
	if err != nil {
		badRequest(c, err)
		return
	}

	in := employee.ListEmployeesInput{
		DepartmentID: c.Query("department_id"),
		ManagerID:    c.Query("manager_id"),
		PageToken:    c.Query("page_token"),
	}
	if pageSize != nil {
		in.PageSize = *pageSize
	}
	if s := optionalStringQuery(c, "status"); s != nil {
		st := employee.Status(*s)
		in.Status = &st
	}

	result, err := h.svc.ListEmployees(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("employees", dto.FromEmployees(result.Employees), ListMeta{
		Count:         len(result.Employees),
		NextPageToken: result.NextPageToken,
	}))
}

// Get は社員を取得します。
func (h *EmployeeHandler) Get(c *gin.Context) {
	found, err := h.svc.GetEmployee(c.Request.Context(), employee.GetEmployeeInput{ID: c.Param("id")})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("employee", dto.FromEmployee(found)))
}

// Update は社員情報を部分更新します。
func (h *EmployeeHandler) Update(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in, err := req.ToInput(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	updated, err := h.svc.UpdateEmployee(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("employee updated", dto.FromEmployee(updated)))
}

// Delete は社員を削除します。
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	if err := h.svc.DeleteEmployee(c.Request.Context(), employee.DeleteEmployeeInput{ID: c.Param("id")}); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("employee deleted", nil))
}
