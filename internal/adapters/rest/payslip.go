package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
)

// PayslipRenderer は給与明細を PDF に出力します。
type PayslipRenderer interface {
	RenderPayslip(p *payslip.Payslip) ([]byte, error)
}

// PayslipHandler は給与明細の HTTP ハンドラです。
type PayslipHandler struct {
	svc payslip.UseCase
	pdf PayslipRenderer
}

// NewPayslipHandler は PayslipHandler を生成します。pdf が nil の場合は PDF 出力を提供しません。
func NewPayslipHandler(svc payslip.UseCase, pdf PayslipRenderer) *PayslipHandler {
	return &PayslipHandler{svc: svc, pdf: pdf}
}

type generatePayslipRequest struct {
	RecordID string `json:"record_id" binding:"required"`
}

// Generate は給与レコードから明細を作成します。
func (h *PayslipHandler) Generate(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req generatePayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	slip, err := h.svc.Generate(c.Request.Context(), req.RecordID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("payslip generated", dto.FromPayslip(slip)))
}

// List は明細一覧を返します。
func (h *PayslipHandler) List(c *gin.Context) {
	employeeID, ok := scopeEmployee(c, c.Query("employee_id"))
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), employeeID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("payslips", dto.FromPayslips(list), ListMeta{Count: len(list)}))
}

// Get は明細を取得します。
func (h *PayslipHandler) Get(c *gin.Context) {
	slip, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, successResponse("payslip", dto.FromPayslip(slip)))
}

// MarkSent は明細を送付済みにします。
func (h *PayslipHandler) MarkSent(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	slip, err := h.svc.MarkSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payslip sent", dto.FromPayslip(slip)))
}

// Acknowledge は本人の受領確認を記録します。
func (h *PayslipHandler) Acknowledge(c *gin.Context) {
	current, ok := h.load(c)
	if !ok {
		return
	}

	slip, err := h.svc.Acknowledge(c.Request.Context(), current.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payslip acknowledged", dto.FromPayslip(slip)))
}

// PDF は明細を PDF で返します。
func (h *PayslipHandler) PDF(c *gin.Context) {
	if h.pdf == nil {
		c.JSON(http.StatusNotImplemented, errorResponse("pdf export is not configured"))
		return
	}

	slip, ok := h.load(c)
	if !ok {
		return
	}

	data, err := h.pdf.RenderPayslip(slip)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+slip.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *PayslipHandler) load(c *gin.Context) (*payslip.Payslip, bool) {
	slip, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	if !authorizeEmployee(c, slip.EmployeeID) {
		return nil, false
	}
	return slip, true
}
