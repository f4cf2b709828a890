package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegisterRenderer は月次の給与台帳をファイルに出力します。
type RegisterRenderer interface {
	RenderRegister(month, year int, records []*payroll.Record) ([]byte, error)
}

// PayrollHandler は給与計算・期間・設定の HTTP ハンドラです。
type PayrollHandler struct {
	svc      payroll.UseCase
	register RegisterRenderer
}

// NewPayrollHandler は PayrollHandler を生成します。register が nil の場合は台帳出力を提供しません。
func NewPayrollHandler(svc payroll.UseCase, register RegisterRenderer) *PayrollHandler {
	return &PayrollHandler{svc: svc, register: register}
}

type calculateTaxRequest struct {
	Gross decimal.Decimal `json:"gross"`
}

type calculateOvertimeRequest struct {
	Logs       []dto.TimeLog   `json:"logs"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// CalculateTax は総支給額に対する税額を返します。
func (h *PayrollHandler) CalculateTax(c *gin.Context) {
	var req calculateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tax, err := h.svc.CalculateTax(c.Request.Context(), req.Gross)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("tax", gin.H{"gross": req.Gross, "tax": tax}))
}

// CalculateOvertime は残業種別の記録から残業代を返します。
func (h *PayrollHandler) CalculateOvertime(c *gin.Context) {
	var req calculateOvertimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	logs := make([]timelog.TimeLog, 0, len(req.Logs))
	for _, l := range req.Logs {
		logs = append(logs, l.ToDomain())
	}

	amount, err := h.svc.CalculateOvertime(c.Request.Context(), logs, req.HourlyRate)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("overtime", gin.H{"overtime": amount}))
}

// GeneratePayroll は社員・月の給与レコードを作成または再計算します。
func (h *PayrollHandler) GeneratePayroll(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req dto.GeneratePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.svc.GeneratePayroll(c.Request.Context(), req.ToInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll generated", dto.FromRecord(record)))
}

// ListRecords は給与レコード一覧を返します。
func (h *PayrollHandler) ListRecords(c *gin.Context) {
	filter, ok := h.recordFilter(c)
	if !ok {
		return
	}

	records, err := h.svc.ListRecords(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("payroll records", dto.FromRecords(records), ListMeta{Count: len(records)}))
}

func (h *PayrollHandler) recordFilter(c *gin.Context) (payroll.RecordFilter, bool) {
	month, err := optionalIntQuery(c, "month")
	if err != nil {
		badRequest(c, err)
		return payroll.RecordFilter{}, false
	}
	year, err := optionalIntQuery(c, "year")
	if err != nil {
		badRequest(c, err)
		return payroll.RecordFilter{}, false
	}

	employeeID, ok := scopeEmployee(c, c.Query("employee_id"))
	if !ok {
		return payroll.RecordFilter{}, false
	}
	filter := payroll.RecordFilter{EmployeeID: employeeID, Month: month, Year: year}
	if s := optionalStringQuery(c, "status"); s != nil {
		st := payroll.Status(*s)
		filter.Status = &st
	}
	return filter, true
}

// GetRecord は給与レコードを取得します。
func (h *PayrollHandler) GetRecord(c *gin.Context) {
	record, err := h.svc.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !authorizeEmployee(c, record.EmployeeID) {
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll record", dto.FromRecord(record)))
}

// UpdateRecord はステータス・備考・賞与を更新します。
func (h *PayrollHandler) UpdateRecord(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req dto.UpdatePayrollRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.svc.UpdateRecord(c.Request.Context(), req.ToInput(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll record updated", dto.FromRecord(record)))
}

// DeleteRecord は給与レコードを削除します。
func (h *PayrollHandler) DeleteRecord(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	if err := h.svc.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll record deleted", nil))
}

// ProcessPeriod は月次の給与期間を締めます。
func (h *PayrollHandler) ProcessPeriod(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req dto.ProcessPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ProcessedBy == "" {
		req.ProcessedBy = actingEmployee(c)
	}

	period, err := h.svc.ProcessPeriod(c.Request.Context(), payroll.ProcessPeriodInput{
		Month:       req.Month,
		Year:        req.Year,
		ProcessedBy: req.ProcessedBy,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll period processed", dto.FromPeriod(period)))
}

// ListPeriods は給与期間一覧を返します。
func (h *PayrollHandler) ListPeriods(c *gin.Context) {
	year, err := optionalIntQuery(c, "year")
	if err != nil {
		badRequest(c, err)
		return
	}

	periods, err := h.svc.ListPeriods(c.Request.Context(), year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("payroll periods", dto.FromPeriods(periods), ListMeta{Count: len(periods)}))
}

// GetPeriod は年・月を指定して給与期間を取得します。
func (h *PayrollHandler) GetPeriod(c *gin.Context) {
	month, year, ok := monthYearParams(c)
	if !ok {
		return
	}

	period, err := h.svc.GetPeriod(c.Request.Context(), month, year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll period", dto.FromPeriod(period)))
}

// ExportRegister は月次の給与台帳を XLSX で返します。
func (h *PayrollHandler) ExportRegister(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if h.register == nil {
		c.JSON(http.StatusNotImplemented, errorResponse("register export is not configured"))
		return
	}

	month, year, ok := monthYearParams(c)
	if !ok {
		return
	}

	records, err := h.svc.ListRecords(c.Request.Context(), payroll.RecordFilter{Month: &month, Year: &year})
	if err != nil {
		handleError(c, err)
		return
	}

	data, err := h.register.RenderRegister(month, year, records)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("payroll-%04d-%02d.xlsx", year, month)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetSettings は給与設定を返します。
func (h *PayrollHandler) GetSettings(c *gin.Context) {
	settings, err := h.svc.GetSettings(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll settings", dto.FromSettings(settings)))
}

// UpdateSettings は給与設定を部分更新します。
func (h *PayrollHandler) UpdateSettings(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	settings, err := h.svc.UpdateSettings(c.Request.Context(), req.ToPatch())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("payroll settings updated", dto.FromSettings(settings)))
}

func monthYearParams(c *gin.Context) (int, int, bool) {
	year, err := intParam(c, "year")
	if err != nil {
		badRequest(c, err)
		return 0, 0, false
	}
	month, err := intParam(c, "month")
	if err != nil {
		badRequest(c, err)
		return 0, 0, false
	}
	return month, year, true
}
