package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/faults"
)

// APIResponse は全エンドポイント共通のレスポンス形式です。
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ListMeta は一覧レスポンスの付加情報です。
type ListMeta struct {
	Count         int    `json:"count"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// statusFor はエラー種別を HTTP ステータスに対応付けます。
func statusFor(kind faults.Kind) int {
	switch kind {
	case faults.KindInvalid:
		return http.StatusBadRequest
	case faults.KindNotFound:
		return http.StatusNotFound
	case faults.KindConflict:
		return http.StatusConflict
	case faults.KindPrecondition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// handleError はドメインエラーをレスポンスに変換します。内部エラーの詳細は返さずログに残します。
func handleError(c *gin.Context, err error) {
	kind := faults.Classify(err)
	code := statusFor(kind)
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(code, errorResponse("internal server error"))
		return
	}
	c.JSON(code, errorResponse(err.Error()))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
}
