package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse is the envelope every handler answers with.
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorDetail tells clients which ledger rule refused a request, so a screen
// can react without parsing the message.
type ErrorDetail struct {
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// Error codes carried in ErrorDetail.Code.
const (
	ErrCodeValidation        = "validation"
	ErrCodeNotFound          = "not_found"
	ErrCodeConflict          = "conflict"
	ErrCodeOrderPaid         = "order_paid"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeUnavailable       = "unavailable"
	ErrCodeInternal          = "internal"
)

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondErrorDetail is RespondError with a machine-readable reason in data.
func RespondErrorDetail(c *gin.Context, code int, err error, detail ErrorDetail) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    detail,
	})
}
