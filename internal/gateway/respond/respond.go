// Package respond writes the JSON envelope shared by every endpoint.
package respond

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database"
)

const (
	CodeRateLimited        = "RATE_LIMITED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Envelope struct {
	Success    bool                 `json:"success"`
	Data       any                  `json:"data,omitempty"`
	Pagination *database.Pagination `json:"pagination,omitempty"`
	Message    string               `json:"message,omitempty"`
	Error      *ErrorBody           `json:"error,omitempty"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

func Paginated(c *gin.Context, data any, page database.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &page})
}

// Fail maps err onto its status code. Internal details are logged, never sent.
func Fail(c *gin.Context, err error) {
	appErr := apperr.As(err)
	if appErr.Kind == apperr.KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	Abort(c, appErr.Kind.HTTPStatus(), appErr.Code, appErr.Message)
}

func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

func BadRequest(c *gin.Context, message string) {
	Abort(c, http.StatusBadRequest, apperr.CodeValidation, message)
}
