package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uvecheck-mcp-server/internal/domain"
	"github.com/uvecheck-mcp-server/internal/middleware"
)

// ErrorResponse wraps the error body
type ErrorResponse struct {
	Error *domain.MCPError `json:"error"`
}

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch domain.ErrorCode(err) {
	case domain.ErrUnsupported:
		return http.StatusBadRequest
	case domain.ErrValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, err error) {
	code := domain.ErrorCode(err)
	message := err.Error()
	details := ""

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		message = validationErr.Message
		details = validationErr.Field
	}
	if status >= http.StatusInternalServerError {
		message = "internal server error"
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: domain.NewMCPError(code, message, details, c.GetString(middleware.CorrelationIDKey)),
	})
}

func respondInvalidBody(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: domain.NewMCPError(domain.ErrInvalidInput, "invalid request body", err.Error(), c.GetString(middleware.CorrelationIDKey)),
	})
}
