package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/urban_spark/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Step  int    `json:"step,omitempty"`
	Field string `json:"field,omitempty"`
	Retry bool   `json:"retry,omitempty"`
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrPackageNotInService),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrServiceNotFound),
		errors.Is(err, domain.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDraftCompleted),
		errors.Is(err, domain.ErrCartLocked),
		errors.Is(err, domain.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are not
// echoed to the client.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Step = int(ve.Step)
		resp.Field = ve.Field
		resp.Error = ve.Message
	}

	switch {
	case code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout,
		errors.Is(err, domain.ErrSessionBusy):
		resp.Retry = true
	case code == http.StatusInternalServerError:
		resp.Error = "internal server error"
	}

	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(code, resp)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
