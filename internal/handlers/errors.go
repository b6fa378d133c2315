package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/dto"
	"github.com/gin-gonic/gin"
)

// statusOf maps a service error to its HTTP status.
func statusOf(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Code
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrUnknownCurrency),
		errors.Is(err, apperrors.ErrUnsupportedSource),
		errors.Is(err, apperrors.ErrUnsupportedFrequency):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNoRateFound), errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its status. Internal errors are logged and their details hidden.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		logger.Warn(msg, slog.Int("status", status), slog.String("error", err.Error()))
	}

	body := err.Error()
	if status == http.StatusInternalServerError {
		body = "Internal server error"
	}
	c.JSON(status, dto.ErrorResponse{Error: body})
}
