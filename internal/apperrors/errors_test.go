package apperrors_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestNoRateFoundError(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &apperrors.NoRateFoundError{
		Source:    "ECB",
		Frequency: "Daily",
		Currency:  "USD",
		Date:      time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		FloorDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(t, err, apperrors.ErrNoRateFound)

	var nrf *apperrors.NoRateFoundError
	assert.True(t, errors.As(err, &nrf))
	assert.Equal(t, "USD", nrf.Currency)
	assert.Contains(t, err.Error(), "2024-01-10")
	assert.Contains(t, err.Error(), "2024-01-01")
}

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.NewAppError(500, "failed to load quotes", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load quotes: connection refused", err.Error())
	assert.ErrorIs(t, apperrors.NewNotFoundError("x"), apperrors.ErrNotFound)
	assert.ErrorIs(t, apperrors.NewValidationError("x"), apperrors.ErrValidation)
}
