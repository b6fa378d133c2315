package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUnknownCurrency indicates a currency code outside the supported set.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrUnsupportedSource indicates that no provider is registered for a rate source.
var ErrUnsupportedSource = errors.New("unsupported source")

// ErrUnsupportedFrequency indicates that a provider does not publish at the requested cadence.
var ErrUnsupportedFrequency = errors.New("unsupported frequency")

// ErrNoRateFound indicates that no rate exists for a query even after backfilling.
var ErrNoRateFound = errors.New("no rate found")

// ErrFetchFailed indicates that the remote historical rate source returned an error.
var ErrFetchFailed = errors.New("fetch failed")

// ErrPersistenceFailed indicates that the durable quote store returned an error.
var ErrPersistenceFailed = errors.New("persistence failed")

// ErrDataConsistency indicates a second, different observation for an already cached quote.
var ErrDataConsistency = errors.New("data consistency fault")

// ErrTimeout indicates that a rate query did not finish within its deadline.
var ErrTimeout = errors.New("timeout")

// ErrInvalidRegistry indicates a provider or peg configuration that cannot be used.
var ErrInvalidRegistry = errors.New("invalid registry")

// NoRateFoundError carries the diagnostics of an exhausted lookup.
type NoRateFoundError struct {
	Source    string
	Frequency string
	Currency  string
	Date      time.Time
	FloorDate time.Time
}

func (e *NoRateFoundError) Error() string {
	return fmt.Sprintf("no %s %s rate found for %s on %s (earliest available date: %s)",
		e.Source, e.Frequency, e.Currency, e.Date.Format(time.DateOnly), e.FloorDate.Format(time.DateOnly))
}

// Unwrap lets errors.Is match ErrNoRateFound.
func (e *NoRateFoundError) Unwrap() error {
	return ErrNoRateFound
}

// AppError is an error with an HTTP-like status code attached.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an error matching ErrNotFound.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

// NewValidationError returns an error matching ErrValidation.
func NewValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}
