// Package businessflow contains the core business logic and use cases for price forecasting workflows
package businessflow

import (
	"errors"
	"fmt"

	"github.com/pricecast/pricecast/features"
	"github.com/pricecast/pricecast/mlmodel"
)

// Business flow error constants
var (
	// Forecast-related errors
	ErrInvalidTimeKey    = errors.New("time_key is not a valid YYYYMMDD date")
	ErrUnknownCompetitor = errors.New("competitor is not configured")

	// Actual price errors
	ErrPredictionNotFound = errors.New("no stored prediction for sku, time_key and competitor")

	// Filter errors
	ErrInvalidPage         = errors.New("page must be at least 1")
	ErrInvalidPageSize     = errors.New("page size must be between 1 and 500")
	ErrTimeKeyRangeInvalid = errors.New("from time_key cannot be after to time_key")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsSKUNotFound(err error) bool {
	return errors.Is(err, features.ErrSKUNotFound)
}

func IsUnparsableDate(err error) bool {
	return errors.Is(err, features.ErrUnparsableDate)
}

func IsModelNotFound(err error) bool {
	return errors.Is(err, mlmodel.ErrModelNotFound)
}

func IsSchemaMismatch(err error) bool {
	return errors.Is(err, mlmodel.ErrSchemaMismatch)
}

func IsInvalidTimeKey(err error) bool {
	return errors.Is(err, ErrInvalidTimeKey)
}

func IsUnknownCompetitor(err error) bool {
	return errors.Is(err, ErrUnknownCompetitor)
}

func IsPredictionNotFound(err error) bool {
	return errors.Is(err, ErrPredictionNotFound)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsTimeKeyRangeInvalid(err error) bool {
	return errors.Is(err, ErrTimeKeyRangeInvalid)
}
