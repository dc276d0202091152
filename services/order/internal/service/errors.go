package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrValidation  = errors.New("validation")  // 400
	ErrForbidden   = errors.New("forbidden")   // 403
	ErrNotFound    = errors.New("not found")   // 404
	ErrConflict    = errors.New("conflict")    // 409
	ErrUnavailable = errors.New("unavailable") // 503
)

var (
	ErrProductNotFound      = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrProductUnavailable   = fmt.Errorf("%w: product unavailable", ErrConflict)
	ErrInsufficientStock    = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrTotalMismatch        = fmt.Errorf("%w: grand total mismatch", ErrValidation)
	ErrInvalidStatusValue   = fmt.Errorf("%w: invalid status value", ErrValidation)
	ErrOrderNotFound        = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrAlreadyAssigned      = fmt.Errorf("%w: order already assigned", ErrConflict)
	ErrNotAssigned          = fmt.Errorf("%w: order not assigned", ErrConflict)
	ErrDealerNotFound       = fmt.Errorf("%w: dealer not found", ErrNotFound)
	ErrAddressNotFound      = fmt.Errorf("%w: address not found", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification not found", ErrNotFound)
)

// LineError ties a stock failure to the offending request line.
type LineError struct {
	ProductID uuid.UUID
	Index     int
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (product %s): %v", e.Index, e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// TotalMismatchError carries the server computed total so the client can
// correct its request.
type TotalMismatchError struct {
	Expected decimal.Decimal
	Declared decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %s, got %s", ErrTotalMismatch, e.Expected.StringFixed(2), e.Declared.StringFixed(2))
}

func (e *TotalMismatchError) Unwrap() error { return ErrTotalMismatch }

func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
