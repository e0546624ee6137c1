package services

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrItemNotFound         = errors.New("order item not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrOrderPaid            = errors.New("order is paid and can no longer be modified")
	ErrDuplicateTableNumber = errors.New("table number already in use")
	ErrTableInUse           = errors.New("table is in use")
	ErrTableHasActiveOrder  = errors.New("table already has an active order")
	ErrTableNotAvailable    = errors.New("table is not available")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrMenuItemUnavailable  = errors.New("menu item is not available")
)

// ValidationError reports malformed input. The attempted mutation has no effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
