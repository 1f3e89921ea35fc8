// Package apperror defines the error taxonomy the HTTP layer maps onto
// status codes. Repositories and domain guards return these; everything
// else bubbles up as an internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindInvalidQuantity   Kind = "invalid_quantity"
	KindInsufficientStock Kind = "insufficient_stock"
	KindInvalidState      Kind = "invalid_state"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidQuantity(format string, args ...any) error {
	return &Error{Kind: KindInvalidQuantity, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStock names the product and the shortfall so the caller's
// message is actionable without a second lookup.
func InsufficientStock(product string, requested, available int) error {
	return &Error{
		Kind: KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %q: requested %d, available %d, short %d",
			product, requested, available, requested-available),
	}
}

// KindOf classifies err; wrapped errors are unwrapped. Unclassified errors
// report an empty Kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInvalidQuantity:
		return http.StatusBadRequest
	case KindInsufficientStock, KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
