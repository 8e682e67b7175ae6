package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeCouponNotFound    = "COUPON_NOT_FOUND"
	ErrCodeCouponExpired     = "COUPON_EXPIRED"
	ErrCodeCouponNotStarted  = "COUPON_NOT_STARTED"
	ErrCodeCouponExhausted   = "COUPON_EXHAUSTED"
	ErrCodeVendorMismatch    = "COUPON_VENDOR_MISMATCH"
	ErrCodeBelowMinimum      = "BELOW_MINIMUM_ORDER_VALUE"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies with a
// more specific message still match the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a field-specific message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// Common domain errors
var (
	ErrValidation        = NewDomainError(ErrCodeValidation, "Request validation failed")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart must contain at least one shop with at least one item")
	ErrCouponNotFound    = NewDomainError(ErrCodeCouponNotFound, "Coupon code not found")
	ErrCouponExpired     = NewDomainError(ErrCodeCouponExpired, "Coupon has expired")
	ErrCouponNotStarted  = NewDomainError(ErrCodeCouponNotStarted, "Coupon is not valid yet")
	ErrCouponExhausted   = NewDomainError(ErrCodeCouponExhausted, "Coupon usage limit has been reached")
	ErrVendorMismatch    = NewDomainError(ErrCodeVendorMismatch, "Coupon does not apply to any shop in the cart")
	ErrBelowMinimum      = NewDomainError(ErrCodeBelowMinimum, "Order does not meet the coupon's minimum order value")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Order status transition is not allowed")
)

// IsCouponError reports whether err is one of the coupon validation failures.
func IsCouponError(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case ErrCodeCouponNotFound, ErrCodeCouponExpired, ErrCodeCouponNotStarted,
		ErrCodeCouponExhausted, ErrCodeVendorMismatch, ErrCodeBelowMinimum:
		return true
	}
	return false
}
