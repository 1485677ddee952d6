package model

import "errors"

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"
	ErrCodeInvalidMetadata  = "INVALID_METADATA"
	ErrCodeBookingNotFound  = "BOOKING_NOT_FOUND"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrInvalidMetadata  = errors.New("webhook event carries no booking id")
	ErrPaymentNotFound  = errors.New("payment not found")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError.
func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
