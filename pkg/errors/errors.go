package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInternal
	ErrClinicClosed
	ErrOutsideBookingWindow
	ErrInvalidTimeAlignment
	ErrOutsideBusinessHours
	ErrSlotFull
	ErrUnlinkedPatient
	ErrInvalidStateTransition
	ErrUnconfiguredDay
)

// HTTPStatus maps an error code to its HTTP status. Validation outcomes
// are all 4xx; only ErrInternal surfaces as a 500.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrClinicClosed, ErrOutsideBookingWindow,
		ErrInvalidTimeAlignment, ErrOutsideBusinessHours,
		ErrInvalidStateTransition, ErrUnconfiguredDay:
		return http.StatusUnprocessableEntity
	case ErrSlotFull:
		return http.StatusConflict
	case ErrUnlinkedPatient:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func ClinicClosed(date string) *AppError {
	return &AppError{
		Code:    ErrClinicClosed,
		Message: fmt.Sprintf("clinic is closed on %s", date),
	}
}

func OutsideBookingWindow(message string) *AppError {
	return &AppError{
		Code:    ErrOutsideBookingWindow,
		Message: message,
	}
}

func InvalidTimeAlignment(start string) *AppError {
	return &AppError{
		Code:    ErrInvalidTimeAlignment,
		Message: fmt.Sprintf("start time %s is not on a 30-minute block boundary", start),
	}
}

func OutsideBusinessHours(message string) *AppError {
	return &AppError{
		Code:    ErrOutsideBusinessHours,
		Message: message,
	}
}

// SlotFull names the first block that is at or over capacity.
func SlotFull(block string) *AppError {
	return &AppError{
		Code:    ErrSlotFull,
		Message: fmt.Sprintf("time slot starting at %s is already full", block),
	}
}

func UnlinkedPatient() *AppError {
	return &AppError{
		Code:    ErrUnlinkedPatient,
		Message: "account is not linked to a patient record",
	}
}

func InvalidStateTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidStateTransition,
		Message: fmt.Sprintf("cannot transition appointment from %s to %s", from, to),
	}
}

func UnconfiguredDay(date string) *AppError {
	return &AppError{
		Code:    ErrUnconfiguredDay,
		Message: fmt.Sprintf("no schedule configured for %s", date),
	}
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
