package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "Invalid signature", http.StatusUnauthorized)
}

// ---- Payment Business Logic (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_001", "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAlreadyTerminal(status string) *AppError {
	return New("PAY_003", fmt.Sprintf("payment already in terminal status %s", status), http.StatusConflict)
}

// Validation returns a PAY_001-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("PAY_001", message, http.StatusBadRequest)
}

// ---- Webhook Events (EVT) ----

func ErrEventStore(err error) *AppError {
	return Wrap("EVT_001", "Webhook event store error", http.StatusInternalServerError, err)
}

func ErrEventNotFound() *AppError {
	return New("EVT_002", "Webhook event not found", http.StatusNotFound)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
