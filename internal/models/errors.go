package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the client and the dev server.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnknown      = "UNKNOWN"
)

// ErrorResponse represents a standardized API error response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error.
type AppError struct {
	Code    string
	Status  int
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

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Status:  http.StatusUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorFromStatus classifies an HTTP response status into an AppError.
// Every status maps to a fixed category so raw server error text never
// reaches the user.
func ErrorFromStatus(status int) *AppError {
	switch status {
	case http.StatusBadRequest:
		return &AppError{Code: CodeValidation, Status: status, Message: "Invalid input"}
	case http.StatusUnauthorized:
		return &AppError{Code: CodeUnauthorized, Status: status, Message: "Unauthorized"}
	case http.StatusForbidden:
		return &AppError{Code: CodeForbidden, Status: status, Message: "Forbidden"}
	case http.StatusNotFound:
		return &AppError{Code: CodeNotFound, Status: status, Message: "Not found"}
	case http.StatusInternalServerError:
		return &AppError{Code: CodeInternal, Status: status, Message: "Internal server error"}
	default:
		return &AppError{Code: CodeUnknown, Status: status, Message: "An unexpected error occurred"}
	}
}

// UserMessage returns the user-facing message category for err. Unclassified
// errors collapse into the generic message rather than leaking error text.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An unexpected error occurred"
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// StatusOf returns the HTTP status carried by err, or 0 when err carries none.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
