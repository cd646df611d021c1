package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = NewAppError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrUnauthorized         = NewAppError("UNAUTHORIZED", "Unauthorized", http.StatusUnauthorized)
	ErrForbidden            = NewAppError("FORBIDDEN", "Access denied", http.StatusForbidden)
	ErrBadRequest           = NewAppError("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrInternalServer       = NewAppError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict             = NewAppError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrValidation           = NewAppError("VALIDATION_ERROR", "Validation failed", http.StatusBadRequest)
	ErrDatabase             = NewAppError("DATABASE_ERROR", "Database error", http.StatusInternalServerError)
	ErrInvalidCredentials   = NewAppError("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)
	ErrEmailAlreadyExists   = NewAppError("EMAIL_ALREADY_EXISTS", "Email already registered", http.StatusConflict)
	ErrUsernameTaken        = NewAppError("USERNAME_TAKEN", "Username already taken", http.StatusConflict)
	ErrUserNotFound         = NewAppError("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrAccountNotFound      = NewAppError("ACCOUNT_NOT_FOUND", "Account not found", http.StatusNotFound)
	ErrAccountExists        = NewAppError("ACCOUNT_ALREADY_EXISTS", "User already has an account", http.StatusConflict)
	ErrTransactionNotFound  = NewAppError("TRANSACTION_NOT_FOUND", "Transaction not found", http.StatusNotFound)
	ErrBudgetNotFound       = NewAppError("BUDGET_NOT_FOUND", "Budget not found", http.StatusNotFound)
	ErrPotNotFound          = NewAppError("POT_NOT_FOUND", "Pot not found", http.StatusNotFound)
	ErrCategoryNotFound     = NewAppError("CATEGORY_NOT_FOUND", "Category not found", http.StatusNotFound)
	ErrDuplicateTransaction = NewAppError("DUPLICATE_TRANSACTION", "Transaction already exists", http.StatusBadRequest)
	ErrDuplicateName        = NewAppError("DUPLICATE_NAME", "Name already in use", http.StatusBadRequest)
	ErrPotFloorViolation    = NewAppError("POT_FLOOR_VIOLATION", "Cannot reduce saved amount below zero", http.StatusBadRequest)
	ErrPotCeilingViolation  = NewAppError("POT_CEILING_VIOLATION", "Cannot exceed target amount", http.StatusBadRequest)
	ErrIdempotencyConflict  = NewAppError("IDEMPOTENCY_CONFLICT", "Request with this idempotency key was already received", http.StatusConflict)
	ErrRateLimited          = NewAppError("RATE_LIMIT_EXCEEDED", "Too many requests, try again in a few minutes", http.StatusTooManyRequests)
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	clone.Details = make(map[string]interface{}, len(details))
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

// WithMessage keeps the code and status but replaces the human readable text.
func (e *AppError) WithMessage(message string) *AppError {
	clone := e.clone()
	clone.Message = message
	return clone
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func WrapError(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	return &clone
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsNotFound matches every *_NOT_FOUND error as well as a bare gorm miss.
func IsNotFound(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	appErr, ok := AsAppError(err)
	return ok && appErr.StatusCode == http.StatusNotFound
}

func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound.WithError(err)
	}

	if errors.Is(err, context.Canceled) {
		return WrapError(err, "REQUEST_CANCELED", "Request canceled by client", http.StatusRequestTimeout)
	}

	return WrapError(err, "UNKNOWN_ERROR", "Unknown error", http.StatusInternalServerError)
}

func NewValidationError(field, message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

func NewDatabaseError(err error) *AppError {
	return WrapError(err, "DATABASE_ERROR", "Failed to run database operation", http.StatusInternalServerError)
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Details: map[string]interface{}{
			"resource": resource,
		},
	}
}

func NewDuplicateNameError(resource, name string) *AppError {
	return ErrDuplicateName.
		WithMessage(fmt.Sprintf("%s already exists", resource)).
		WithDetails(map[string]interface{}{
			"resource": strings.ToLower(resource),
			"name":     name,
		})
}

func ParseValidationErrors(err error) *AppError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ErrBadRequest.WithError(err)
	}

	fieldErrors := make([]map[string]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, map[string]string{
			"field":   toSnakeCase(fieldErr.Field()),
			"message": describeValidationError(fieldErr),
		})
	}

	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Invalid fields",
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"fields": fieldErrors,
		},
	}
}

func toSnakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describeValidationError(fe validator.FieldError) string {
	field := toSnakeCase(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "invalid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "ne":
		return fmt.Sprintf("%s must not be %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", field)
	default:
		return fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
	}
}
