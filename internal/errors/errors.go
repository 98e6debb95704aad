// Package errors provides custom error types for the gastobot engine.
// All service-layer errors should use AppError so the bot layer can turn
// handled rejections into deterministic user replies without leaking
// internal details. Messages are user-facing (Spanish); errors with a
// status code below 500 are handled rejections, 500 and above roll back
// the processing transaction.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// user-facing message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Handled reports whether the error is a soft rejection that should be
// answered with a user notice instead of rolling back the transaction.
func (e *AppError) Handled() bool { return e.StatusCode < http.StatusInternalServerError }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Intake errors.
var (
	ErrDuplicateMessage = &AppError{Code: "DUPLICATE_MESSAGE", Message: "Mensaje duplicado", StatusCode: http.StatusConflict}
	ErrRateLimited      = &AppError{Code: "RATE_LIMITED", Message: "Demasiados mensajes. Espera un momento.", StatusCode: http.StatusTooManyRequests}
	ErrBlockedUser      = &AppError{Code: "BLOCKED_USER", Message: "Tu acceso está bloqueado. Contacta soporte.", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Entrada inválida", StatusCode: http.StatusBadRequest}
	ErrParse          = &AppError{Code: "PARSE_ERROR", Message: "No pude interpretar el mensaje. Escribe 'ayuda' para ver ejemplos.", StatusCode: http.StatusBadRequest}
	ErrAdminOnly      = &AppError{Code: "ADMIN_ONLY", Message: "Solo administradores pueden usar este comando.", StatusCode: http.StatusForbidden}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Ocurrió un error procesando tu mensaje. Intenta nuevamente.", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "Usuario no encontrado.", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "No se encontró la categoría.", StatusCode: http.StatusNotFound}
	ErrParentNotFound      = &AppError{Code: "PARENT_NOT_FOUND", Message: "No se encontró la categoría padre.", StatusCode: http.StatusNotFound}
	ErrCategoryImmutable   = &AppError{Code: "CATEGORY_IMMUTABLE", Message: "No puedes modificar categorías del sistema.", StatusCode: http.StatusForbidden}
	ErrDuplicateName       = &AppError{Code: "DUPLICATE_NAME", Message: "Ya existe una categoría con ese nombre.", StatusCode: http.StatusConflict}
	ErrCodeInUse           = &AppError{Code: "CODE_IN_USE", Message: "El código ya está en uso.", StatusCode: http.StatusConflict}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "Una categoría no puede ser su propia padre.", StatusCode: http.StatusBadRequest}
	ErrCycleDetected       = &AppError{Code: "CYCLE_DETECTED", Message: "Se detectó un ciclo en la jerarquía de categorías.", StatusCode: http.StatusConflict}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Esta categoría tiene subcategorías. Elimínalas o muévelas primero.", StatusCode: http.StatusConflict}
	ErrCategoryHasExpenses = &AppError{Code: "CATEGORY_HAS_EXPENSES", Message: "No puedes eliminar una categoría con gastos asociados.", StatusCode: http.StatusConflict}
)

// Expense errors.
var (
	ErrExpenseNotFound  = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "No se encontró el gasto solicitado.", StatusCode: http.StatusNotFound}
	ErrUnknownAction    = &AppError{Code: "UNKNOWN_ACTION", Message: "Acción no reconocida.", StatusCode: http.StatusBadRequest}
	ErrSearchTermLength = &AppError{Code: "SEARCH_TERM_TOO_SHORT", Message: "El término de búsqueda debe tener al menos 2 caracteres.", StatusCode: http.StatusBadRequest}
)
