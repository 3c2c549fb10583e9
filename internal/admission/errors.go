package admission

import "net/http"

// Stable error codes consumed by HTTP-layer callers.
const (
	CodeInvalidAPIKey    = "INVALID_API_KEY"
	CodeOriginNotAllowed = "ORIGIN_NOT_ALLOWED"
	CodeForbidden        = "FORBIDDEN"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Error is a terminal admission decision: a stable code, the HTTP status
// it maps to, and a caller-safe message.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errInvalidAPIKey() *Error {
	return &Error{Code: CodeInvalidAPIKey, Status: http.StatusUnauthorized, Message: "Invalid API key"}
}

func errOriginNotAllowed() *Error {
	return &Error{Code: CodeOriginNotAllowed, Status: http.StatusForbidden, Message: "Origin not allowed for this API key"}
}

func errInternal(msg string) *Error {
	return &Error{Code: CodeInternalError, Status: http.StatusInternalServerError, Message: msg}
}
