// Package apperr defines the domain error kinds and the canonical JSON
// error body returned by every endpoint.
package apperr

import "net/http"

// Error is a domain error carrying its HTTP status, a stable kind string
// for clients, and a human-readable message.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Body is the wire shape of every error response.
type Body struct {
	RequestID *string `json:"request_id"`
	Error     string  `json:"error"`
	Message   string  `json:"message"`
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, "bad_request", message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func InvalidCredentials() *Error {
	return New(http.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect.")
}

func EmailTaken() *Error {
	return New(http.StatusBadRequest, "email_taken", "That email is already registered.")
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, "forbidden", message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, "not_found", message)
}

func RateLimited() *Error {
	return New(http.StatusTooManyRequests, "rate_limited", "Too many requests.")
}

func BadGateway(message string) *Error {
	return New(http.StatusBadGateway, "bad_gateway", message)
}

func Internal() *Error {
	return New(http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred.")
}
