package errmodel

import (
	"errors"
	"net/http"
	"strings"
)

// Category values for compact errors.
const (
	CategoryValidation = "validation"
	CategoryConfig     = "config"
	CategoryUpstream   = "upstream"
	CategoryNetwork    = "network"
	CategoryPolicy     = "policy"
	CategorySystem     = "system"
)

// Error is the compact error payload used across tool, transport and server layers.
// It implements the error interface.
type Error struct {
	Category string         `json:"category"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// New constructs a new compact error.
func New(category, code, message string, ctx map[string]any) *Error {
	ce := &Error{Category: category, Code: code, Message: truncate(message, 512)}
	if len(ctx) > 0 {
		ce.Context = ctx
	}
	return ce
}

// From converts any error into a compact Error. If err is already *Error, it's returned as-is.
func From(err error) *Error {
	var ce *Error
	if err == nil {
		return nil
	}
	if errors.As(err, &ce) {
		return ce
	}
	// Default to system/internal for unknown error types.
	return &Error{Category: CategorySystem, Code: "internal", Message: truncate(err.Error(), 512)}
}

// Convenience constructors.
func Validation(code, message string, ctx map[string]any) *Error {
	return New(CategoryValidation, code, message, ctx)
}

func Policy(code, message string, ctx map[string]any) *Error {
	return New(CategoryPolicy, code, message, ctx)
}

// Config reports a missing or unusable piece of process configuration.
func Config(code, message string, ctx map[string]any) *Error {
	return New(CategoryConfig, code, message, ctx)
}

// Upstream reports a non-success answer from a remote API. The raw response
// body is kept untruncated in Body so callers can pass it through verbatim.
func Upstream(status int, body string) *Error {
	return &Error{
		Category: CategoryUpstream,
		Code:     upstreamCode(status),
		Message:  truncate(body, 512),
		Context:  map[string]any{"status": status, "body": body},
	}
}

// Network reports a failure before a structured response was obtained
// (dial, TLS, reset, malformed body).
func Network(code string, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Category: CategoryNetwork, Code: code, Message: msg}
}

// Body returns the verbatim upstream body carried by an upstream error.
func Body(err error) (string, bool) {
	ce := From(err)
	if ce == nil || ce.Category != CategoryUpstream {
		return "", false
	}
	b, ok := ce.Context["body"].(string)
	return b, ok
}

func upstreamCode(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusUnprocessableEntity:
		return "unprocessable"
	case status >= 500:
		return "server_error"
	default:
		return "bad_status"
	}
}

// truncate trims a string to max characters.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// IsCategory checks if err belongs to a specific category.
func IsCategory(err error, category string) bool {
	ce := From(err)
	return ce != nil && strings.EqualFold(ce.Category, category)
}
