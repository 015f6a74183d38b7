// Package errors provides the error taxonomy for LexDesk.
//
// Every failure on the remote path is reduced to a Kind so the dispatcher
// can decide between fallback and a terminal error without string matching.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ============================================================
// Error Kinds
// ============================================================

// Kind classifies an error for fallback decisions.
type Kind int

const (
	// KindNetworkUnreachable covers DNS failures, refused connections and resets.
	KindNetworkUnreachable Kind = iota

	// KindTimeout is a request that did not complete within its deadline.
	KindTimeout

	// KindServerError is a 5xx answer from the remote service.
	KindServerError

	// KindClientError is a 4xx answer from the remote service.
	KindClientError

	// KindInvalidResponse is a 2xx answer that could not be mapped to a result.
	KindInvalidResponse

	// KindLocalGenerationFailure is a failure of the local generator. Terminal.
	KindLocalGenerationFailure

	// KindCanceled means the caller abandoned the operation.
	KindCanceled

	// KindInvalidInput is a request rejected before any executor ran.
	KindInvalidInput

	// KindInternal covers local infrastructure such as the journal.
	KindInternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindTimeout:
		return "timeout"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	case KindInvalidResponse:
		return "invalid_response"
	case KindLocalGenerationFailure:
		return "local_generation_failure"
	case KindCanceled:
		return "canceled"
	case KindInvalidInput:
		return "invalid_input"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ============================================================
// AppError - Main Error Type
// ============================================================

// AppError is the main error type for all LexDesk errors.
type AppError struct {
	// Code is a unique error code for programmatic handling
	Code string

	// Message is a user-friendly error message
	Message string

	// Kind determines how the error is handled
	Kind Kind

	// Inner is the underlying error
	Inner error

	// StatusCode is the HTTP status of a remote answer, 0 otherwise
	StatusCode int

	// Suggestions are recovery suggestions for the user
	Suggestions []string

	// Context is additional debugging information
	Context map[string]interface{}
}

// Error returns the error message.
func (e *AppError) Error() string {
	var sb strings.Builder

	if e.Code != "" {
		sb.WriteString("[")
		sb.WriteString(e.Code)
		sb.WriteString("] ")
	}

	sb.WriteString(e.Message)

	if e.Inner != nil {
		innerMsg := e.Inner.Error()
		if innerMsg != "" && innerMsg != e.Message {
			sb.WriteString(": ")
			sb.WriteString(innerMsg)
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Inner
}

// Is matches another AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// AsAppError returns the outermost AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ============================================================
// Error Constructors
// ============================================================

// New creates a new AppError.
func New(code, message string, kind Kind) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// Wrap wraps an existing error with context.
func Wrap(err error, code, message string, kind Kind) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:        code,
			Message:     message,
			Kind:        kind,
			Inner:       appErr,
			StatusCode:  appErr.StatusCode,
			Suggestions: appErr.Suggestions,
			Context:     appErr.Context,
		}
	}

	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
		Inner:   err,
	}
}

// LocalFailure creates a terminal local generation error.
func LocalFailure(message string, inner error) *AppError {
	return &AppError{
		Code:    CodeLocalGenerationFailed,
		Message: message,
		Kind:    KindLocalGenerationFailure,
		Inner:   inner,
		Suggestions: []string{
			"Retry the operation",
			"Report the input that triggered the failure",
		},
	}
}

// InvalidInput creates an input validation error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Kind:    KindInvalidInput,
	}
}

// ============================================================
// Builder Pattern for Fluent Error Construction
// ============================================================

// Builder provides fluent error construction.
type Builder struct {
	err *AppError
}

// NewBuilder starts building a new error.
func NewBuilder(code, message string) *Builder {
	return &Builder{
		err: &AppError{
			Code:    code,
			Message: message,
			Kind:    KindNetworkUnreachable,
			Context: make(map[string]interface{}),
		},
	}
}

// Kind sets the error kind.
func (b *Builder) Kind(kind Kind) *Builder {
	b.err.Kind = kind
	return b
}

// Status records the HTTP status and derives the kind from it.
func (b *Builder) Status(code int) *Builder {
	b.err.StatusCode = code
	b.err.Kind = kindForStatus(code)
	return b
}

// Wrap sets the underlying error.
func (b *Builder) Wrap(err error) *Builder {
	b.err.Inner = err
	return b
}

// WithSuggestion adds a recovery suggestion.
func (b *Builder) WithSuggestion(suggestion string) *Builder {
	b.err.Suggestions = append(b.err.Suggestions, suggestion)
	return b
}

// WithContext adds context information.
func (b *Builder) WithContext(key string, value interface{}) *Builder {
	b.err.Context[key] = value
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *AppError {
	return b.err
}

// ============================================================
// Error Codes
// ============================================================

const (
	// Remote service errors
	CodeRemoteUnavailable   = "REMOTE_UNAVAILABLE"
	CodeRemoteTimeout       = "REMOTE_TIMEOUT"
	CodeRemoteServerError   = "REMOTE_SERVER_ERROR"
	CodeRemoteClientError   = "REMOTE_CLIENT_ERROR"
	CodeRemoteInvalidAnswer = "REMOTE_INVALID_RESPONSE"
	CodeRemoteNotConfigured = "REMOTE_NOT_CONFIGURED"

	// Local generation errors
	CodeLocalGenerationFailed = "LOCAL_GENERATION_FAILED"

	// Journal errors
	CodeJournalWriteFailed = "JOURNAL_WRITE_FAILED"
	CodeJournalReadFailed  = "JOURNAL_READ_FAILED"

	// Config errors
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeConfigNotFound = "CONFIG_NOT_FOUND"

	// Validation errors
	CodeInvalidInput = "INVALID_INPUT"
	CodeCanceled     = "CANCELED"
)

// ============================================================
// Classification
// ============================================================

// FromStatus builds the error for a non-2xx remote answer.
func FromStatus(statusCode int, body string) *AppError {
	kind := kindForStatus(statusCode)
	code := CodeRemoteServerError
	if kind == KindClientError {
		code = CodeRemoteClientError
	}

	b := NewBuilder(code, fmt.Sprintf("remote returned status %d", statusCode)).Status(statusCode)
	if body != "" {
		if len(body) > 512 {
			body = body[:512]
		}
		b = b.WithContext("body", body)
	}
	return b.Build()
}

func kindForStatus(code int) Kind {
	switch {
	case code >= 400 && code < 500:
		return KindClientError
	case code >= 500:
		return KindServerError
	default:
		return KindInvalidResponse
	}
}

// Classify reduces any error to a Kind.
// Unknown errors count as network failures: the remote could not be used.
func Classify(err error) Kind {
	if err == nil {
		return KindNetworkUnreachable
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}

	return KindNetworkUnreachable
}

// FromTransport wraps an http.Client.Do failure.
func FromTransport(err error) *AppError {
	kind := Classify(err)
	switch kind {
	case KindTimeout:
		return Wrap(err, CodeRemoteTimeout, "remote request timed out", KindTimeout)
	case KindCanceled:
		return Wrap(err, CodeCanceled, "request canceled", KindCanceled)
	default:
		return Wrap(err, CodeRemoteUnavailable, "remote service unreachable", KindNetworkUnreachable)
	}
}

// IsFallbackable reports whether an error from the remote executor should
// fall through to the local executor. Only cancellation does not.
func IsFallbackable(err error) bool {
	return err != nil && Classify(err) != KindCanceled
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && Classify(err) == kind
}

// StatusCode extracts the remote HTTP status from an error, 0 if none.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

// HTTPStatus maps an error to the status the API layer answers with.
func HTTPStatus(err error) int {
	switch Classify(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindCanceled:
		return 499
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetSuggestions returns recovery suggestions for an error.
func GetSuggestions(err error) []string {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Suggestions
	}

	return nil
}

// FormatUserMessage formats a user-friendly error message with suggestions.
func FormatUserMessage(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	var appErr *AppError
	if errors.As(err, &appErr) {
		sb.WriteString(appErr.Message)

		if len(appErr.Suggestions) > 0 {
			sb.WriteString("\n\nSuggestions:")
			for _, s := range appErr.Suggestions {
				sb.WriteString("\n  - ")
				sb.WriteString(s)
			}
		}

		return sb.String()
	}

	return err.Error()
}
