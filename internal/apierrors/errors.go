// Package apierrors classifies failed Gitee API responses into a closed set
// of error kinds that callers can branch on.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is the classification of a failed provider response
type Kind int

const (
	// KindGeneric covers every status without a dedicated kind
	KindGeneric Kind = iota
	// KindValidation indicates the provider rejected the request body (400)
	KindValidation
	// KindAuthentication indicates missing or invalid credentials (401)
	KindAuthentication
	// KindPermission indicates insufficient rights (403)
	KindPermission
	// KindNotFound indicates the resource does not exist (404)
	KindNotFound
	// KindConflict indicates the resource already exists or is in a conflicting state (409)
	KindConflict
	// KindRateLimit indicates the caller exceeded its request quota (429)
	KindRateLimit
)

// DefaultMessage is used when the response body carries no message
const DefaultMessage = "Gitee API request failed"

// DefaultRateLimitWindow is the fallback reset window for rate limited
// responses that do not say when the quota resets. Gitee does not document
// this value.
const DefaultRateLimitWindow = 60 * time.Second

var kindNames = map[Kind]string{
	KindGeneric:        "generic",
	KindValidation:     "validation",
	KindAuthentication: "authentication",
	KindPermission:     "permission",
	KindNotFound:       "not_found",
	KindConflict:       "conflict",
	KindRateLimit:      "rate_limit",
}

// String returns the snake_case name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText lets kinds appear by name in JSON payloads
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a classified provider failure
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status the classification was derived from
	Status int
	// Context holds the raw response body, only for KindValidation
	Context interface{}
	// ResetAt is only set for KindRateLimit
	ResetAt *time.Time
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error of the same kind, so sentinel comparisons like
// errors.Is(err, &Error{Kind: KindNotFound}) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Classify maps a status code and parsed response body to an *Error.
func Classify(status int, body interface{}) *Error {
	return ClassifyAt(status, body, time.Now())
}

// ClassifyAt is Classify with an explicit clock. The result depends only on
// its inputs.
func ClassifyAt(status int, body interface{}, now time.Time) *Error {
	e := &Error{
		Kind:    kindForStatus(status),
		Message: messageFrom(body),
		Status:  status,
	}

	switch e.Kind {
	case KindValidation:
		e.Context = body
	case KindRateLimit:
		reset := now.Add(DefaultRateLimitWindow)
		e.ResetAt = &reset
	}

	return e
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindGeneric
	}
}

func messageFrom(body interface{}) string {
	m, ok := body.(map[string]interface{})
	if !ok {
		return DefaultMessage
	}

	msg, _ := m["message"].(string)
	if msg == "" {
		msg = DefaultMessage
	}
	if doc, _ := m["documentation_url"].(string); doc != "" {
		msg += " - Documentation: " + doc
	}
	return msg
}

// IsKnown reports whether err, or anything it wraps, is a classified
// provider error.
func IsKnown(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ArgumentError is raised before any request is made when a locally checked
// argument (owner, repository or branch name) is malformed. It is never
// retried and is not a provider classification.
type ArgumentError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewArgumentError creates an ArgumentError for field.
func NewArgumentError(field, format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsArgumentError reports whether err is an ArgumentError.
func IsArgumentError(err error) bool {
	var e *ArgumentError
	return errors.As(err, &e)
}
