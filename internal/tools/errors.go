package tools

import (
	"errors"
	"fmt"
	"strings"
)

// InvocationCode distinguishes the dispatcher's own failures
type InvocationCode string

const (
	CodeInvalidInput     InvocationCode = "InvalidInput"
	CodeUnknownOperation InvocationCode = "UnknownOperation"
)

var (
	ErrMissingArguments = errors.New("missing arguments")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrDuplicateTool    = errors.New("tool already registered")
)

// Violation is one failed schema constraint
type Violation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Description
}

// InvocationError is returned by the registry when a call never reaches a
// handler.
type InvocationError struct {
	Code       InvocationCode
	Tool       string
	Message    string
	Violations []Violation
	Err        error
}

func (e *InvocationError) Error() string {
	return e.Message
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// AsInvocationError reports whether err wraps an InvocationError
func AsInvocationError(err error) (*InvocationError, bool) {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

func missingArguments(name string) error {
	return &InvocationError{
		Code:    CodeUnknownOperation,
		Tool:    name,
		Message: fmt.Sprintf("Arguments are required for tool %s", name),
		Err:     ErrMissingArguments,
	}
}

func unknownTool(name string) error {
	return &InvocationError{
		Code:    CodeUnknownOperation,
		Tool:    name,
		Message: fmt.Sprintf("Unknown tool: %s", name),
		Err:     ErrUnknownTool,
	}
}

func invalidInput(name string, violations []Violation) error {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return &InvocationError{
		Code:       CodeInvalidInput,
		Tool:       name,
		Message:    "Invalid input: " + strings.Join(parts, "; "),
		Violations: violations,
	}
}
