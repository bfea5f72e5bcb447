package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

// Standard JSON-RPC codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Server defined codes for classified provider failures
const (
	CodeUnauthorized       = -32001
	CodeNotFound           = -32002
	CodeRateLimited        = -32003
	CodeConflict           = -32004
	CodeProviderValidation = -32005
)

// ToMCPError converts any error raised while serving a request into its
// JSON-RPC form
func ToMCPError(err error) *MCPError {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	if ie, ok := tools.AsInvocationError(err); ok {
		code := CodeInvalidParams
		if ie.Code == tools.CodeUnknownOperation {
			code = CodeMethodNotFound
		}
		data := map[string]interface{}{
			"kind": string(ie.Code),
			"tool": ie.Tool,
		}
		if len(ie.Violations) > 0 {
			data["violations"] = ie.Violations
		}
		return &MCPError{Code: code, Message: ie.Message, Data: data}
	}

	var argErr *apierrors.ArgumentError
	if errors.As(err, &argErr) {
		return &MCPError{
			Code:    CodeInvalidParams,
			Message: argErr.Error(),
			Data: map[string]interface{}{
				"kind":  "invalid_argument",
				"field": argErr.Field,
			},
		}
	}

	if apiErr, ok := apierrors.As(err); ok {
		data := map[string]interface{}{
			"kind": apiErr.Kind.String(),
		}
		if apiErr.Status != 0 {
			data["status"] = apiErr.Status
		}
		if apiErr.ResetAt != nil {
			data["reset_at"] = apiErr.ResetAt.UTC().Format(time.RFC3339)
		}
		if apiErr.Context != nil {
			data["context"] = apiErr.Context
		}
		return &MCPError{Code: codeForKind(apiErr.Kind), Message: apiErr.Message, Data: data}
	}

	return &MCPError{Code: CodeInternalError, Message: err.Error()}
}

func codeForKind(kind apierrors.Kind) int {
	switch kind {
	case apierrors.KindAuthentication, apierrors.KindPermission:
		return CodeUnauthorized
	case apierrors.KindNotFound:
		return CodeNotFound
	case apierrors.KindRateLimit:
		return CodeRateLimited
	case apierrors.KindConflict:
		return CodeConflict
	case apierrors.KindValidation:
		return CodeProviderValidation
	default:
		return CodeInternalError
	}
}

// errorType is the label used for tool error metrics
func errorType(err error) string {
	if ie, ok := tools.AsInvocationError(err); ok {
		return string(ie.Code)
	}
	if apierrors.IsArgumentError(err) {
		return "invalid_argument"
	}
	if apiErr, ok := apierrors.As(err); ok {
		return apiErr.Kind.String()
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return "internal"
}
