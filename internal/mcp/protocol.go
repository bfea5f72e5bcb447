// Package mcp binds the tool registry to the Model Context Protocol, a
// JSON-RPC 2.0 dialect, over stdio and WebSocket.
package mcp

import "encoding/json"

// JSONRPCVersion is the only accepted jsonrpc field value
const JSONRPCVersion = "2.0"

// LatestProtocolVersion is offered when a client asks for a version this
// server does not know
const LatestProtocolVersion = "2025-06-18"

var supportedProtocolVersions = map[string]bool{
	"2024-11-05":          true,
	"2025-03-26":          true,
	LatestProtocolVersion: true,
}

// MCPMessage represents a JSON-RPC message in the MCP protocol
type MCPMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *MCPError       `json:"error,omitempty"`
}

// IsNotification reports whether the message expects no response
func (m *MCPMessage) IsNotification() bool {
	return m.ID == nil
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *MCPError) Error() string {
	return e.Message
}

func newResult(id interface{}, result interface{}) *MCPMessage {
	return &MCPMessage{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// nullID is the id of a response to a message whose own id is unknown.
// It serializes as "id": null rather than being omitted.
var nullID = json.RawMessage("null")

func newParseError() *MCPMessage {
	return newError(nullID, &MCPError{Code: CodeParseError, Message: "Parse error"})
}

func newError(id interface{}, err *MCPError) *MCPMessage {
	return &MCPMessage{JSONRPC: JSONRPCVersion, ID: id, Error: err}
}
