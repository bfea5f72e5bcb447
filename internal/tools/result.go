package tools

import (
	"encoding/json"
	"fmt"
)

// Content is one block of a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the payload returned for tools/call
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextResult renders v as indented JSON in a single text block
func TextResult(v interface{}) (*CallToolResult, error) {
	text, err := FormatResult(v)
	if err != nil {
		return nil, err
	}
	return &CallToolResult{Content: []Content{{Type: "text", Text: text}}}, nil
}

// FormatResult is the JSON rendering used for successful calls
func FormatResult(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(data), nil
}
