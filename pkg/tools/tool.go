// Package tools defines the contract between pagewatch tools and the hosts
// that dispatch them (the MCP server, tests, embedding applications).
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Tool represents a capability a host can invoke.
//
// Arguments arrive as a JSON object matching Schema. Execute returns a
// human-readable result and optional structured metadata; hosts that speak a
// structured protocol can forward the metadata alongside the text.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "detect_page_changes")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool with the given JSON arguments.
	// Returns: (result string, metadata map, error)
	Execute(ctx context.Context, arguments json.RawMessage) (string, map[string]interface{}, error)
}

// Visibility is an optional interface for tools that are only meaningful in
// some states, e.g. browser tools when no session is open.
type Visibility interface {
	ShouldShow() bool
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// DecodeArgs unmarshals tool arguments into v. Empty input and a JSON null
// are treated as an empty object so tools without parameters can be called
// with nothing. Unknown fields are rejected to surface typos early.
func DecodeArgs(data json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
