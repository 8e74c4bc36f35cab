package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pagewatch/pkg/tools"
)

// CloseSessionTool closes a browser session.
type CloseSessionTool struct {
	manager *SessionManager
}

// NewCloseSessionTool creates a new close session tool.
func NewCloseSessionTool(manager *SessionManager) *CloseSessionTool {
	return &CloseSessionTool{
		manager: manager,
	}
}

// Name returns the tool name.
func (t *CloseSessionTool) Name() string {
	return "close_browser_session"
}

// Description returns the tool description.
func (t *CloseSessionTool) Description() string {
	return "Close a browser session and clean up resources. Its change baseline is discarded with it."
}

// Schema returns the tool's JSON schema.
func (t *CloseSessionTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": map[string]interface{}{
				"type":        "string",
				"description": "Name of the browser session to close",
			},
		},
		[]string{"session"},
	)
}

// SessionInput is the argument shape shared by tools that act on one session.
type SessionInput struct {
	Session string `json:"session"`
}

func parseSessionInput(args json.RawMessage) (SessionInput, error) {
	var input SessionInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return input, err
	}
	if input.Session == "" {
		return input, fmt.Errorf("session name is required")
	}
	return input, nil
}

// Execute closes a browser session.
func (t *CloseSessionTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	input, err := parseSessionInput(args)
	if err != nil {
		return "", nil, err
	}

	if err := t.manager.CloseSession(input.Session); err != nil {
		return "", nil, fmt.Errorf("failed to close session: %w", err)
	}

	result := fmt.Sprintf(`Session closed successfully

Session: %s

The browser has been closed and all resources have been cleaned up.`,
		input.Session,
	)

	return result, map[string]interface{}{"session": input.Session}, nil
}

// ShouldShow returns whether this tool should be visible.
func (t *CloseSessionTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
