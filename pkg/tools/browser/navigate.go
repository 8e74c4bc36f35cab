package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pagewatch/pkg/tools"
)

var validWaitStates = map[string]bool{
	"load":             true,
	"domcontentloaded": true,
	"networkidle":      true,
}

// NavigateTool navigates to a URL in a browser session.
type NavigateTool struct {
	manager *SessionManager
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(manager *SessionManager) *NavigateTool {
	return &NavigateTool{
		manager: manager,
	}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "browser_navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate to a URL in an active browser session. The browser will load the page and wait for it to be ready."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": map[string]interface{}{
				"type":        "string",
				"description": "Name of the browser session to use",
			},
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to navigate to (must include protocol, e.g., https://example.com)",
			},
			"wait_until": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"load", "domcontentloaded", "networkidle"},
				"description": "When to consider navigation complete. Default: load",
			},
		},
		[]string{"session", "url"},
	)
}

// NavigateInput represents the parameters for navigation.
type NavigateInput struct {
	Session   string `json:"session"`
	URL       string `json:"url"`
	WaitUntil string `json:"wait_until,omitempty"`
}

// Execute navigates to a URL.
func (t *NavigateTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input NavigateInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return "", nil, err
	}

	if input.Session == "" {
		return "", nil, fmt.Errorf("session name is required")
	}
	if input.URL == "" {
		return "", nil, fmt.Errorf("URL is required")
	}

	opts := NavigateOptions{WaitUntil: input.WaitUntil}
	if opts.WaitUntil == "" {
		opts.WaitUntil = "load"
	}
	if !validWaitStates[opts.WaitUntil] {
		return "", nil, fmt.Errorf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", opts.WaitUntil)
	}

	session, err := t.manager.GetSession(input.Session)
	if err != nil {
		return "", nil, err
	}

	if navErr := session.Navigate(input.URL, opts); navErr != nil {
		return "", nil, navErr
	}

	title := session.Title()
	if title == "" {
		title = "Unknown"
	}

	result := fmt.Sprintf(`Navigation successful

Page Details:
- URL: %s
- Title: %s
- Session: %s

Call detect_page_changes to compare this page against the previous observation.`,
		session.CurrentURL(),
		title,
		input.Session,
	)

	return result, map[string]interface{}{"url": session.CurrentURL(), "title": title}, nil
}

// ShouldShow returns whether this tool should be visible.
// Navigation tools are only shown when there are active sessions.
func (t *NavigateTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
