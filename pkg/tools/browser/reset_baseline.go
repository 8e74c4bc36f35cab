package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pagewatch/pkg/tools"
)

// ResetBaselineTool discards a session's baseline so the next detection
// starts over.
type ResetBaselineTool struct {
	manager *SessionManager
}

// NewResetBaselineTool creates a new reset baseline tool.
func NewResetBaselineTool(manager *SessionManager) *ResetBaselineTool {
	return &ResetBaselineTool{
		manager: manager,
	}
}

// Name returns the tool name.
func (t *ResetBaselineTool) Name() string {
	return "reset_change_baseline"
}

// Description returns the tool description.
func (t *ResetBaselineTool) Description() string {
	return "Forget the last observation of a session. The next detect_page_changes call records a fresh baseline. Thresholds are kept."
}

// Schema returns the tool's JSON schema.
func (t *ResetBaselineTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": map[string]interface{}{
				"type":        "string",
				"description": "Name of the browser session",
			},
		},
		[]string{"session"},
	)
}

// Execute clears the baseline.
func (t *ResetBaselineTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	input, err := parseSessionInput(args)
	if err != nil {
		return "", nil, err
	}

	session, err := t.manager.GetSession(input.Session)
	if err != nil {
		return "", nil, err
	}

	previous, had := session.Detector.ResetBaseline()
	session.UpdateLastUsed()

	metadata := map[string]interface{}{"hadBaseline": had}
	if !had {
		return fmt.Sprintf("Session %s had no baseline; nothing to reset.", input.Session), metadata, nil
	}

	prev, err := toMetadata(previous)
	if err != nil {
		return "", nil, err
	}
	metadata["previous"] = prev

	return fmt.Sprintf("Baseline cleared for session %s (was %s, %d elements).",
		input.Session, previous.URL, previous.ElementCount), metadata, nil
}

// ShouldShow returns whether this tool should be visible.
func (t *ResetBaselineTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
