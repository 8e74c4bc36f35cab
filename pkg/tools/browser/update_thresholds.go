package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/tools"
)

// UpdateThresholdsTool changes the thresholds of one session's detector.
type UpdateThresholdsTool struct {
	manager *SessionManager
}

// NewUpdateThresholdsTool creates a new update thresholds tool.
func NewUpdateThresholdsTool(manager *SessionManager) *UpdateThresholdsTool {
	return &UpdateThresholdsTool{
		manager: manager,
	}
}

// Name returns the tool name.
func (t *UpdateThresholdsTool) Name() string {
	return "update_change_thresholds"
}

// Description returns the tool description.
func (t *UpdateThresholdsTool) Description() string {
	return "Update the change detection thresholds of a session. Only the fields given are changed; the full resulting configuration is returned."
}

func numberProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"minimum":     0,
		"description": description,
	}
}

// Schema returns the tool's JSON schema.
func (t *UpdateThresholdsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": map[string]interface{}{
				"type":        "string",
				"description": "Name of the browser session",
			},
			"major": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"elementDelta":  numberProperty("Element count change for a major change. Default: 100"),
					"dialogDelta":   numberProperty("Dialog count change. Default: 1"),
					"overlayDelta":  numberProperty("Overlay count change. Default: 1"),
					"formDelta":     numberProperty("Form count change. Default: 1"),
					"zIndexDelta":   numberProperty("Max z-index increase. Default: 500"),
					"viewportDelta": numberProperty("Viewport height change in percent. Default: 30"),
				},
				"additionalProperties": false,
			},
			"minor": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"elementDelta":  numberProperty("Element count change for a minor change. Default: 20"),
					"viewportDelta": numberProperty("Visible element change in percent. Default: 5"),
				},
				"additionalProperties": false,
			},
		},
		[]string{"session"},
	)
}

// UpdateThresholdsInput represents the parameters for a threshold update.
type UpdateThresholdsInput struct {
	Session string `json:"session"`
	changedetect.ThresholdUpdate
}

// Execute applies the update.
func (t *UpdateThresholdsTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input UpdateThresholdsInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return "", nil, err
	}
	if input.Session == "" {
		return "", nil, fmt.Errorf("session name is required")
	}
	if input.ThresholdUpdate.IsEmpty() {
		return "", nil, fmt.Errorf("at least one of major or minor is required")
	}
	if err := input.ThresholdUpdate.Validate(); err != nil {
		return "", nil, err
	}

	session, err := t.manager.GetSession(input.Session)
	if err != nil {
		return "", nil, err
	}

	updated := session.Detector.UpdateThresholds(input.ThresholdUpdate)
	session.UpdateLastUsed()

	metadata, err := toMetadata(updated)
	if err != nil {
		return "", nil, err
	}

	encoded, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode thresholds: %w", err)
	}
	result := fmt.Sprintf("Thresholds updated for session %s\n\n%s", input.Session, encoded)
	return result, metadata, nil
}

// ShouldShow returns whether this tool should be visible.
func (t *UpdateThresholdsTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
