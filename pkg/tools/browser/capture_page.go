package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/pagewatch/pkg/tools"
)

// CapturePageTool writes a screenshot and optionally a DOM snapshot on demand.
type CapturePageTool struct {
	manager *SessionManager
	now     func() time.Time
}

// NewCapturePageTool creates a new capture page tool.
func NewCapturePageTool(manager *SessionManager) *CapturePageTool {
	return &CapturePageTool{
		manager: manager,
		now:     time.Now,
	}
}

// Name returns the tool name.
func (t *CapturePageTool) Name() string {
	return "capture_page"
}

// Description returns the tool description.
func (t *CapturePageTool) Description() string {
	return "Write a screenshot of the session's page, and optionally its HTML, to disk. Use the filename suggested by detect_page_changes to keep captures aligned with detections."
}

// Schema returns the tool's JSON schema.
func (t *CapturePageTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": map[string]interface{}{
				"type":        "string",
				"description": "Name of the browser session",
			},
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "Screenshot filename (.png). Default: capture_<timestamp>.png",
			},
			"output_dir": map[string]interface{}{
				"type":        "string",
				"description": "Directory for captures. Default: captures",
			},
			"full_page": map[string]interface{}{
				"type":        "boolean",
				"description": "Capture the full scrollable page. Default: true",
			},
			"snapshot": map[string]interface{}{
				"type":        "boolean",
				"description": "Also write the page HTML next to the screenshot. Default: false",
			},
		},
		[]string{"session"},
	)
}

// CapturePageInput represents the parameters for a capture.
type CapturePageInput struct {
	Session   string `json:"session"`
	Filename  string `json:"filename,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
	FullPage  *bool  `json:"full_page,omitempty"`
	Snapshot  bool   `json:"snapshot,omitempty"`
}

// Execute writes the captures.
func (t *CapturePageTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input CapturePageInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return "", nil, err
	}
	if input.Session == "" {
		return "", nil, fmt.Errorf("session name is required")
	}
	if strings.ContainsAny(input.Filename, `/\`) {
		return "", nil, fmt.Errorf("filename must not contain path separators")
	}
	if input.Filename == "." || input.Filename == ".." {
		return "", nil, fmt.Errorf("filename %q is not a file name", input.Filename)
	}
	if input.Filename == "" {
		input.Filename = "capture_" + t.now().Format("20060102-150405") + ".png"
	}
	if input.OutputDir == "" {
		input.OutputDir = DefaultOutputDir
	}
	fullPage := input.FullPage == nil || *input.FullPage

	session, err := t.manager.GetSession(input.Session)
	if err != nil {
		return "", nil, err
	}

	shot := filepath.Join(input.OutputDir, input.Filename)
	if err := session.Screenshot(shot, fullPage); err != nil {
		return "", nil, err
	}
	written := []string{shot}

	if input.Snapshot {
		snap := filepath.Join(input.OutputDir, SnapshotFilename(input.Filename))
		if err := session.Snapshot(snap); err != nil {
			return "", nil, err
		}
		written = append(written, snap)
	}

	return fmt.Sprintf("Captured session %s:\n- %s", input.Session, strings.Join(written, "\n- ")),
		map[string]interface{}{"captures": written}, nil
}

// ShouldShow returns whether this tool should be visible.
func (t *CapturePageTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
