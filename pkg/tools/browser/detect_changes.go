package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/tools"
)

// DetectChangesTool captures the page structure and classifies it against the
// session's previous observation.
type DetectChangesTool struct {
	manager *SessionManager
}

// NewDetectChangesTool creates a new detect changes tool.
func NewDetectChangesTool(manager *SessionManager) *DetectChangesTool {
	return &DetectChangesTool{
		manager: manager,
	}
}

// Name returns the tool name.
func (t *DetectChangesTool) Name() string {
	return "detect_page_changes"
}

// Description returns the tool description.
func (t *DetectChangesTool) Description() string {
	return "Capture the page structure and compare it with the previous observation of the same session. " +
		"Reports a severity level (none, minor, major), the reasons, and whether a screenshot or DOM snapshot is recommended. " +
		"The first call only records the baseline."
}

// Schema returns the tool's JSON schema.
func (t *DetectChangesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"session": map[string]interface{}{
				"type":        "string",
				"description": "Name of the browser session to inspect",
			},
			"capture": map[string]interface{}{
				"type":        "boolean",
				"description": "Write the recommended screenshot and snapshot to output_dir. Default: false",
			},
			"output_dir": map[string]interface{}{
				"type":        "string",
				"description": "Directory for captures. Default: captures",
			},
		},
		[]string{"session"},
	)
}

// DetectChangesInput represents the parameters for change detection.
type DetectChangesInput struct {
	Session   string `json:"session"`
	Capture   bool   `json:"capture,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
}

// Execute runs one classification.
func (t *DetectChangesTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input DetectChangesInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return "", nil, err
	}
	if input.Session == "" {
		return "", nil, fmt.Errorf("session name is required")
	}
	if input.OutputDir == "" {
		input.OutputDir = DefaultOutputDir
	}

	session, err := t.manager.GetSession(input.Session)
	if err != nil {
		return "", nil, err
	}

	result, err := session.Detect(ctx)
	if err != nil {
		return "", nil, err
	}

	metadata, err := toMetadata(result)
	if err != nil {
		return "", nil, err
	}

	// The baseline has already moved, so a capture failure must not hide
	// the classification.
	var written []string
	var captureErr error
	if input.Capture {
		written, captureErr = WriteRecommended(session, result, input.OutputDir)
		if written == nil {
			written = []string{}
		}
		metadata["captures"] = written
		if captureErr != nil {
			metadata["captureError"] = captureErr.Error()
		}
	}

	return formatResult(input.Session, result, written, captureErr), metadata, nil
}

func formatResult(session string, r changedetect.Result, written []string, captureErr error) string {
	var b strings.Builder

	if r.BaselineInitialized {
		fmt.Fprintf(&b, "Baseline recorded for session %s (%s)\n\n", session, r.Details.Current.URL)
		b.WriteString("The next call to detect_page_changes will compare against this observation.")
		return b.String()
	}

	fmt.Fprintf(&b, "Change level: %s\n", r.Level)
	fmt.Fprintf(&b, "Session: %s\n", session)
	fmt.Fprintf(&b, "URL: %s\n", r.Details.Current.URL)

	if len(r.Reasons) > 0 {
		b.WriteString("\nReasons:\n")
		for _, reason := range r.Reasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}

	b.WriteString("\nRecommendations:\n")
	fmt.Fprintf(&b, "- Screenshot: %s\n", yesNo(r.ShouldTakeScreenshot))
	fmt.Fprintf(&b, "- Snapshot: %s\n", yesNo(r.ShouldTakeSnapshot))
	fmt.Fprintf(&b, "- Suggested filename: %s\n", r.SuggestedFilename)

	if len(written) > 0 {
		b.WriteString("\nCaptured:\n")
		for _, path := range written {
			fmt.Fprintf(&b, "- %s\n", path)
		}
	}
	if captureErr != nil {
		fmt.Fprintf(&b, "\nCapture failed: %v\n", captureErr)
	}

	return strings.TrimRight(b.String(), "\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// ShouldShow returns whether this tool should be visible.
func (t *DetectChangesTool) ShouldShow() bool {
	return t.manager.HasSessions()
}
