package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/entrhq/pagewatch/pkg/tools"
)

// ListSessionsTool lists all active browser sessions.
type ListSessionsTool struct {
	manager *SessionManager
}

// NewListSessionsTool creates a new list sessions tool.
func NewListSessionsTool(manager *SessionManager) *ListSessionsTool {
	return &ListSessionsTool{
		manager: manager,
	}
}

// Name returns the tool name.
func (t *ListSessionsTool) Name() string {
	return "list_browser_sessions"
}

// Description returns the tool description.
func (t *ListSessionsTool) Description() string {
	return "List all active browser sessions with their current URL, age and baseline state."
}

// Schema returns the tool's JSON schema.
func (t *ListSessionsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{},
		nil,
	)
}

// Execute lists all sessions.
func (t *ListSessionsTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input struct{}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return "", nil, err
	}

	sessions := t.manager.ListSessions()
	metadata := map[string]interface{}{"sessions": sessions}

	if len(sessions) == 0 {
		return "No active browser sessions.\n\nUse start_browser_session to create a new session.", metadata, nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active Browser Sessions: %d\n\n", len(sessions)))
	result.WriteString(renderSessionTable(sessions, time.Now()))
	result.WriteString("\nUse close_browser_session to close a session when finished.")

	return result.String(), metadata, nil
}

func renderSessionTable(sessions []SessionInfo, now time.Time) string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Name", "URL", "Mode", "Age", "Idle", "Baseline"})

	var data [][]string
	for _, s := range sessions {
		mode := "headed"
		if s.Headless {
			mode = "headless"
		}
		baseline := "no"
		if s.HasBaseline {
			baseline = "yes"
		}
		data = append(data, []string{
			s.Name,
			s.CurrentURL,
			mode,
			formatDuration(now.Sub(s.CreatedAt)),
			formatDuration(now.Sub(s.LastUsedAt)),
			baseline,
		})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Sprintf("failed to render sessions: %v\n", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("failed to render sessions: %v\n", err)
	}
	return buf.String()
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
