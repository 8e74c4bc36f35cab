package browser

import (
	"github.com/entrhq/pagewatch/pkg/tools"
)

// ToolRegistry builds the browser tool set for a host.
type ToolRegistry struct {
	manager *SessionManager
	tools   []tools.Tool
}

// NewToolRegistry creates a new browser tool registry.
func NewToolRegistry(manager *SessionManager) *ToolRegistry {
	return &ToolRegistry{
		manager: manager,
		tools:   make([]tools.Tool, 0),
	}
}

// RegisterTools creates and returns all browser tools.
func (r *ToolRegistry) RegisterTools() []tools.Tool {
	if len(r.tools) > 0 {
		return r.tools
	}

	// Session management
	r.tools = append(r.tools,
		NewStartSessionTool(r.manager),
		NewListSessionsTool(r.manager),
		NewCloseSessionTool(r.manager),
	)

	// Page monitoring
	r.tools = append(r.tools,
		NewNavigateTool(r.manager),
		NewDetectChangesTool(r.manager),
		NewUpdateThresholdsTool(r.manager),
		NewResetBaselineTool(r.manager),
		NewCapturePageTool(r.manager),
	)

	return r.tools
}
