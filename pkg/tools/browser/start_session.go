package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pagewatch/pkg/config"
	"github.com/entrhq/pagewatch/pkg/tools"
)

// StartSessionTool creates a new browser session.
type StartSessionTool struct {
	manager *SessionManager
}

// NewStartSessionTool creates a new start session tool.
func NewStartSessionTool(manager *SessionManager) *StartSessionTool {
	return &StartSessionTool{
		manager: manager,
	}
}

// Name returns the tool name.
func (t *StartSessionTool) Name() string {
	return "start_browser_session"
}

// Description returns the tool description.
func (t *StartSessionTool) Description() string {
	return "Create a new browser session to monitor. Each session has its own change baseline and thresholds."
}

// Schema returns the tool's JSON schema.
func (t *StartSessionTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Unique name for the browser session (e.g., 'checkout', 'dashboard')",
			},
			"headless": map[string]interface{}{
				"type":        "boolean",
				"description": "Run browser in headless mode. Default comes from the browser.headless setting",
			},
			"width": map[string]interface{}{
				"type":        "integer",
				"description": "Browser viewport width in pixels. Default: 1280",
			},
			"height": map[string]interface{}{
				"type":        "integer",
				"description": "Browser viewport height in pixels. Default: 720",
			},
		},
		[]string{"name"},
	)
}

// StartSessionInput defines the input parameters for starting a browser session.
type StartSessionInput struct {
	Name     string `json:"name"`
	Headless *bool  `json:"headless,omitempty"`
	Width    *int   `json:"width,omitempty"`
	Height   *int   `json:"height,omitempty"`
}

// Execute starts a new browser session.
func (t *StartSessionTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	input, err := t.parseInput(args)
	if err != nil {
		return "", nil, err
	}

	opts := t.buildSessionOptions(input)
	if validateErr := validateViewport(opts.Viewport); validateErr != nil {
		return "", nil, validateErr
	}

	if initErr := t.manager.Initialize(); initErr != nil {
		return "", nil, fmt.Errorf("failed to initialize browser: %w", initErr)
	}

	session, err := t.manager.StartSession(input.Name, opts)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start session: %w", err)
	}

	metadata := map[string]interface{}{
		"session":  session.Name,
		"headless": session.Headless,
		"width":    opts.Viewport.Width,
		"height":   opts.Viewport.Height,
	}
	return t.buildSuccessMessage(session, opts), metadata, nil
}

func (t *StartSessionTool) parseInput(args json.RawMessage) (*StartSessionInput, error) {
	var input StartSessionInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	if input.Name == "" {
		return nil, fmt.Errorf("session name is required")
	}

	return &input, nil
}

// buildSessionOptions constructs SessionOptions from input and config defaults.
func (t *StartSessionTool) buildSessionOptions(input *StartSessionInput) SessionOptions {
	headlessDefault := true
	if b := config.GetBrowser(); b != nil {
		headlessDefault = b.IsHeadless()
	}

	opts := SessionOptions{
		Headless: headlessDefault,
		Viewport: &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
		Timeout: DefaultTimeout,
	}

	if input.Headless != nil {
		opts.Headless = *input.Headless
	}
	if input.Width != nil {
		opts.Viewport.Width = *input.Width
	}
	if input.Height != nil {
		opts.Viewport.Height = *input.Height
	}

	return opts
}

// validateViewport validates viewport dimensions are within acceptable range.
func validateViewport(vp *Viewport) error {
	if vp.Width < 100 || vp.Width > 5000 {
		return fmt.Errorf("viewport width must be between 100 and 5000 pixels")
	}
	if vp.Height < 100 || vp.Height > 5000 {
		return fmt.Errorf("viewport height must be between 100 and 5000 pixels")
	}
	return nil
}

func (t *StartSessionTool) buildSuccessMessage(session *Session, opts SessionOptions) string {
	mode := "headed"
	if session.Headless {
		mode = "headless"
	}

	return fmt.Sprintf(`Browser session created successfully

Session Details:
- Name: %s
- Mode: %s
- Viewport: %dx%d pixels
- Status: Ready

Use browser_navigate to open a page, then detect_page_changes to record the baseline. Every later call compares against the previous observation.`,
		session.Name,
		mode,
		opts.Viewport.Width,
		opts.Viewport.Height,
	)
}
