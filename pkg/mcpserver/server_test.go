package mcpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/mcpserver"
	"github.com/entrhq/pagewatch/pkg/tools"
	"github.com/entrhq/pagewatch/pkg/tools/browser"
)

// echoTool returns its decoded arguments as metadata.
type echoTool struct {
	err error
}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "Echo arguments back" }
func (e *echoTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{
		"value": map[string]interface{}{"type": "string"},
	}, []string{"value"})
}

func (e *echoTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	if e.err != nil {
		return "", nil, e.err
	}
	var input struct {
		Value string `json:"value"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return "", nil, err
	}
	return "echo: " + input.Value, map[string]interface{}{"value": input.Value}, nil
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestNewServer_TextAndMetadata(t *testing.T) {
	s, err := mcpserver.NewServer("test", []tools.Tool{&echoTool{}}, nil)
	require.NoError(t, err)

	tool := s.GetTool("echo")
	require.NotNil(t, tool, "Tool echo should exist")
	assert.Equal(t, "Echo arguments back", tool.Tool.Description)

	res, err := tool.Handler(context.Background(), call("echo", map[string]any{"value": "hi"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 2)
	assert.Equal(t, "echo: hi", res.Content[0].(mcp.TextContent).Text)
	assert.JSONEq(t, `{"value": "hi"}`, res.Content[1].(mcp.TextContent).Text)
}

func TestNewServer_ToolErrorsBecomeErrorResults(t *testing.T) {
	s, err := mcpserver.NewServer("test", []tools.Tool{&echoTool{err: errors.New("page crashed")}}, nil)
	require.NoError(t, err)

	res, err := s.GetTool("echo").Handler(context.Background(), call("echo", map[string]any{"value": "hi"}))
	require.NoError(t, err, "The MCP handler should not return a raw error for tool failures")
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "page crashed")
}

func TestNewServer_BadArguments(t *testing.T) {
	s, err := mcpserver.NewServer("test", []tools.Tool{&echoTool{}}, nil)
	require.NoError(t, err)

	res, err := s.GetTool("echo").Handler(context.Background(), call("echo", map[string]any{"valu": "typo"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid parameters")
}

type staticSource struct{ m changedetect.Metrics }

func (s staticSource) CaptureMetrics(ctx context.Context) (changedetect.Metrics, error) {
	return s.m, nil
}

func TestNewServer_BrowserTools(t *testing.T) {
	manager := browser.NewSessionManager(nil)
	defer manager.CloseAll()

	_, err := manager.AddSession("main", staticSource{m: changedetect.Metrics{
		ElementCount:   10,
		ViewportHeight: 600,
		URL:            "https://example.com/",
	}}, browser.SessionOptions{})
	require.NoError(t, err)

	s, err := mcpserver.NewServer("test", browser.NewToolRegistry(manager).RegisterTools(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	detect := s.GetTool("detect_page_changes")
	require.NotNil(t, detect)

	res, err := detect.Handler(ctx, call("detect_page_changes", map[string]any{"session": "main"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "Baseline recorded")

	res, err = detect.Handler(ctx, call("detect_page_changes", map[string]any{"session": "other"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "not found")

	update := s.GetTool("update_change_thresholds")
	require.NotNil(t, update)
	res, err = update.Handler(ctx, call("update_change_thresholds", map[string]any{
		"session": "main",
		"major":   map[string]any{"zIndexDelta": -5.0},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid threshold update")
}

func TestSync_FollowsSessions(t *testing.T) {
	manager := browser.NewSessionManager(nil)
	defer manager.CloseAll()

	list := browser.NewToolRegistry(manager).RegisterTools()
	s, err := mcpserver.NewServer("test", list, nil)
	require.NoError(t, err)

	manager.OnSessionsChanged(func() {
		require.NoError(t, mcpserver.Sync(s, list, nil))
	})

	assert.NotNil(t, s.GetTool("start_browser_session"))
	assert.NotNil(t, s.GetTool("list_browser_sessions"))
	assert.Nil(t, s.GetTool("detect_page_changes"), "session tools are hidden until a session exists")

	_, err = manager.AddSession("main", staticSource{m: changedetect.Metrics{URL: "https://example.com/"}}, browser.SessionOptions{})
	require.NoError(t, err)
	assert.NotNil(t, s.GetTool("detect_page_changes"))
	assert.NotNil(t, s.GetTool("capture_page"))

	require.NoError(t, manager.CloseSession("main"))
	assert.Nil(t, s.GetTool("detect_page_changes"))
	assert.NotNil(t, s.GetTool("start_browser_session"))
}
