// Package mcpserver exposes pagewatch tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/entrhq/pagewatch/pkg/logging"
	"github.com/entrhq/pagewatch/pkg/tools"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "pagewatch"

// NewServer registers the tools on a new MCP server without starting it.
// Tools implementing tools.Visibility are listed only while ShouldShow
// reports true; call Sync whenever that may have changed.
func NewServer(version string, list []tools.Tool, logger *logging.Logger) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	if err := Sync(s, list, logger); err != nil {
		return nil, err
	}
	return s, nil
}

// Sync adds the visible tools that are missing from s and removes the hidden
// ones. The server notifies clients when its tool list changes.
func Sync(s *server.MCPServer, list []tools.Tool, logger *logging.Logger) error {
	var hidden []string
	for _, t := range list {
		registered := s.GetTool(t.Name()) != nil

		if v, ok := t.(tools.Visibility); ok && !v.ShouldShow() {
			if registered {
				hidden = append(hidden, t.Name())
			}
			continue
		}
		if registered {
			continue
		}

		schema, err := json.Marshal(t.Schema())
		if err != nil {
			return fmt.Errorf("failed to encode schema for %s: %w", t.Name(), err)
		}
		s.AddTool(mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema), handlerFor(t, logger))
	}

	if len(hidden) > 0 {
		s.DeleteTools(hidden...)
		logger.Debugf("hid tools: %v", hidden)
	}
	return nil
}

// handlerFor adapts a Tool to an MCP handler. Tool failures become error
// results so the client can show them; only transport problems are returned
// as errors.
func handlerFor(t tools.Tool, logger *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		logger.Debugf("call %s %s", t.Name(), args)
		text, metadata, err := t.Execute(ctx, args)
		if err != nil {
			logger.Warnf("%s failed: %v", t.Name(), err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := mcp.NewToolResultText(text)
		if len(metadata) > 0 {
			encoded, err := json.MarshalIndent(metadata, "", "  ")
			if err != nil {
				logger.Warnf("%s: dropping metadata: %v", t.Name(), err)
				return result, nil
			}
			result.Content = append(result.Content, mcp.NewTextContent(string(encoded)))
		}
		return result, nil
	}
}

// Serve runs the server on stdin/stdout until the client disconnects or ctx
// is cancelled.
func Serve(ctx context.Context, s *server.MCPServer) error {
	stdio := server.NewStdioServer(s)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
