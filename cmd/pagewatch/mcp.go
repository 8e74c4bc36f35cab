package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/pagewatch/pkg/logging"
	"github.com/entrhq/pagewatch/pkg/mcpserver"
	"github.com/entrhq/pagewatch/pkg/tools/browser"
)

var mcpIdleInterval time.Duration

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the pagewatch MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents open browser sessions,
classify page changes and capture evidence through standard tools.

Logs go to ~/.pagewatch/logs so that stdout stays reserved for the protocol.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if mcpIdleInterval <= 0 {
			return fmt.Errorf("--idle-check must be positive")
		}
		return runMCP()
	},
}

func runMCP() error {
	logger, err := logging.NewLogger("mcp")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := browser.NewSessionManager(logger)
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	if err := manager.Initialize(); err != nil {
		return err
	}
	go manager.RunIdleCleanup(ctx, mcpIdleInterval)

	list := browser.NewToolRegistry(manager).RegisterTools()
	s, err := mcpserver.NewServer(version, list, logger)
	if err != nil {
		return err
	}
	manager.OnSessionsChanged(func() {
		if err := mcpserver.Sync(s, list, logger); err != nil {
			logger.Errorf("tool sync: %v", err)
		}
	})

	logger.Infof("mcp server listening on stdio")
	return mcpserver.Serve(ctx, s)
}

func init() {
	mcpCmd.Flags().DurationVar(&mcpIdleInterval, "idle-check", time.Minute, "how often idle browser sessions are closed")
	rootCmd.AddCommand(mcpCmd)
}
