// Package main is the pagewatch command line: unattended watch jobs and an
// MCP server exposing the browser change detection tools.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
