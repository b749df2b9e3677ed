// Package main implements the MCP server for the todo-engagement plugin.
//
// The server keeps one notification feed and one engagement ledger for the
// life of the process and exposes them as tools over stdio JSON-RPC (Model
// Context Protocol). The ledger is loaded from the configured storage
// backend at startup and written back after every change.
//
// Environment variables:
//   - CLAUDE_PROJECT_DIR: Optional. Project root; defaults to the working directory.
//   - TODO_ENGAGEMENT_CONFIG: Optional. Path to the YAML config file.
//   - TODO_STORAGE_BACKEND, TODO_LEDGER_PATH, TODO_SQLITE_PATH, TODO_POSTGRES_URL:
//     Optional. Storage overrides, see the config package.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/JamesPrial/todo-engagement/internal/app"
	"github.com/JamesPrial/todo-engagement/internal/config"
	"github.com/JamesPrial/todo-engagement/internal/mcpserver"
)

func projectDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("CLAUDE_PROJECT_DIR")); dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

func run() int {
	errLogger := log.New(os.Stderr, "[engagement-mcp] ", log.LstdFlags)

	dir, err := projectDir()
	if err != nil {
		errLogger.Printf("Failed to determine project directory: %v", err)
		return 1
	}

	cfg, err := config.Load(dir, os.Getenv("TODO_ENGAGEMENT_CONFIG"))
	if err != nil {
		errLogger.Printf("Failed to load config: %v", err)
		return 1
	}

	a, err := app.New(cfg, errLogger, app.Options{WatchSettings: true})
	if err != nil {
		errLogger.Printf("Failed to start services: %v", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			errLogger.Printf("Failed to shut down cleanly: %v", err)
		}
	}()

	srv, err := mcpserver.NewServer(a.Feed, a.Ledger)
	if err != nil {
		errLogger.Printf("Failed to create MCP server: %v", err)
		return 1
	}

	if err := server.ServeStdio(srv, server.WithErrorLogger(errLogger)); err != nil {
		errLogger.Printf("Server error: %v", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
