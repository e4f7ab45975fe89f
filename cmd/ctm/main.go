// Package main is the entry point for the claude-token-monitor TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kissesu/claude-token-monitor/internal/app"
	"github.com/kissesu/claude-token-monitor/internal/config"
	"github.com/kissesu/claude-token-monitor/internal/logger"
	"github.com/kissesu/claude-token-monitor/internal/services"
	"github.com/kissesu/claude-token-monitor/internal/ui/tabs/activity"
	"github.com/kissesu/claude-token-monitor/internal/ui/tabs/dashboard"
	"github.com/kissesu/claude-token-monitor/internal/ui/tabs/providers"
	"github.com/kissesu/claude-token-monitor/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Route logs to a file; the TUI owns stderr once it starts
	if err := logger.InitFile(cfg.LogPath); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// 3. Initialize the service manager
	// This opens the database and starts the filesystem scanner
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 5. Initialize tabs with shared state
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state),
		providers.New(state),
		activity.New(state),
	}
	model.SetTabs(tabs)

	// 6. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// Blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`claude-token-monitor - Local Claude API usage tracker

Usage:
  ctm [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, Providers, Activity)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  n               Rename the selected provider
  d               Delete the selected provider
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  CLAUDE_DIR      Watched CLI data directory (default: ~/.claude)
  DATABASE_PATH   SQLite database path
  LOG_PATH        Log file path
  WATCH_DEBOUNCE  File event batching window (default: 200ms)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/claude-token-monitor/.env`)
}
