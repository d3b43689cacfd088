// Package cmd contains all application logic for the cardflow CLI,
// leaving main.go as a minimal entry point.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cardflow-sh/cardflow/internal/config"
	"github.com/cardflow-sh/cardflow/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point for the cardflow CLI. It handles flag
// parsing and command routing.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			return printVersionInfo()
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "serve":
			return executeServe()
		case "chat":
			return executeChat()
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}

	// Interactive chat is the default behavior.
	return executeChat()
}

// initLogger initializes the structured logger. Log level is controlled by
// the DEBUG environment variable. Logs go to stderr; stdout belongs to the
// terminal UI.
func initLogger(jsonOutput bool) log.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: jsonOutput})
}

// checkRequiredEnv verifies environment needed for serve mode. The
// Anthropic SDK reads the key itself; this check exists to fail fast with
// setup instructions instead of failing on the first turn.
func checkRequiredEnv() error {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: ANTHROPIC_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "cardflow serve requires an Anthropic API key.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "To set your API key:")
		fmt.Fprintln(os.Stderr, "  export ANTHROPIC_API_KEY=your-api-key")

		return fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// printHelp displays the help message.
func printHelp() {
	fmt.Println("cardflow - chat that answers in cards, charts, and tables")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cardflow             Start interactive chat (default)")
	fmt.Println("  cardflow serve       Start the turn server")
	fmt.Println("  cardflow --version   Show version information")
	fmt.Println("  cardflow --help      Show this help")
	fmt.Println()
	fmt.Println("Interactive Commands:")
	fmt.Println("  /help                Show available commands")
	fmt.Println("  /file <path>         Attach an image, PDF, CSV, or text file")
	fmt.Println("  /clear               Clear conversation history")
	fmt.Println("  /exit, /quit         Exit cardflow")
	fmt.Println()
	fmt.Println("Shortcuts:")
	fmt.Println("  Ctrl+D               Exit")
	fmt.Println("  Ctrl+C               Cancel current turn or clear input")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  ANTHROPIC_API_KEY    Required for serve mode")
	fmt.Println("  CARDFLOW_ADDR        Server listen address")
	fmt.Println("  CARDFLOW_SERVER_URL  Server URL for chat mode")
	fmt.Println("  DEBUG                Enable debug logging")
}
