package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/cardflow-sh/cardflow/internal/client"
	"github.com/cardflow-sh/cardflow/internal/tui"
)

// executeChat starts the interactive terminal client.
func executeChat() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := initLogger(cfg.LogJSON)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := client.New(cfg.ServerURL)

	// Surface an unreachable server before entering the TUI; the turn
	// itself will still report failures if the server goes away later.
	healthCtx, healthCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := api.Health(healthCtx); err != nil {
		logger.Warn("server health check failed", "url", cfg.ServerURL, "error", err)
		fmt.Printf("Warning: cannot reach server at %s (%v)\n", cfg.ServerURL, err)
		fmt.Println("Start it with: cardflow serve")
	}
	healthCancel()

	model, err := tui.New(ctx, api)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
