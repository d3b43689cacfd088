package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cardflow-sh/cardflow/internal/api"
	"github.com/cardflow-sh/cardflow/internal/catalog"
	"github.com/cardflow-sh/cardflow/internal/dispatch"
	"github.com/cardflow-sh/cardflow/internal/llm"
	"github.com/cardflow-sh/cardflow/internal/turn"
)

// executeServe starts the turn server.
func executeServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := initLogger(cfg.LogJSON)

	if err := checkRequiredEnv(); err != nil {
		return err
	}

	cat, err := catalog.New()
	if err != nil {
		return fmt.Errorf("building tool catalog: %w", err)
	}
	registry, err := dispatch.NewRegistry(cat, logger)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	model := llm.NewAnthropic(cfg.Model, cfg.MaxTokens, logger)
	runner := turn.NewRunner(model, registry, logger, turn.Options{
		MaxSteps:  cfg.MaxSteps,
		Timeout:   cfg.TurnTimeout(),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting cardflow server",
		"version", AppVersion,
		"model", cfg.Model,
		"max_steps", cfg.MaxSteps,
		"addr", cfg.Addr)

	server := api.NewServer(cfg.Addr, runner, logger)
	return server.Run(ctx)
}
