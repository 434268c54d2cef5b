package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gravitas-games/gridstash/internal/catalog"
	"github.com/gravitas-games/gridstash/internal/config"
	"github.com/gravitas-games/gridstash/internal/session"
	"github.com/gravitas-games/gridstash/internal/store"
	"github.com/gravitas-games/gridstash/pkg/inventory"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/gridstash.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.String("path", configPath))

	if err := run(cfg, logger); err != nil {
		logger.Error("gridstash stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("gridstash stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader, err := catalog.NewLoader(logger)
	if err != nil {
		return err
	}
	reg, err := loader.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load item catalog: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	grid, err := openGrid(ctx, cfg, st, reg, logger)
	if err != nil {
		return err
	}

	bus := session.NewSimpleEventBus()
	sess, err := session.New(grid,
		session.WithEventBus(bus),
		session.WithLogger(logger),
		session.WithOwner(cfg.Grid.Owner))
	if err != nil {
		return err
	}

	out := newEncoder(os.Stdout)
	bus.Subscribe("stdout", func(ev session.Event) {
		_ = out.write(session.ServerMessage{Type: session.MsgTypeEvent, Payload: ev})
	})

	// Serve intents until stdin closes or a signal arrives
	errChan := make(chan error, 1)
	go func() {
		errChan <- serve(ctx, os.Stdin, out, sess, logger)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case serveErr = <-errChan:
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer saveCancel()
	if err := sess.Persist(saveCtx, st); err != nil {
		return fmt.Errorf("failed to save grid: %w", err)
	}
	return serveErr
}

// openGrid restores the configured grid from the store, or creates it empty.
func openGrid(ctx context.Context, cfg *config.Config, st store.Store, reg *inventory.Registry, logger *zap.Logger) (*inventory.Grid, error) {
	id := cfg.Grid.ID
	if id == "" {
		id = uuid.NewString()
	}
	grid, err := store.LoadGrid(ctx, st, id, reg, inventory.WithLogger(logger))
	switch {
	case err == nil:
		logger.Info("grid restored", zap.String("grid", id), zap.Int("stacks", grid.StackCount()))
		if grid.Width() != cfg.Grid.Width || grid.Height() != cfg.Grid.Height {
			logger.Warn("stored grid size differs from configuration",
				zap.String("grid", id),
				zap.Int("width", grid.Width()),
				zap.Int("height", grid.Height()))
		}
		return grid, nil
	case errors.Is(err, store.ErrNotFound):
		logger.Info("creating grid", zap.String("grid", id),
			zap.Int("width", cfg.Grid.Width), zap.Int("height", cfg.Grid.Height))
		return inventory.NewGrid(id, cfg.Grid.Width, cfg.Grid.Height,
			inventory.WithRegistry(reg), inventory.WithLogger(logger)), nil
	default:
		return nil, err
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	// stdout carries the protocol
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
