package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/holdemtrainer/internal/server"
	"github.com/lox/holdemtrainer/internal/store"
)

type ServeCmd struct {
	Config     string `short:"c" default:"holdem-trainer.hcl" env:"HOLDEM_CONFIG" help:"Path to HCL configuration file"`
	Addr       string `short:"a" help:"Address to bind to (overrides config)"`
	Port       int    `short:"p" env:"PORT" help:"Port to listen on (overrides config)"`
	ThinkTime  *int   `help:"Milliseconds computer opponents pause before acting (overrides config)"`
	SnapshotDB string `env:"HOLDEM_SNAPSHOT_DB" help:"SQLite file for game snapshots (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	c.applyOverrides(cfg, g)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []server.Option
	if cfg.Server.SnapshotDB != "" {
		repo, err := store.OpenSnapshotRepo(ctx, cfg.Server.SnapshotDB)
		if err != nil {
			return err
		}
		defer repo.Close()
		opts = append(opts, server.WithSnapshotRepo(repo))
	}

	logger.Info("Starting holdem trainer",
		"addr", cfg.Address(),
		"seats", cfg.Table.Seats,
		"stakes", fmt.Sprintf("%d/%d", cfg.Table.SmallBlind, cfg.Table.BigBlind),
		"snapshots", cfg.Server.SnapshotDB != "")

	return server.New(cfg, logger, opts...).Run(ctx)
}

func (c *ServeCmd) applyOverrides(cfg *server.Config, g *Globals) {
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.ThinkTime != nil {
		cfg.Server.ThinkTimeMS = *c.ThinkTime
	}
	if c.SnapshotDB != "" {
		cfg.Server.SnapshotDB = c.SnapshotDB
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
}
