package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammGovernance/internal/aggregate"
	"ammGovernance/internal/config"
	"ammGovernance/internal/storage/postgres"
)

func runAggregate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAggregate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if cfg.InitSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		logger.Info("schema ready")
	}

	windowSeconds := cfg.WindowSeconds()
	agg := aggregate.NewAggregator(aggregate.Config{
		WindowSeconds: windowSeconds,
		BatchSize:     cfg.BatchSize,
		RecomputeFrom: cfg.RecomputeFrom,
		StateStore:    checkpointStore(cfg, store),
	}, store, logger)

	logger.Info("aggregate start",
		zap.String("input", cfg.Input),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Duration("window", cfg.Window),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Uint64("recompute_from", cfg.RecomputeFrom),
	)

	if err := agg.Run(ctx, cfg.Input); err != nil {
		return err
	}

	pools, proposals := agg.Snapshots().Counts()
	logger.Info("snapshots written", zap.Int("pools", pools), zap.Int("proposals", proposals))
	return nil
}

// checkpointStore prefers a local file when one is configured.
func checkpointStore(cfg config.AggregateConfig, store *postgres.Store) aggregate.StateStore {
	if cfg.StateFile != "" {
		return &aggregate.FileStateStore{Path: cfg.StateFile}
	}
	return &aggregate.DBStateStore{Store: store, WindowSeconds: cfg.WindowSeconds()}
}

// redactDSN hides the password of URL-style DSNs. Keyword DSNs are hidden
// entirely since they cannot be parsed reliably here.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		if dsn == "" {
			return dsn
		}
		return "***"
	}
	return u.Redacted()
}
