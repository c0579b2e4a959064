package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammGovernance/internal/amm"
	"ammGovernance/internal/chain"
	"ammGovernance/internal/clock"
	"ammGovernance/internal/config"
	"ammGovernance/internal/governance"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/replay"
	"ammGovernance/internal/runtime"
	"ammGovernance/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Ledger == "" {
		return fmt.Errorf("ledger directory is required")
	}

	ammID, err := replay.ParseProgramID(cfg.AMMProgramID, amm.DefaultProgramID)
	if err != nil {
		return err
	}
	govID, err := replay.ParseProgramID(cfg.GovernanceProgramID, governance.DefaultProgramID)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var clk clock.Clock = clock.System{}
	switch cfg.Clock {
	case "", "system":
	case "rpc":
		if cfg.RPCURL == "" {
			return fmt.Errorf("rpc url is required for the rpc clock")
		}
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		clk = clock.NewChain(chainClient)
	default:
		return fmt.Errorf("unknown clock: %s", cfg.Clock)
	}

	txs, err := replay.ReadTransactions(cfg.In)
	if err != nil {
		return err
	}

	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	rt := runtime.New(runtime.Config{
		AMMProgramID:          ammID,
		GovernanceProgramID:   govID,
		RequireSignatures:     cfg.RequireSignatures,
		TrustRecordTimestamps: cfg.TrustTimestamps,
	}, store, clk, logger)

	runner := replay.NewRunner(replay.RunConfig{
		FromSequence: cfg.FromSequence,
		ToSequence:   cfg.ToSequence,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, rt, storage.NewJsonlStorage(cfg.Out), storage.NewJsonlStorage(cfg.Errors), logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("ledger", cfg.Ledger),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("transactions", len(txs)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("clock", cfg.Clock),
		zap.Bool("require_signatures", cfg.RequireSignatures),
		zap.Bool("trust_timestamps", cfg.TrustTimestamps),
	)

	stats, err := runner.Run(ctx, txs)
	if err != nil {
		return err
	}

	logger.Info("replay complete",
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.Int("skipped", stats.Skipped),
	)
	return nil
}
