package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	root := &cobra.Command{
		Use:          "ammgov",
		Short:        "Constant-product pools and proposal voting on a local ledger",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Execute recorded transactions against the ledger",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("ledger", "./data/ledger", "ledger directory")
	replayCmd.Flags().String("in", "", "input transactions JSONL")
	replayCmd.Flags().String("out", "./data/events.jsonl", "output typed events JSONL")
	replayCmd.Flags().String("errors", "./data/errors.jsonl", "rejected transactions JSONL")
	replayCmd.Flags().Uint64("from", 0, "first sequence (inclusive)")
	replayCmd.Flags().Uint64("to", 0, "last sequence (inclusive), 0 means end of input")
	replayCmd.Flags().Uint64("batch-size", 500, "sequences per batch")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts for journal writes")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("amm-program", "", "pool program id (base58)")
	replayCmd.Flags().String("governance-program", "", "governance program id (base58)")
	replayCmd.Flags().Bool("require-signatures", true, "reject unsigned transactions")
	replayCmd.Flags().Bool("trust-timestamps", false, "run records at their signed timestamp (trusted history only)")
	replayCmd.Flags().String("clock", "system", "host clock (system, rpc)")
	replayCmd.Flags().String("rpc", "", "EVM RPC URL for the rpc clock")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	replayCmd.Flags().String("log-file", "", "optional rotating log file")

	root.AddCommand(replayCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate typed events into window metrics and snapshots",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("in", "./data/events.jsonl", "input typed events JSONL")
	aggregateCmd.Flags().String("window", "5m", "aggregation window (e.g. 1m, 5m, 1h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	aggregateCmd.Flags().Bool("init-schema", false, "create tables before aggregating")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	aggregateCmd.Flags().String("log-file", "", "optional rotating log file")

	root.AddCommand(aggregateCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print decoded ledger accounts",
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("ledger", "./data/ledger", "ledger directory")
	inspectCmd.Flags().StringSlice("address", nil, "account addresses (comma-separated)")
	inspectCmd.Flags().Bool("all", false, "print every account")
	inspectCmd.Flags().String("amm-program", "", "pool program id (base58)")
	inspectCmd.Flags().String("governance-program", "", "governance program id (base58)")
	inspectCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap, deposit or withdrawal offline",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("kind", "swap", "quote kind (swap, deposit, withdraw)")
	quoteCmd.Flags().Uint64("reserve-a", 0, "token A reserve")
	quoteCmd.Flags().Uint64("reserve-b", 0, "token B reserve")
	quoteCmd.Flags().Uint64("supply", 0, "LP supply")
	quoteCmd.Flags().Uint16("fee-rate", 30, "fee in basis points")
	quoteCmd.Flags().Uint64("amount-in", 0, "swap input")
	quoteCmd.Flags().Bool("a-to-b", true, "swap direction")
	quoteCmd.Flags().Uint64("amount-a", 0, "deposit amount of token A")
	quoteCmd.Flags().Uint64("amount-b", 0, "deposit amount of token B")
	quoteCmd.Flags().Uint64("lp", 0, "LP tokens to redeem")

	root.AddCommand(quoteCmd)

	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign unsigned transactions with a keypair file",
		RunE:  runSign,
	}

	signCmd.Flags().String("key", "", "solana keygen keypair file")
	signCmd.Flags().String("in", "", "input transactions JSONL")
	signCmd.Flags().String("out", "", "output signed transactions JSONL")

	root.AddCommand(signCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file == "" {
		return cfg.Build()
	}

	rotating := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	})
	encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), cfg.Level),
		zapcore.NewCore(encoder, rotating, cfg.Level),
	)
	return zap.New(core, zap.AddCaller()), nil
}
