package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadReplayPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("batch-size: 50\nledger: /tmp/from-file\nclock: RPC\n"), 0o644))
	t.Setenv("AMMGOV_MAX_RETRIES", "9")

	flags := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	flags.String("ledger", "./data/ledger", "")
	flags.Uint64("batch-size", 500, "")
	require.NoError(t, flags.Parse([]string{"--ledger", "/tmp/from-flag"}))

	cfg, err := LoadReplay(cfgFile, flags)
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-flag", cfg.Ledger)
	require.Equal(t, uint64(50), cfg.BatchSize)
	require.Equal(t, 9, cfg.MaxRetries)
	require.Equal(t, "rpc", cfg.Clock)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	require.True(t, cfg.RequireSignatures)
}

func TestLoadInspectAddresses(t *testing.T) {
	flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	flags.StringSlice("address", nil, "")
	require.NoError(t, flags.Parse([]string{"--address", " a ,b", "--address", "c"}))

	cfg, err := LoadInspect(writeEmptyConfig(t), flags)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, cfg.Addresses)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadAggregateDefaults(t *testing.T) {
	cfg, err := LoadAggregate(writeEmptyConfig(t), nil)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.Window)
	require.Equal(t, uint64(300), cfg.WindowSeconds())
	require.Equal(t, 1000, cfg.BatchSize)
	require.False(t, cfg.InitSchema)
}

func TestLoadAggregateRejectsBadWindow(t *testing.T) {
	flags := pflag.NewFlagSet("aggregate", pflag.ContinueOnError)
	flags.String("window", "5m", "")
	flags.String("recompute-from", "", "")

	require.NoError(t, flags.Parse([]string{"--window", "500ms"}))
	_, err := LoadAggregate(writeEmptyConfig(t), flags)
	require.ErrorContains(t, err, "at least 1s")

	require.NoError(t, flags.Parse([]string{"--window", "1h", "--recompute-from", "2023-11-14T22:13:20Z"}))
	cfg, err := LoadAggregate(writeEmptyConfig(t), flags)
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), cfg.RecomputeFrom)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("")
	require.NoError(t, err)
	require.Zero(t, ts)

	ts, err = ParseTimestamp("1700000000")
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), ts)

	ts, err = ParseTimestamp("2023-11-14T22:13:20Z")
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), ts)

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}

func writeEmptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
	return path
}
