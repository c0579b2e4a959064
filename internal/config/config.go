package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "AMMGOV"

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Ledger              string
	In                  string
	Out                 string
	Errors              string
	FromSequence        uint64
	ToSequence          uint64
	BatchSize           uint64
	MaxRetries          int
	RetryBackoff        time.Duration
	AMMProgramID        string
	GovernanceProgramID string
	RequireSignatures   bool
	TrustTimestamps     bool
	Clock               string
	RPCURL              string
	LogLevel            string
	LogFile             string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"ledger":             "./data/ledger",
		"out":                "./data/events.jsonl",
		"errors":             "./data/errors.jsonl",
		"batch-size":         uint64(500),
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"require-signatures": true,
		"trust-timestamps":   false,
		"clock":              "system",
		"log-level":          "info",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		Ledger:              v.GetString("ledger"),
		In:                  v.GetString("in"),
		Out:                 v.GetString("out"),
		Errors:              v.GetString("errors"),
		FromSequence:        v.GetUint64("from"),
		ToSequence:          v.GetUint64("to"),
		BatchSize:           v.GetUint64("batch-size"),
		MaxRetries:          v.GetInt("max-retries"),
		RetryBackoff:        v.GetDuration("retry-backoff"),
		AMMProgramID:        v.GetString("amm-program"),
		GovernanceProgramID: v.GetString("governance-program"),
		RequireSignatures:   v.GetBool("require-signatures"),
		TrustTimestamps:     v.GetBool("trust-timestamps"),
		Clock:               strings.ToLower(v.GetString("clock")),
		RPCURL:              v.GetString("rpc"),
		LogLevel:            v.GetString("log-level"),
		LogFile:             v.GetString("log-file"),
	}

	return cfg, nil
}

// newViper builds a viper instance with env, flag and optional file layers.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
