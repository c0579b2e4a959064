package config

import (
	"github.com/spf13/pflag"
)

// InspectConfig holds configuration for the inspect command.
type InspectConfig struct {
	Ledger              string
	Addresses           []string
	AMMProgramID        string
	GovernanceProgramID string
	All                 bool
	LogLevel            string
}

// LoadInspect merges config file, environment variables, and flags into InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"ledger":    "./data/ledger",
		"log-level": "warn",
	})
	if err != nil {
		return InspectConfig{}, err
	}

	return InspectConfig{
		Ledger:              v.GetString("ledger"),
		Addresses:           getStringSlice(v, "address"),
		AMMProgramID:        v.GetString("amm-program"),
		GovernanceProgramID: v.GetString("governance-program"),
		All:                 v.GetBool("all"),
		LogLevel:            v.GetString("log-level"),
	}, nil
}
