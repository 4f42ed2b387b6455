package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"emptylines/internal/config"
)

func addRuleFlags(cmd *cobra.Command) {
	cmd.Flags().Int("threshold", 0, "minimum number of consecutive empty lines to report (>= 2, overrides config)")
	cmd.Flags().String("severity", "", "severity of reported runs: error|warning|info (overrides config)")
}

// loadConfig resolves the configuration for target and applies rule flag
// overrides on top of it.
func loadConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	startDir, err := configStartDir(target)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(explicit, startDir)
	if err != nil {
		return nil, err
	}

	overridden := false
	if cmd.Flags().Lookup("threshold") != nil && cmd.Flags().Changed("threshold") {
		if cfg.Rule.Threshold, err = cmd.Flags().GetInt("threshold"); err != nil {
			return nil, fmt.Errorf("failed to get threshold flag: %w", err)
		}
		overridden = true
	}
	if cmd.Flags().Lookup("severity") != nil && cmd.Flags().Changed("severity") {
		if cfg.Rule.Severity, err = cmd.Flags().GetString("severity"); err != nil {
			return nil, fmt.Errorf("failed to get severity flag: %w", err)
		}
		overridden = true
	}
	if overridden {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func configStartDir(target string) (string, error) {
	if target == "" || target == "-" {
		return os.Getwd()
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return target, nil
	}
	return filepath.Dir(target), nil
}
