package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/loginthemes/internal/config"
)

var configInitOpts struct {
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the loginthemes configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Long: `Write the effective configuration (defaults, the existing file and
--plugin-dir) to --config, or ~/.config/loginthemes/config.toml.

An existing file is only replaced with --force.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipInit: "true"},
	RunE:        runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipInit: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVar(&configInitOpts.force, "force", false,
		"Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFilePath()

	if _, err := os.Stat(path); err == nil && !configInitOpts.force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func configFilePath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}
