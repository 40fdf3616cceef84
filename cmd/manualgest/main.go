// Package main is the entry point for the manualgest CLI, which converts the
// BO-VEST sustainability manuals into hierarchical JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/manualgest/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// errFailed is returned when at least one manual was not written. The
// details have already been logged and summarised.
var errFailed = errors.New("one or more manuals failed")

var rootCmd = &cobra.Command{
	Use:   "manualgest",
	Short: "Convert the BO-VEST sustainability manuals to JSON",
	Long: `manualgest reads the Nybyg, Simpel Sag and Renovering sustainability
manuals (PDF, with DOCX and plain text accepted as sources) and writes one JSON
file per manual in the Theme, Criterion, Task Group, Task, Task Item schema.

Settings come from flags, MANUALGEST_* environment variables and an optional
manualgest.yaml in the working directory or ~/.config/manualgest.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		return config.Init(viper.GetViper(), cfgFile)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./manualgest.yaml or ~/.config/manualgest/manualgest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "json", "log format: json or text")
	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
}

// loadConfig decodes and validates the merged settings.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper(), timeNow())
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
