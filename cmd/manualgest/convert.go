package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/manualgest/internal/config"
	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/pipeline"
)

var timeNow = time.Now

var convertCmd = &cobra.Command{
	Use:   "convert [manual...]",
	Short: "Convert manuals to JSON",
	Long: `Convert extracts the text of each manual's source document, recognises
themes, criteria, task groups and tasks, and writes the assembled tree to
<output-dir>/bovest-<manual>.json. Without arguments every manual is converted.

Manuals are processed one at a time. A manual that cannot be read or written
is reported and the others are still converted; the exit status is 1 if any
manual failed.`,
	Example: `  manualgest convert
  manualgest convert nybyg "simpel sag" --output-dir build
  manualgest convert renovering --date 2025-01-01 --pdftotext=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := cfg.Logger(os.Stderr)
		log.Info("starting manualgest", "version", version, "input_dir", cfg.InputDir, "output_dir", cfg.OutputDir, "manual_version", cfg.Version, "date", cfg.Date)

		orch := pipeline.NewOrchestrator(cfg, manuals.Default(), log)
		sum, err := orch.Run(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sum.Render())
		if !sum.OK() {
			return errFailed
		}
		return nil
	},
}

func init() {
	f := convertCmd.Flags()
	f.String("input-dir", "", "directory searched for source documents (default manuals/pdf)")
	f.String("output-dir", "", "directory the JSON files are written to (default manuals/build)")
	f.String("version", "", "version string stamped on each manual (default 1.0.0)")
	f.String("date", "", "version date, RFC 3339 or YYYY-MM-DD (default now)")
	f.Bool("pdftotext", true, "fall back to pdftotext -layout when installed")
	f.Bool("derive-description", false, "take the description from the cover page when present")

	viper.BindPFlag(config.KeyInputDir, f.Lookup("input-dir"))
	viper.BindPFlag(config.KeyOutputDir, f.Lookup("output-dir"))
	viper.BindPFlag(config.KeyVersion, f.Lookup("version"))
	viper.BindPFlag(config.KeyDate, f.Lookup("date"))
	viper.BindPFlag(config.KeyPdftotext, f.Lookup("pdftotext"))
	viper.BindPFlag(config.KeyDeriveDescription, f.Lookup("derive-description"))

	rootCmd.AddCommand(convertCmd)
}
