// Package config loads run settings from flags, MANUALGEST_* environment
// variables and an optional manualgest.yaml through viper.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. MANUALGEST_OUTPUT_DIR.
const EnvPrefix = "MANUALGEST"

// Keys shared by flags, environment and config file.
const (
	KeyInputDir          = "input_dir"
	KeyOutputDir         = "output_dir"
	KeyVersion           = "version"
	KeyDate              = "date"
	KeyPdftotext         = "pdftotext_fallback"
	KeyDeriveDescription = "derive_description"
	KeyLogLevel          = "log_level"
	KeyLogFormat         = "log_format"
	KeySources           = "sources"
)

type Config struct {
	InputDir  string `mapstructure:"input_dir"`
	OutputDir string `mapstructure:"output_dir"`

	// Version entry stamped on every manual.
	Version string `mapstructure:"version"`
	Date    string `mapstructure:"date"`

	// PDF
	PdftotextFallback bool `mapstructure:"pdftotext_fallback"`

	DeriveDescription bool `mapstructure:"derive_description"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Explicit source file per manual key; wins over discovery in InputDir.
	Sources map[string]string `mapstructure:"sources"`
}

// SetDefaults registers every key so environment overrides apply to all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyInputDir, filepath.Join("manuals", "pdf"))
	v.SetDefault(KeyOutputDir, filepath.Join("manuals", "build"))
	v.SetDefault(KeyVersion, "1.0.0")
	v.SetDefault(KeyDate, "")
	v.SetDefault(KeyPdftotext, true)
	v.SetDefault(KeyDeriveDescription, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeySources, map[string]string{})
}

// Init prepares v: defaults, environment binding, and the config file. An
// explicit cfgFile must exist; otherwise manualgest.yaml is looked up in the
// working directory and ~/.config/manualgest and may be absent.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}
	v.SetConfigName("manualgest")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "manualgest"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config. An empty date becomes now in UTC.
func Load(v *viper.Viper, now time.Time) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Date == "" {
		cfg.Date = now.UTC().Format(time.RFC3339)
	}
	if cfg.Sources == nil {
		cfg.Sources = map[string]string{}
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return cfg, nil
}

func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%s is required", KeyInputDir)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%s is required", KeyOutputDir)
	}
	if c.Version == "" {
		return fmt.Errorf("%s is required", KeyVersion)
	}
	if _, err := ParseDate(c.Date); err != nil {
		return fmt.Errorf("%s: %w", KeyDate, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%s must be json or text, got %q", KeyLogFormat, c.LogFormat)
	}
	return nil
}

// ParseDate accepts RFC 3339 timestamps and plain dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%s: unknown level %q", KeyLogLevel, c.LogLevel)
	}
	return l, nil
}

// Logger builds the run logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
