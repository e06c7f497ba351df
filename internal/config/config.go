package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atikulmunna/logtally/internal/aggregator"
	"github.com/atikulmunna/logtally/internal/output"
	"github.com/atikulmunna/logtally/internal/parser"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LOGTALLY"

// Config holds all logtally settings.
type Config struct {
	Output    string
	Locale    string
	Color     bool
	Sort      aggregator.Order
	Pattern   string
	LogLevel  string
	LogFormat string
	Addr      string
	Debounce  time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "text")
	v.SetDefault("locale", "en")
	v.SetDefault("color", false)
	v.SetDefault("sort", string(aggregator.OrderSeen))
	v.SetDefault("pattern", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("addr", ":8080")
	v.SetDefault("debounce", 250*time.Millisecond)
}

// ReadFile points v at a config file, or at .logtally.* in the home and
// working directories when file is empty, and reads it. A missing default
// file is not an error; a missing explicit file is.
func ReadFile(v *viper.Viper, file, home string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	if home != "" {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigName(".logtally")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Output:    strings.ToLower(strings.TrimSpace(v.GetString("output"))),
		Locale:    v.GetString("locale"),
		Color:     v.GetBool("color"),
		Pattern:   v.GetString("pattern"),
		LogLevel:  v.GetString("log_level"),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		Addr:      strings.TrimSpace(v.GetString("addr")),
		Debounce:  v.GetDuration("debounce"),
	}

	var err error
	if cfg.Sort, err = aggregator.ParseOrder(v.GetString("sort")); err != nil {
		return Config{}, err
	}
	if cfg.Output != "text" && cfg.Output != "json" {
		return Config{}, fmt.Errorf("unknown output format %q (want text or json)", cfg.Output)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("unknown log format %q (want text or json)", cfg.LogFormat)
	}
	if _, err := output.LabelsFor(cfg.Locale); err != nil {
		return Config{}, err
	}
	if cfg.Pattern != "" {
		if _, err := parser.NewRegexParser(cfg.Pattern); err != nil {
			return Config{}, fmt.Errorf("pattern: %w", err)
		}
	}
	if cfg.Debounce < 0 {
		return Config{}, fmt.Errorf("debounce must not be negative, got %s", cfg.Debounce)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}

// Parser builds the line parser for the configured pattern.
func (c Config) Parser() (parser.Parser, error) {
	return parser.New(c.Pattern)
}

// Renderer builds the report renderer for the configured output.
func (c Config) Renderer() (output.Renderer, error) {
	labels, err := output.LabelsFor(c.Locale)
	if err != nil {
		return nil, err
	}
	return output.New(c.Output, labels, c.Color)
}
