package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/atikulmunna/logtally/internal/config"
	"github.com/atikulmunna/logtally/internal/logging"
	"github.com/atikulmunna/logtally/internal/pipeline"
	"github.com/atikulmunna/logtally/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

// NewRootCmd builds the command tree with its own configuration instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:   "logtally <location> [level]",
		Short: "logtally: count log lines by severity level",
		Long: `logtally reads "date time level message" log lines, counts them by level
and prints an aligned table. With a level argument it also lists every line
of that level. A single malformed line rejects the whole input.

Examples:
  logtally app.log
  logtally app.log error
  logtally "logs/**/*.log.gz" --sort count --output json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid by now; later failures are not usage errors.
			cmd.SilenceUsage = true
			return a.init(cmd.ErrOrStderr())
		},
		RunE: a.runReport,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: $HOME/.logtally.yaml)")
	flags.StringP("output", "o", "text", "output format: text, json")
	flags.String("locale", "en", "table titles: en, uk")
	flags.Bool("color", false, "colorize the level column")
	flags.String("sort", "seen", "row order: seen, count, level")
	flags.String("pattern", "", "regex with named groups date, time, level, message")
	flags.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	flags.String("log-format", "text", "diagnostic log format: text, json")
	flags.Duration("debounce", 250*time.Millisecond, "coalescing window for change events (watch, serve)")

	for key, flag := range map[string]string{
		"output":     "output",
		"locale":     "locale",
		"color":      "color",
		"sort":       "sort",
		"pattern":    "pattern",
		"log_level":  "log-level",
		"log_format": "log-format",
		"debounce":   "debounce",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(newWatchCmd(a), newServeCmd(a))
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) init(stderr io.Writer) error {
	home, _ := os.UserHomeDir()
	if err := config.ReadFile(a.v, a.cfgFile, home); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Setup(stderr, cfg.LogLevel, cfg.LogFormat)
	return nil
}

func (a *app) newPipeline() (*pipeline.Pipeline, error) {
	p, err := a.cfg.Parser()
	if err != nil {
		return nil, err
	}
	r, err := a.cfg.Renderer()
	if err != nil {
		return nil, err
	}
	return pipeline.New(source.NewFileSource(), p, r, a.logger), nil
}

func (a *app) options(args []string) pipeline.Options {
	opts := pipeline.Options{Order: a.cfg.Sort}
	if len(args) > 1 {
		opts.Level = args[1]
	}
	return opts
}

func (a *app) runReport(cmd *cobra.Command, args []string) error {
	p, err := a.newPipeline()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return p.Execute(ctx, cmd.OutOrStdout(), args[0], a.options(args))
}
