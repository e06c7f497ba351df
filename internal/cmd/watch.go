package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atikulmunna/logtally/internal/pipeline"
	"github.com/atikulmunna/logtally/internal/source"
	"github.com/atikulmunna/logtally/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <location> [level]",
		Short: "Re-print the report whenever the log files change",
		Long: `Print the report, then run the whole pipeline again and print a fresh
report each time one of the resolved files changes. A failed run prints its
error and keeps watching.

Examples:
  logtally watch /var/log/app.log
  logtally watch "/var/log/**/*.log" warn`,
		Args: cobra.RangeArgs(1, 2),
		RunE: a.runWatch,
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	paths, err := source.Resolve(args[0])
	if err != nil {
		return err
	}
	p, err := a.newPipeline()
	if err != nil {
		return err
	}

	w, err := watcher.New(paths, a.cfg.Debounce, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	go w.Start(ctx)

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	opts := a.options(args)
	rerun := func() { reportOnce(ctx, p, out, errOut, args[0], opts) }

	a.logger.Info("watching files", "count", len(w.Paths()))
	rerun()
	for ev := range w.Events {
		a.logger.Debug("change detected", "path", ev.Path, "op", ev.Op.String())
		fmt.Fprintln(out)
		rerun()
	}
	return nil
}

// reportOnce runs the pipeline and prints any failure to errOut. A run cut
// short by shutdown is not a failure and prints nothing.
func reportOnce(ctx context.Context, p *pipeline.Pipeline, out, errOut io.Writer, location string, opts pipeline.Options) {
	if err := p.Execute(ctx, out, location, opts); err != nil && ctx.Err() == nil {
		fmt.Fprintln(errOut, "Error:", err)
	}
}
