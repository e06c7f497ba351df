package cmd

import (
	"fmt"

	"github.com/atikulmunna/logtally/internal/hub"
	"github.com/atikulmunna/logtally/internal/source"
	"github.com/atikulmunna/logtally/internal/server"
	"github.com/atikulmunna/logtally/internal/watcher"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <location>",
		Short: "Serve reports for a location over HTTP and WebSocket",
		Long: `Start an HTTP server for one location.

  GET /healthz           server and location status
  GET /api/report        fresh JSON report (?level=, ?sort=)
  GET /ws                report snapshots pushed after every file change`,
		Args: cobra.ExactArgs(1),
		RunE: a.runServe,
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	_ = a.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	location := args[0]
	paths, err := source.Resolve(location)
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

	snapshots := make(chan hub.Snapshot, 1)
	h := hub.New(snapshots, a.logger)
	go w.Start(ctx)
	go h.Start(ctx)

	// Publish a fresh snapshot at startup and after every change.
	go func() {
		defer close(snapshots)
		opts := a.options(args)
		publish := func() {
			rep, err := p.Run(ctx, location, opts)
			if err != nil {
				a.logger.Warn("report failed", "location", location, "error", err)
			}
			select {
			case snapshots <- hub.NewSnapshot(rep, err):
			case <-ctx.Done():
			}
		}
		publish()
		for range w.Events {
			publish()
		}
	}()

	a.logger.Info("serving reports", "addr", a.cfg.Addr, "location", location, "files", len(paths))
	srv := server.New(p, h, location, a.cfg.Sort, a.cfg.Addr, a.logger)
	return srv.Start(ctx)
}
