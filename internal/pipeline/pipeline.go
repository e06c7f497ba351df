// Package pipeline wires the load, parse, aggregate, filter and render
// stages into a single batch run.
//
// A run either completes every stage or fails as a whole: the first stage
// error (a missing resource or any malformed line) aborts the run before
// anything is written, so a caller never sees a partial report.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/atikulmunna/logtally/internal/aggregator"
	"github.com/atikulmunna/logtally/internal/filter"
	"github.com/atikulmunna/logtally/internal/output"
	"github.com/atikulmunna/logtally/internal/parser"
	"github.com/atikulmunna/logtally/internal/source"
	"github.com/google/uuid"
)

// State is a stage of a pipeline run.
type State int

const (
	Idle State = iota
	Loading
	Parsing
	Aggregating
	Filtering
	Rendering
	Done
	Failed
)

var stateNames = [...]string{"idle", "loading", "parsing", "aggregating", "filtering", "rendering", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// StageError records the stage a run failed in.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options controls a single run.
type Options struct {
	Level string           // level to list in the detail section; empty skips filtering
	Order aggregator.Order // row order of the count table
}

// Pipeline holds the collaborators of a run. It keeps no state between
// runs and is safe for concurrent use when its collaborators are.
type Pipeline struct {
	loader   source.Loader
	parser   parser.Parser
	renderer output.Renderer
	logger   *slog.Logger
}

// New creates a Pipeline. A nil logger uses slog.Default().
func New(loader source.Loader, p parser.Parser, r output.Renderer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{loader: loader, parser: p, renderer: r, logger: logger}
}

// run tracks the state of one invocation.
type run struct {
	state  State
	logger *slog.Logger
}

func (r *run) enter(s State) {
	r.logger.Debug("pipeline stage", "from", r.state.String(), "to", s.String())
	r.state = s
}

func (r *run) fail(err error) error {
	stage := r.state
	r.logger.Debug("pipeline failed", "stage", stage.String(), "error", err)
	r.state = Failed
	return &StageError{Stage: stage, Err: err}
}

// Run executes every stage except rendering and returns the report.
func (p *Pipeline) Run(ctx context.Context, location string, opts Options) (output.Report, error) {
	r := &run{logger: p.logger.With("run_id", uuid.NewString(), "location", location)}
	rep, err := p.run(ctx, r, location, opts)
	if err != nil {
		return output.Report{}, err
	}
	r.enter(Done)
	return rep, nil
}

func (p *Pipeline) run(ctx context.Context, r *run, location string, opts Options) (output.Report, error) {
	r.enter(Loading)
	lines, err := p.loader.Load(location)
	if err != nil {
		return output.Report{}, r.fail(err)
	}

	r.enter(Parsing)
	if err := ctx.Err(); err != nil {
		return output.Report{}, r.fail(err)
	}
	entries, err := parser.ParseAll(p.parser, lines)
	if err != nil {
		return output.Report{}, r.fail(err)
	}

	r.enter(Aggregating)
	if err := ctx.Err(); err != nil {
		return output.Report{}, r.fail(err)
	}
	rep := output.Report{
		Counts: aggregator.Count(entries),
		Order:  opts.Order,
	}
	r.logger.Debug("aggregated", "entries", rep.Counts.Total(), "levels", rep.Counts.Len())

	if opts.Level != "" {
		r.enter(Filtering)
		rep.Filtered = true
		rep.Level = filter.Normalize(opts.Level)
		rep.Entries = filter.ByLevel(entries, opts.Level)
		r.logger.Debug("filtered", "level", rep.Level, "matches", len(rep.Entries))
	}
	return rep, nil
}

// Execute runs the pipeline and writes the rendered report to w. Nothing is
// written unless every stage succeeds.
func (p *Pipeline) Execute(ctx context.Context, w io.Writer, location string, opts Options) error {
	r := &run{logger: p.logger.With("run_id", uuid.NewString(), "location", location)}
	rep, err := p.run(ctx, r, location, opts)
	if err != nil {
		return err
	}

	r.enter(Rendering)
	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, rep); err != nil {
		return r.fail(err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return r.fail(err)
	}
	r.enter(Done)
	return nil
}
