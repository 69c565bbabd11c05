package stitch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/stitch/internal/assemble"
	"github.com/aretw0/stitch/internal/clock"
	"github.com/aretw0/stitch/internal/join"
	"github.com/aretw0/stitch/internal/logging"
	"github.com/aretw0/stitch/internal/replay"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/report"
)

const tracerName = "github.com/aretw0/stitch"

// Engine is the high-level entry point of the library.
// It runs the whole reconstruction pipeline over one batch of lines.
type Engine struct {
	model *graph.Model

	replay   *replay.Engine
	join     *join.Engine
	assemble *assemble.Assembler

	store          ports.RequestStore
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	workers        int
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
}

// New creates an engine for a compiled graph model.
func New(model *graph.Model, opts ...Option) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("graph model is required")
	}

	eng := &Engine{model: model}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", eng.workers)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.tracerProvider == nil {
		eng.tracerProvider = otel.GetTracerProvider()
	}
	eng.tracer = eng.tracerProvider.Tracer(tracerName, trace.WithInstrumentationVersion(Version))

	eng.replay = replay.New(model, replay.WithLogger(eng.logger), replay.WithLifecycleHooks(eng.hooks))
	eng.join = join.New(model, join.WithLogger(eng.logger), join.WithLifecycleHooks(eng.hooks), join.WithWorkers(eng.workers))
	eng.assemble = assemble.New(model, assemble.WithLogger(eng.logger), assemble.WithLifecycleHooks(eng.hooks))
	return eng, nil
}

// Model returns the graph model the engine replays against.
func (e *Engine) Model() *graph.Model {
	return e.model
}

// Result is everything one run produced.
type Result struct {
	RunID string

	// Requests holds the valid requests keyed by request id.
	Requests     map[string]*domain.RequestInstance
	Failed       map[domain.ErrorKind][]*domain.RequestInstance
	Unidentified []*domain.RequestInstance

	Threads    []*domain.ThreadInstance
	Joins      []*domain.Interval
	Dangling   []replay.Dangling
	EmptyJoins []join.Empty

	// Targets carry the applied clock offsets.
	Targets []*domain.Target
	// Offsets are solved from the remote joins of valid requests only; those joins
	// never run backwards after correction. Remote joins elsewhere are counted in
	// Report.Clock.Unconstrained and may stay violated.
	Offsets map[string]float64

	Report *report.RunReport
}

// Run replays every thread of src, joins, assembles and synchronizes clocks.
// A clock contradiction aborts the run with a *clock.ContradictionError.
func (e *Engine) Run(ctx context.Context, src ports.LineSource) (*Result, error) {
	res := &Result{RunID: uuid.Must(uuid.NewV7()).String()}
	res.Report = &report.RunReport{RunID: res.RunID}
	logger := e.logger.With("run_id", res.RunID)

	ctx, span := e.tracer.Start(ctx, "stitch.run", trace.WithAttributes(attribute.String("stitch.run_id", res.RunID)))
	defer span.End()

	err := e.run(ctx, logger, src, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info("run finished",
		"threads", len(res.Threads),
		"joins", len(res.Joins),
		"requests", len(res.Requests),
		"failed", res.Report.Assemble.Failed,
		"dangling", res.Report.Replay.Dangling)
	return res, nil
}

func (e *Engine) run(ctx context.Context, logger *slog.Logger, src ports.LineSource, res *Result) error {
	if err := e.replayAll(ctx, src, res); err != nil {
		return err
	}
	if err := e.joinAll(ctx, res); err != nil {
		return err
	}
	e.assembleAll(ctx, res)
	if err := e.synchronize(ctx, logger, res); err != nil {
		return err
	}
	res.Report.UnseenEdges = report.Unseen(e.model.EdgeNames(), res.Report.Replay.SeenEdges)
	return e.persist(ctx, res)
}

func (e *Engine) replayAll(ctx context.Context, src ports.LineSource, res *Result) error {
	ctx, span := e.tracer.Start(ctx, "stitch.replay")
	defer span.End()

	keys, err := src.Threads(ctx)
	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}

	targets := newTargetRegistry()
	outcomes := make([]*replay.Outcome, len(keys))

	g, gCtx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i, key := range keys {
		target := targets.get(key.Host, key.Target)
		g.Go(func() error {
			lines, err := src.Lines(gCtx, key)
			if err != nil {
				return fmt.Errorf("failed to read lines of %s: %w", key, err)
			}
			outcomes[i] = e.replay.Replay(gCtx, target, key, lines)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, out := range outcomes {
		res.Threads = append(res.Threads, out.Instances...)
		res.Dangling = append(res.Dangling, out.Dangling...)
		res.Report.Replay.Merge(out.Stats)
	}
	res.Targets = targets.list()

	span.SetAttributes(
		attribute.Int("stitch.threads", len(keys)),
		attribute.Int("stitch.instances", len(res.Threads)),
		attribute.Int("stitch.dangling", len(res.Dangling)),
	)
	return nil
}

func (e *Engine) joinAll(ctx context.Context, res *Result) error {
	ctx, span := e.tracer.Start(ctx, "stitch.join")
	defer span.End()

	out, err := e.join.Match(ctx, res.Threads)
	if err != nil {
		return fmt.Errorf("failed to match joins: %w", err)
	}
	join.Link(out.Joins)

	res.Joins = out.Joins
	res.EmptyJoins = out.Empty
	res.Report.Join = out.Stats
	span.SetAttributes(attribute.Int("stitch.joins", len(out.Joins)))
	return nil
}

func (e *Engine) assembleAll(ctx context.Context, res *Result) {
	ctx, span := e.tracer.Start(ctx, "stitch.assemble")
	defer span.End()

	out := e.assemble.Assemble(ctx, res.Threads)
	res.Requests = out.Requests
	res.Failed = out.Failed
	res.Unidentified = out.Unidentified
	res.Report.Assemble = out.Stats
	span.SetAttributes(attribute.Int("stitch.requests", len(out.Requests)))
}

// synchronize solves host offsets from the remote joins of valid requests and applies them.
func (e *Engine) synchronize(ctx context.Context, logger *slog.Logger, res *Result) error {
	_, span := e.tracer.Start(ctx, "stitch.clock")
	defer span.End()

	var remote []*domain.Interval
	evidence := make(map[*domain.Interval]bool)
	for _, id := range sortedIDs(res.Requests) {
		for _, iv := range res.Requests[id].Joins {
			if iv.IsRemote() {
				remote = append(remote, iv)
				evidence[iv] = true
			}
		}
	}
	var unconstrained []*domain.Interval
	for _, iv := range res.Joins {
		if iv.IsRemote() && !evidence[iv] {
			unconstrained = append(unconstrained, iv)
		}
	}

	system := clock.FromJoins(remote)
	for _, t := range res.Targets {
		system.AddHost(t.Host)
	}
	stats := &res.Report.Clock
	stats.ViolatedBefore = clock.CountViolated(remote)

	offsets, err := system.Solve()
	if err != nil {
		logger.Error("clock synchronization failed", "error", err)
		return fmt.Errorf("failed to synchronize clocks: %w", err)
	}
	clock.Apply(offsets, res.Targets)

	res.Offsets = offsets
	stats.Hosts = len(offsets)
	stats.Relations = len(system.Relations())
	stats.Offsets = offsets
	stats.ViolatedAfter = clock.CountViolated(remote)
	stats.Unconstrained = len(unconstrained)
	stats.UnconstrainedViolated = clock.CountViolated(unconstrained)
	if stats.UnconstrainedViolated > 0 {
		logger.Warn("remote joins outside valid requests still violated",
			"count", stats.UnconstrainedViolated, "unconstrained", stats.Unconstrained)
	}
	span.SetAttributes(
		attribute.Int("stitch.hosts", stats.Hosts),
		attribute.Int("stitch.violated_before", stats.ViolatedBefore),
	)
	return nil
}

func (e *Engine) persist(ctx context.Context, res *Result) error {
	if e.store == nil {
		return nil
	}
	for _, id := range sortedIDs(res.Requests) {
		if err := e.store.Save(ctx, Summarize(e.model, res.RunID, res.Requests[id])); err != nil {
			return fmt.Errorf("failed to store request %s: %w", id, err)
		}
	}
	return nil
}

func sortedIDs(requests map[string]*domain.RequestInstance) []string {
	ids := make([]string, 0, len(requests))
	for id := range requests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// targetRegistry hands out one Target per (host, target) so offsets apply to every thread of a process.
type targetRegistry struct {
	byKey map[[2]string]*domain.Target
	order []*domain.Target
}

func newTargetRegistry() *targetRegistry {
	return &targetRegistry{byKey: make(map[[2]string]*domain.Target)}
}

func (r *targetRegistry) get(host, name string) *domain.Target {
	key := [2]string{host, name}
	if t, ok := r.byKey[key]; ok {
		return t
	}
	t := &domain.Target{Host: host, Name: name}
	r.byKey[key] = t
	r.order = append(r.order, t)
	return t
}

func (r *targetRegistry) list() []*domain.Target {
	return r.order
}
