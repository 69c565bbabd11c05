package join

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/stitch/internal/logging"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
	"github.com/aretw0/stitch/pkg/report"
)

// Role tells which side of a join declaration a pace stood on.
type Role string

const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
)

// Empty is a pace left without partner by a join declaration.
type Empty struct {
	Join *domain.JoinSpec
	Pace *domain.Pace
	Role Role
}

// Outcome is the result of Match.
type Outcome struct {
	Joins []*domain.Interval
	Empty []Empty
	Stats report.JoinStats
}

// Engine matches join declarations of a graph model.
type Engine struct {
	model   *graph.Model
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	workers int
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithWorkers bounds the number of declarations matched concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates a join engine.
func New(model *graph.Model, opts ...Option) *Engine {
	e := &Engine{model: model, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// declResult is what one declaration produced.
type declResult struct {
	joins []*domain.Interval
	empty []Empty
	stats report.JoinDeclStats
}

// Match runs every join declaration over the paces of threads.
// Declarations are independent and run concurrently; results keep declaration order.
func (e *Engine) Match(ctx context.Context, threads []*domain.ThreadInstance) (*Outcome, error) {
	byEdge := collect(threads)
	specs := e.model.Joins()
	results := make([]declResult, len(specs))

	g, gCtx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i, spec := range specs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = e.matchDecl(spec, byEdge[spec.From], byEdge[spec.To])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{Stats: report.JoinStats{ByType: make(map[string]int)}}
	for _, r := range results {
		out.Joins = append(out.Joins, r.joins...)
		out.Empty = append(out.Empty, r.empty...)
		out.Stats.Declarations = append(out.Stats.Declarations, r.stats)
	}
	for _, iv := range out.Joins {
		out.Stats.ByType[string(iv.JoinType)]++
		if iv.Violated() {
			out.Stats.Violated++
		}
		if e.hooks.OnJoin != nil {
			e.hooks.OnJoin(ctx, iv)
		}
	}

	e.logger.Debug("joins matched",
		"declarations", len(specs),
		"joins", len(out.Joins),
		"empty", len(out.Empty))
	return out, nil
}

// Link installs join back-references on the paces. Call it once per Match result.
func Link(joins []*domain.Interval) {
	for _, iv := range joins {
		iv.From.JoinsOut = append(iv.From.JoinsOut, iv)
		iv.To.JoinsIn = append(iv.To.JoinsIn, iv)
	}
}

// collect groups paces by matched edge, in chronological order.
func collect(threads []*domain.ThreadInstance) map[domain.EdgeID][]*domain.Pace {
	byEdge := make(map[domain.EdgeID][]*domain.Pace)
	for _, t := range threads {
		for _, p := range t.Paces {
			byEdge[p.Edge] = append(byEdge[p.Edge], p)
		}
	}
	for _, paces := range byEdge {
		sortPaces(paces)
	}
	return byEdge
}

// sortPaces orders by timestamp, then thread key, instance and position, so ties are stable.
func sortPaces(paces []*domain.Pace) {
	sort.SliceStable(paces, func(i, j int) bool {
		a, b := paces[i], paces[j]
		if sa, sb := a.Seconds(), b.Seconds(); sa != sb {
			return sa < sb
		}
		if a.Thread.Key != b.Thread.Key {
			return a.Thread.Key.Less(b.Thread.Key)
		}
		if a.Thread.Seq != b.Thread.Seq {
			return a.Thread.Seq < b.Thread.Seq
		}
		return a.Index < b.Index
	})
}

func (e *Engine) matchDecl(spec *domain.JoinSpec, sources, targets []*domain.Pace) declResult {
	res := declResult{stats: report.JoinDeclStats{
		Name:    spec.Name,
		Sources: len(sources),
		Targets: len(targets),
	}}

	idx := newIndex(spec.Schema, targets)
	matched := make(map[*domain.Pace]bool, len(targets))

	for _, src := range sources {
		found := false
		for _, tgt := range idx.candidates(src) {
			if spec.Cardinality == domain.One && matched[tgt] {
				continue
			}
			if !admissible(spec, src, tgt) {
				continue
			}

			res.joins = append(res.joins, &domain.Interval{
				Kind:     domain.IntervalJoin,
				From:     src,
				To:       tgt,
				Join:     spec,
				JoinType: classify(spec, src, tgt),
			})
			matched[tgt] = true
			found = true
			if spec.Cardinality != domain.All {
				break
			}
		}
		if !found {
			res.empty = append(res.empty, Empty{Join: spec, Pace: src, Role: RoleSource})
		}
	}

	for _, tgt := range targets {
		if !matched[tgt] {
			res.empty = append(res.empty, Empty{Join: spec, Pace: tgt, Role: RoleTarget})
		}
	}

	res.stats.Matched = len(res.joins)
	for _, em := range res.empty {
		if em.Role == RoleSource {
			res.stats.EmptySources++
		} else {
			res.stats.EmptyTargets++
		}
	}
	return res
}

// admissible applies the schema and placement rules to one candidate pair.
func admissible(spec *domain.JoinSpec, src, tgt *domain.Pace) bool {
	if src.Thread == tgt.Thread {
		return false
	}
	if !spec.Remote {
		if src.Host() != tgt.Host() || tgt.Seconds() < src.Seconds() {
			return false
		}
	}
	return spec.Schema.Match(src, tgt)
}

func classify(spec *domain.JoinSpec, src, tgt *domain.Pace) domain.JoinType {
	switch {
	case !spec.Remote:
		return domain.JoinLocal
	case src.Host() == tgt.Host():
		return domain.JoinLocalRemote
	default:
		return domain.JoinRemote
	}
}
