package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/stitch/internal/logging"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
	"github.com/aretw0/stitch/pkg/report"
)

// Outcome is the result of assembly.
type Outcome struct {
	// Requests holds the valid requests keyed by request id.
	Requests map[string]*domain.RequestInstance
	// Failed files the requests excluded from Requests by their first error kind.
	Failed map[domain.ErrorKind][]*domain.RequestInstance
	// Unidentified holds components that carry no request id.
	Unidentified []*domain.RequestInstance
	Stats        report.AssembleStats
}

// Assembler builds request instances from linked thread instances.
type Assembler struct {
	model  *graph.Model
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Assembler.
type Option func(*Assembler)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assembler) {
		a.hooks = hooks
	}
}

// New creates an assembler.
func New(model *graph.Model, opts ...Option) *Assembler {
	a := &Assembler{model: model, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble expects join back-references to be linked on the paces.
func (a *Assembler) Assemble(ctx context.Context, threads []*domain.ThreadInstance) *Outcome {
	out := &Outcome{
		Requests: make(map[string]*domain.RequestInstance),
		Failed:   make(map[domain.ErrorKind][]*domain.RequestInstance),
	}

	ordered := slices.Clone(threads)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Key != ordered[j].Key {
			return ordered[i].Key.Less(ordered[j].Key)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	visited := make(map[*domain.ThreadInstance]bool, len(ordered))
	var candidates []*domain.RequestInstance
	for _, t := range ordered {
		if visited[t] || t.Shared {
			continue
		}
		threads, joins := component(t, visited)
		out.Stats.Components++
		candidates = append(candidates, a.identify(threads, joins))
	}

	owners := make(map[string][]*domain.RequestInstance)
	for _, r := range candidates {
		switch {
		case r.ID == "" && r.Valid():
			out.Unidentified = append(out.Unidentified, r)
			out.Stats.Unidentified++
		case r.Valid():
			owners[r.ID] = append(owners[r.ID], r)
		default:
			a.fail(out, r)
		}
	}

	ids := make([]string, 0, len(owners))
	for id := range owners {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rs := owners[id]
		if len(rs) > 1 {
			for _, r := range rs {
				r.AddError(domain.ErrDuplicateRequest, fmt.Sprintf("request %s spans %d disconnected components", id, len(rs)))
				a.fail(out, r)
			}
			continue
		}

		r := rs[0]
		a.validate(r)
		if !r.Valid() {
			a.fail(out, r)
			continue
		}

		out.Requests[id] = r
		out.Stats.Requests++
		out.Stats.Stray += len(r.Warnings[domain.WarnStrayThread])
		out.Stats.MainPathIntervals += len(slices.Collect(r.MainPath()))
		if a.hooks.OnRequest != nil {
			a.hooks.OnRequest(ctx, r)
		}
	}

	a.logger.Debug("requests assembled",
		"components", out.Stats.Components,
		"requests", out.Stats.Requests,
		"failed", len(out.Failed),
		"unidentified", out.Stats.Unidentified)
	return out
}

func (a *Assembler) fail(out *Outcome, r *domain.RequestInstance) {
	kind := r.ErrorKinds()[0]
	out.Failed[kind] = append(out.Failed[kind], r)
	out.Stats.CountFailure(string(kind))
	a.logger.Debug("request rejected", "request", r.ID, "errors", r.ErrorKinds())
}

// component collects every thread instance reachable from root through joins in
// either direction. Shared instances are included but not traversed.
func component(root *domain.ThreadInstance, visited map[*domain.ThreadInstance]bool) ([]*domain.ThreadInstance, []*domain.Interval) {
	var threads []*domain.ThreadInstance
	var joins []*domain.Interval
	seenJoin := make(map[*domain.Interval]bool)
	inComponent := make(map[*domain.ThreadInstance]bool)

	queue := []*domain.ThreadInstance{root}
	inComponent[root] = true
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		threads = append(threads, t)
		if !t.Shared {
			visited[t] = true
		} else {
			continue
		}

		for _, p := range t.Paces {
			for _, iv := range slices.Concat(p.JoinsOut, p.JoinsIn) {
				if !seenJoin[iv] {
					seenJoin[iv] = true
					joins = append(joins, iv)
				}
				for _, next := range []*domain.ThreadInstance{iv.From.Thread, iv.To.Thread} {
					if !inComponent[next] {
						inComponent[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
	}
	return threads, joins
}

// identify names the component by the request ids of its non-shared threads.
func (a *Assembler) identify(threads []*domain.ThreadInstance, joins []*domain.Interval) *domain.RequestInstance {
	var ids []string
	for _, t := range threads {
		if t.Shared {
			continue
		}
		for _, id := range t.Requests {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)

	var r *domain.RequestInstance
	switch len(ids) {
	case 0:
		r = domain.NewRequestInstance("", threads)
	case 1:
		r = domain.NewRequestInstance(ids[0], threads)
	default:
		r = domain.NewRequestInstance(strings.Join(ids, ","), threads)
		r.AddError(domain.ErrMultipleRequests, "ids: "+strings.Join(ids, ", "))
	}
	r.Joins = joins
	return r
}

// validate locates start and end threads, walks the main path and records warnings.
func (a *Assembler) validate(r *domain.RequestInstance) {
	for _, t := range r.Threads {
		if t.Shared {
			continue
		}
		if a.model.Node(t.Initial).RequestStart {
			if r.Start != nil {
				r.AddError(domain.ErrDuplicateStart, t.Name())
			} else {
				r.Start = t
			}
		}
		if t.Complete && t.RequestState != "" {
			if r.End != nil {
				r.AddError(domain.ErrDuplicateEnd, t.Name())
			} else {
				r.End = t
				r.State = t.RequestState
			}
		}
	}
	if r.Start == nil {
		r.AddError(domain.ErrMissingStart, "no thread opened the request")
	}
	if r.End == nil {
		r.AddError(domain.ErrMissingEnd, "no thread reached a terminal state")
	}
	if !r.Valid() {
		return
	}

	members := make(map[*domain.ThreadInstance]bool, len(r.Threads))
	for _, t := range r.Threads {
		members[t] = true
	}
	path, kind, detail := walk(r.Start.First(), r.End.Last(), members)
	if kind != "" {
		r.AddError(kind, detail)
		return
	}
	onPath := make(map[*domain.ThreadInstance]bool)
	for _, iv := range path {
		iv.IsMain = true
		onPath[iv.From.Thread] = true
		onPath[iv.To.Thread] = true
	}
	onPath[r.Start] = true
	r.SetMainPath(path)

	for _, t := range r.Threads {
		if !onPath[t] && !t.Shared {
			r.AddWarning(domain.WarnStrayThread, t.Name())
		}
		if !t.Complete && !t.Shared {
			r.AddWarning(domain.WarnIncompleteThread, t.Name())
		}
		a.aggregate(r, t)
	}
}

// aggregate folds thread variables into the request, first value wins.
func (a *Assembler) aggregate(r *domain.RequestInstance, t *domain.ThreadInstance) {
	keys := make([]string, 0, len(t.Vars))
	for k := range t.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := t.Vars[k]
		existing, ok := r.Vars[k]
		switch {
		case !ok:
			r.Vars[k] = v
		case existing != v && !t.Shared:
			r.AddWarning(domain.WarnDuplicateVariable, fmt.Sprintf("%s: %s != %s (%s)", k, v, existing, t.Name()))
		}
	}
	for _, k := range sortedKeys(t.Conflicts) {
		r.AddWarning(domain.WarnDuplicateVariable, fmt.Sprintf("%s: %s (%s)", k, strings.Join(t.Conflicts[k], ", "), t.Name()))
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
