package replay

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
	"github.com/aretw0/stitch/pkg/report"
)

// Engine replays line sequences against a read-only graph model.
// One Engine may replay many threads concurrently.
type Engine struct {
	model    *graph.Model
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxDepth int
}

// New creates a replay engine.
func New(model *graph.Model, opts ...Option) *Engine {
	e := &Engine{model: model}
	defaults(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dangling is a line no thread instance could consume.
type Dangling struct {
	Line   *domain.Line
	Reason domain.DanglingReason
}

// Outcome is the result of replaying one thread.
type Outcome struct {
	Instances []*domain.ThreadInstance
	Dangling  []Dangling
	Stats     report.ReplayStats
}

// step is a successful match: the keyword edge consumed and where the thread rests.
type step struct {
	edge domain.EdgeID
	next Cursor
}

// Replay walks lines in order. Lines are expected sorted by timestamp; a line the
// open instance would consume without advancing past its last pace is set aside
// as out of order. A line the open instance cannot consume stops it and is tried
// against the start nodes, whatever its timestamp.
func (e *Engine) Replay(ctx context.Context, target *domain.Target, key domain.ThreadKey, lines []*domain.Line) *Outcome {
	r := &run{engine: e, ctx: ctx, target: target, key: key, out: &Outcome{}}
	r.out.Stats.Threads = 1
	r.out.Stats.Lines = len(lines)

	for _, line := range lines {
		r.feed(line)
	}
	r.stop(false)

	e.logger.Debug("thread replayed",
		"thread", key.String(),
		"lines", len(lines),
		"instances", len(r.out.Instances),
		"dangling", len(r.out.Dangling))
	return r.out
}

// match tries the outgoing edges of c.Node against keyword, first hit wins.
// Call edges descend into the callee's start nodes without consuming the line.
func (e *Engine) match(c Cursor, keyword string) (step, bool) {
	if c.Depth() > e.maxDepth {
		return step{}, false
	}
	for _, id := range e.model.Node(c.Node).Out {
		edge := e.model.Edge(id)
		switch edge.Kind {
		case domain.EdgeKeyword:
			if strings.Contains(keyword, edge.Keyword) {
				return step{edge: id, next: e.settle(c.at(edge.To))}, true
			}
		case domain.EdgeCall:
			inner := c.push(id)
			for _, s := range e.model.FragmentStarts(edge.Callee) {
				if st, ok := e.match(inner.at(s), keyword); ok {
					return st, true
				}
			}
		}
	}
	return step{}, false
}

// settle returns from every sub-automaton whose end node has been reached.
func (e *Engine) settle(c Cursor) Cursor {
	for c.Depth() > 0 && e.model.Node(c.Node).End {
		var call domain.EdgeID
		c, call = c.pop()
		c.Node = e.model.Edge(call).To
	}
	return c
}

// open tries every start node registered for the line's component.
func (e *Engine) open(line *domain.Line) (domain.NodeID, step, domain.DanglingReason, bool) {
	starts, ok := e.model.Starts(line.Component)
	if !ok {
		return domain.NoNode, step{}, domain.DanglingUnknownComponent, false
	}
	for _, s := range starts {
		if st, ok := e.match(Cursor{Node: s}, line.Keyword); ok {
			return s, st, "", true
		}
	}
	return domain.NoNode, step{}, domain.DanglingNoMatch, false
}

// run is the mutable state of one Replay call.
type run struct {
	engine *Engine
	ctx    context.Context
	target *domain.Target
	key    domain.ThreadKey
	out    *Outcome

	current *domain.ThreadInstance
	cursor  Cursor
}

func (r *run) feed(line *domain.Line) {
	if r.current != nil {
		if st, ok := r.engine.match(r.cursor, line.Keyword); ok {
			if last := r.current.Last(); line.Seconds <= last.RawSeconds() {
				r.dangle(line, domain.DanglingOutOfOrder)
				return
			}
			r.consume(line, st)
			return
		}
		r.stop(false)
	}

	initial, st, reason, ok := r.engine.open(line)
	if !ok {
		r.dangle(line, reason)
		return
	}

	seq := len(r.out.Instances)
	r.current = domain.NewThreadInstance(r.key, seq, line.Component, r.target, initial)
	r.current.Shared = r.engine.model.IsShared(initial)
	r.out.Instances = append(r.out.Instances, r.current)
	r.consume(line, st)
}

func (r *run) consume(line *domain.Line, st step) {
	m := r.engine.model
	edge := m.Edge(st.edge)

	p := &domain.Pace{Line: line, Edge: st.edge, From: edge.From, To: st.next.Node}
	r.current.Append(p)
	r.cursor = st.next

	if conflicts := r.current.Merge(line); len(conflicts) > 0 {
		r.out.Stats.DuplicateVars += len(conflicts)
		r.engine.logger.Debug("conflicting thread variable",
			"thread", r.current.Name(), "vars", conflicts, "line", line.Number)
	}
	r.current.AddMarks(m.Node(st.next.Node).Marks)
	r.current.Final = st.next.Node
	r.out.Stats.Paces++
	r.out.Stats.CountEdge(edge.Name)

	to := m.Node(st.next.Node)
	if to.End && st.next.Depth() == 0 {
		r.current.RequestState = to.RequestState
		r.stop(true)
	}
}

// stop closes the current instance, if any.
func (r *run) stop(complete bool) {
	t := r.current
	if t == nil {
		return
	}
	t.Complete = complete
	r.current = nil
	r.cursor = Cursor{}

	r.out.Stats.Instances++
	if complete {
		r.out.Stats.Complete++
	} else {
		r.out.Stats.Incomplete++
	}
	for _, mark := range t.Marks {
		r.out.Stats.CountMark(mark)
	}

	if r.engine.hooks.OnThreadInstance != nil {
		r.engine.hooks.OnThreadInstance(r.ctx, t)
	}
}

func (r *run) dangle(line *domain.Line, reason domain.DanglingReason) {
	r.out.Dangling = append(r.out.Dangling, Dangling{Line: line, Reason: reason})
	r.out.Stats.Dangling++
	switch reason {
	case domain.DanglingOutOfOrder:
		r.out.Stats.OutOfOrder++
	case domain.DanglingUnknownComponent:
		r.out.Stats.UnknownComponent++
	}

	if r.engine.hooks.OnDangling != nil {
		r.engine.hooks.OnDangling(r.ctx, line, reason)
	}
}
