package assemble

import (
	"context"
	"slices"
	"testing"

	"github.com/aretw0/stitch/internal/join"
	"github.com/aretw0/stitch/internal/replay"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/dsl"
	"github.com/aretw0/stitch/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	keyword string
	seconds float64
	tid     string
	request string
}

type pipeline struct {
	t       *testing.T
	model   *graph.Model
	threads []*domain.ThreadInstance
}

// rpcModel: the client sends, the server receives and responds, the client
// reads the reply. An audit thread may observe the server receive.
func rpcModel(t *testing.T, extra func(b *dsl.Builder)) *graph.Model {
	t.Helper()
	b := dsl.New()
	c := b.Fragment("client")
	c.Node("C1").RequestStart().On("send", "C2")
	c.Node("C2").On("reply", "C3")
	c.Node("C3").Terminal("SUCCESS")

	s := b.Fragment("server")
	s.Node("S1").Start().On("recv", "S2")
	s.Node("S2").On("respond", "S3")
	s.Node("S3").End()

	a := b.Fragment("audit")
	a.Node("A1").Start().On("audit", "A2")
	a.Node("A2").End()

	b.Thread("client", "client").Thread("server", "server").Thread("audit", "audit")
	b.Join("rpc").From("client.send").To("server.recv").Remote().Key("tid")
	b.Join("resp").From("server.respond").To("client.reply").Remote().Key("tid")
	b.Join("audit").From("server.recv").To("audit.audit").Remote().Key("tid")
	if extra != nil {
		extra(b)
	}

	model, err := b.Build()
	require.NoError(t, err)
	return model
}

func newPipeline(t *testing.T, model *graph.Model) *pipeline {
	return &pipeline{t: t, model: model}
}

func (p *pipeline) thread(component, host, thread string, events ...event) {
	p.t.Helper()
	target := &domain.Target{Host: host, Name: "proc"}
	key := domain.ThreadKey{Host: host, Target: target.Name, Thread: thread}
	var ls []*domain.Line
	for _, ev := range events {
		ls = append(ls, &domain.Line{
			Reserved: domain.Reserved{
				Component: component, Host: host, Target: target.Name, Thread: thread,
				Seconds: ev.seconds, Request: ev.request,
			},
			Keyword: ev.keyword,
			Vars:    map[string]string{"tid": ev.tid},
		})
	}
	out := replay.New(p.model).Replay(context.Background(), target, key, ls)
	p.threads = append(p.threads, out.Instances...)
}

func (p *pipeline) run() *Outcome {
	p.t.Helper()
	joined, err := join.New(p.model).Match(context.Background(), p.threads)
	require.NoError(p.t, err)
	join.Link(joined.Joins)
	return New(p.model).Assemble(context.Background(), p.threads)
}

func (p *pipeline) request(id, tid string, base float64) {
	p.thread("client", "H1", "c-"+id, event{"send", base + 1, tid, id}, event{"reply", base + 4, tid, ""})
	p.thread("server", "H2", "s-"+id, event{"recv", base + 2, tid, ""}, event{"respond", base + 3, tid, ""})
}

func TestAssemble_ValidRequest(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	p.request("r1", "7", 0)

	out := p.run()

	require.Len(t, out.Requests, 1)
	r := out.Requests["r1"]
	require.NotNil(t, r)
	assert.True(t, r.Valid())
	assert.Equal(t, "SUCCESS", r.State)
	assert.Len(t, r.Threads, 2)
	assert.Len(t, r.Joins, 2)
	assert.InDelta(t, 3.0, r.Lapse(), 1e-9)
	assert.Equal(t, []string{"H1", "H2"}, r.Hosts())
	assert.Equal(t, "7", r.Vars["tid"])

	path := slices.Collect(r.MainPath())
	require.Len(t, path, 3)
	assert.Equal(t, domain.IntervalJoin, path[0].Kind)
	assert.Equal(t, domain.IntervalThread, path[1].Kind)
	assert.Equal(t, domain.IntervalJoin, path[2].Kind)
	assert.Same(t, r.StartPace(), path[0].From)
	assert.Same(t, r.EndPace(), path[2].To)
	for _, iv := range path {
		assert.True(t, iv.IsMain)
	}
	// restartable
	assert.Len(t, slices.Collect(r.MainPath()), 3)

	assert.Equal(t, 1, out.Stats.Requests)
	assert.Equal(t, 3, out.Stats.MainPathIntervals)
	assert.Empty(t, out.Failed)
}

func TestAssemble_StrayThread(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	p.request("r1", "7", 0)
	p.thread("audit", "H3", "a", event{"audit", 2.5, "7", ""})

	out := p.run()

	r := out.Requests["r1"]
	require.NotNil(t, r)
	assert.Len(t, r.Threads, 3)
	require.Len(t, r.Warnings[domain.WarnStrayThread], 1)
	assert.Contains(t, r.Warnings[domain.WarnStrayThread][0], "H3/proc/a")
	assert.Equal(t, 1, out.Stats.Stray)
}

func TestAssemble_MultipleRequests(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	p.thread("client", "H1", "c", event{"send", 1, "7", "r1"}, event{"reply", 4, "7", ""})
	p.thread("server", "H2", "s", event{"recv", 2, "7", "r2"}, event{"respond", 3, "7", ""})

	out := p.run()

	assert.Empty(t, out.Requests)
	require.Len(t, out.Failed[domain.ErrMultipleRequests], 1)
	assert.Equal(t, 1, out.Stats.Failed["multiple_requests"])
}

func TestAssemble_Unidentified(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	p.request("", "7", 0)

	out := p.run()

	assert.Empty(t, out.Requests)
	require.Len(t, out.Unidentified, 1)
	assert.Len(t, out.Unidentified[0].Threads, 2)
}

func TestAssemble_MissingEnd(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	p.thread("client", "H1", "c", event{"send", 1, "7", "r1"})
	p.thread("server", "H2", "s", event{"recv", 2, "7", ""}, event{"respond", 3, "7", ""})

	out := p.run()

	assert.Empty(t, out.Requests)
	require.Len(t, out.Failed[domain.ErrMissingEnd], 1)
}

func TestAssemble_DuplicateRequest(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	p.request("r1", "7", 0)
	p.request("r1", "8", 10)

	out := p.run()

	assert.Empty(t, out.Requests)
	assert.Len(t, out.Failed[domain.ErrDuplicateRequest], 2)
}

func TestAssemble_AmbiguousMainPath(t *testing.T) {
	model := rpcModel(t, func(b *dsl.Builder) {
		b.Join("resp-copy").From("server.respond").To("client.reply").Remote().Key("tid")
	})
	p := newPipeline(t, model)
	p.request("r1", "7", 0)

	out := p.run()

	assert.Empty(t, out.Requests)
	require.Len(t, out.Failed[domain.ErrAmbiguousMainPath], 1)
}

func TestAssemble_ThreadPredecessorFallback(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	// the reply carries another tid, so no join reaches it
	p.thread("client", "H1", "c", event{"send", 1, "7", "r1"}, event{"reply", 4, "9", ""})
	p.thread("server", "H2", "s", event{"recv", 2, "7", ""}, event{"respond", 3, "7", ""})

	out := p.run()

	r := out.Requests["r1"]
	require.NotNil(t, r)
	assert.Len(t, slices.Collect(r.MainPath()), 1)
	assert.Contains(t, r.Warnings[domain.WarnStrayThread], "H2/proc/s#0")
	assert.NotEmpty(t, r.Warnings[domain.WarnDuplicateVariable])
}

func TestAssemble_BrokenMainPath(t *testing.T) {
	model := rpcModel(t, func(b *dsl.Builder) {
		k := b.Fragment("closer")
		k.Node("K1").Start().On("close", "K2")
		k.Node("K2").Terminal("CLOSED")
		b.Thread("closer", "closer")
		b.Join("close-audit").From("closer.close").To("audit.audit").Remote().Key("tid")
	})
	p := newPipeline(t, model)
	p.thread("client", "H1", "c", event{"send", 1, "7", "r1"})
	p.thread("server", "H2", "s", event{"recv", 2, "7", ""})
	p.thread("audit", "H3", "a", event{"audit", 3, "7", ""})
	p.thread("closer", "H4", "k", event{"close", 2.5, "7", ""})

	out := p.run()

	assert.Empty(t, out.Requests)
	require.Len(t, out.Failed[domain.ErrBrokenMainPath], 1)
	assert.Len(t, out.Failed[domain.ErrBrokenMainPath][0].Threads, 4)
}

func TestAssemble_ValidRequestsHaveOneStartAndEnd(t *testing.T) {
	p := newPipeline(t, rpcModel(t, nil))
	for i, id := range []string{"a", "b", "c"} {
		p.request(id, id, float64(i*10))
	}

	out := p.run()

	require.Len(t, out.Requests, 3)
	for _, r := range out.Requests {
		assert.NotNil(t, r.Start)
		assert.NotNil(t, r.End)
		path := slices.Collect(r.MainPath())
		require.NotEmpty(t, path)
		assert.Same(t, r.Start.First(), path[0].From)
	}
}

func TestAssemble_SharedDispatcherInterleaved(t *testing.T) {
	b := dsl.New()
	c := b.Fragment("client")
	c.Node("C1").RequestStart().On("send", "C2")
	c.Node("C2").On("reply", "C3")
	c.Node("C3").Terminal("SUCCESS")

	d := b.Fragment("dispatcher")
	d.Node("D0").Start().On("boot", "D1")
	d.Node("D1").On("accept", "D1").On("forward", "D1").On("halt", "D2")
	d.Node("D2").End()

	s := b.Fragment("server")
	s.Node("S1").Start().On("recv", "S2")
	s.Node("S2").On("respond", "S3")
	s.Node("S3").End()

	b.Thread("client", "client").Thread("dispatcher", "dispatcher").Thread("server", "server")
	b.Shared("dispatcher")
	b.Join("enqueue").From("client.send").To("dispatcher.accept").Remote().Key("tid")
	b.Join("dispatch").From("dispatcher.forward").To("server.recv").Remote().Key("tid")
	b.Join("resp").From("server.respond").To("client.reply").Remote().Key("tid")
	model, err := b.Build()
	require.NoError(t, err)

	p := newPipeline(t, model)
	p.thread("client", "H1", "c1", event{"send", 1, "1", "r1"}, event{"reply", 10, "1", ""})
	p.thread("client", "H1", "c2", event{"send", 2, "2", "r2"}, event{"reply", 11, "2", ""})
	p.thread("dispatcher", "H2", "d",
		event{"boot", 0, "", ""},
		event{"accept", 3, "1", ""},
		event{"accept", 4, "2", ""},
		event{"forward", 5, "1", ""},
		event{"forward", 6, "2", ""},
	)
	p.thread("server", "H3", "s1", event{"recv", 7, "1", ""}, event{"respond", 8, "1", ""})
	p.thread("server", "H3", "s2", event{"recv", 7.5, "2", ""}, event{"respond", 8.5, "2", ""})

	out := p.run()

	assert.Empty(t, out.Failed)
	require.Len(t, out.Requests, 2)
	for id, tid := range map[string]string{"r1": "1", "r2": "2"} {
		r := out.Requests[id]
		require.NotNil(t, r, id)
		path := slices.Collect(r.MainPath())
		require.Len(t, path, 5, id)
		assert.Same(t, r.StartPace(), path[0].From)
		assert.Same(t, r.EndPace(), path[4].To)
		for _, iv := range path {
			assert.Equal(t, tid, iv.From.Line.Vars["tid"], id)
			assert.Equal(t, tid, iv.To.Line.Vars["tid"], id)
		}
		assert.Empty(t, r.Warnings[domain.WarnStrayThread])
	}
}
