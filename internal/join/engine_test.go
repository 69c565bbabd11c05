package join

import (
	"context"
	"testing"

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
	vars    map[string]string
}

type fixture struct {
	t       *testing.T
	model   *graph.Model
	targets map[string]*domain.Target
	threads []*domain.ThreadInstance
}

func newFixture(t *testing.T, configure func(b *dsl.JoinBuilder)) *fixture {
	t.Helper()
	b := dsl.New()
	c := b.Fragment("client")
	c.Node("C1").RequestStart().On("send", "C2")
	c.Node("C2").Terminal("SUCCESS")
	s := b.Fragment("server")
	s.Node("S1").Start().On("recv", "S2")
	s.Node("S2").End()
	b.Thread("client", "client").Thread("server", "server")
	configure(b.Join("rpc").From("client.send").To("server.recv"))

	model, err := b.Build()
	require.NoError(t, err)
	return &fixture{t: t, model: model, targets: make(map[string]*domain.Target)}
}

func (f *fixture) thread(component, host, thread string, events ...event) *domain.ThreadInstance {
	f.t.Helper()
	target, ok := f.targets[host]
	if !ok {
		target = &domain.Target{Host: host, Name: "proc"}
		f.targets[host] = target
	}
	key := domain.ThreadKey{Host: host, Target: target.Name, Thread: thread}

	var ls []*domain.Line
	for _, ev := range events {
		ls = append(ls, &domain.Line{
			Reserved: domain.Reserved{
				Component: component, Host: host, Target: target.Name, Thread: thread, Seconds: ev.seconds,
			},
			Keyword: ev.keyword,
			Vars:    ev.vars,
		})
	}
	out := replay.New(f.model).Replay(context.Background(), target, key, ls)
	require.Len(f.t, out.Instances, 1)
	f.threads = append(f.threads, out.Instances...)
	return out.Instances[0]
}

func tid(v string) map[string]string {
	return map[string]string{"tid": v}
}

func TestMatch_RemoteViolatedBeforeCorrection(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote().Key("tid") })
	a := f.thread("client", "H1", "a", event{"send", 10.0, tid("7")})
	b := f.thread("server", "H2", "b", event{"recv", 9.0, tid("7")})

	out, err := New(f.model).Match(context.Background(), f.threads)
	require.NoError(t, err)

	require.Len(t, out.Joins, 1)
	iv := out.Joins[0]
	assert.Same(t, a.First(), iv.From)
	assert.Same(t, b.First(), iv.To)
	assert.Equal(t, domain.JoinRemote, iv.JoinType)
	assert.True(t, iv.Violated())
	assert.Equal(t, 1, out.Stats.Violated)
	assert.Equal(t, 1, out.Stats.ByType["remote"])
	assert.Empty(t, out.Empty)
}

func TestMatch_OneConsumesTargets(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote().Key("tid") })
	f.thread("client", "H1", "a", event{"send", 1, tid("7")})
	f.thread("client", "H1", "b", event{"send", 2, tid("7")})
	first := f.thread("server", "H2", "x", event{"recv", 3, tid("7")})
	second := f.thread("server", "H2", "y", event{"recv", 4, tid("7")})
	f.thread("server", "H2", "z", event{"recv", 5, tid("8")})

	out, err := New(f.model).Match(context.Background(), f.threads)
	require.NoError(t, err)

	require.Len(t, out.Joins, 2)
	assert.Same(t, first.First(), out.Joins[0].To)
	assert.Same(t, second.First(), out.Joins[1].To)

	seen := make(map[*domain.Pace]int)
	for _, iv := range out.Joins {
		seen[iv.To]++
		v1, _ := iv.From.Get("tid")
		v2, _ := iv.To.Get("tid")
		assert.Equal(t, v1, v2)
	}
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}

	require.Len(t, out.Empty, 1)
	assert.Equal(t, RoleTarget, out.Empty[0].Role)
	assert.Equal(t, 1, out.Stats.Declarations[0].EmptyTargets)
}

func TestMatch_AllAndAny(t *testing.T) {
	for name, tc := range map[string]struct {
		configure func(*dsl.JoinBuilder)
		want      int
	}{
		"all": {func(j *dsl.JoinBuilder) { j.Remote().All().Key("tid") }, 4},
		"any": {func(j *dsl.JoinBuilder) { j.Remote().Any().Key("tid") }, 2},
		"one": {func(j *dsl.JoinBuilder) { j.Remote().Key("tid") }, 2},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, tc.configure)
			f.thread("client", "H1", "a", event{"send", 1, tid("7")})
			f.thread("client", "H1", "b", event{"send", 2, tid("7")})
			f.thread("server", "H2", "x", event{"recv", 3, tid("7")})
			f.thread("server", "H2", "y", event{"recv", 4, tid("7")})

			out, err := New(f.model).Match(context.Background(), f.threads)
			require.NoError(t, err)
			assert.Len(t, out.Joins, tc.want)
		})
	}
}

func TestMatch_LocalRequiresSameHostAndOrder(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Key("tid") })
	f.thread("client", "H1", "a", event{"send", 5, tid("1")})
	f.thread("server", "H2", "x", event{"recv", 6, tid("1")})
	f.thread("server", "H1", "y", event{"recv", 4, tid("1")})
	local := f.thread("server", "H1", "z", event{"recv", 7, tid("1")})

	out, err := New(f.model).Match(context.Background(), f.threads)
	require.NoError(t, err)

	require.Len(t, out.Joins, 1)
	assert.Same(t, local.First(), out.Joins[0].To)
	assert.Equal(t, domain.JoinLocal, out.Joins[0].JoinType)
}

func TestMatch_LocalRemote(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote().Key("tid") })
	f.thread("client", "H1", "a", event{"send", 1, tid("1")})
	f.thread("server", "H1", "x", event{"recv", 2, tid("1")})

	out, err := New(f.model).Match(context.Background(), f.threads)
	require.NoError(t, err)
	require.Len(t, out.Joins, 1)
	assert.Equal(t, domain.JoinLocalRemote, out.Joins[0].JoinType)
}

func TestMatch_AbsentRequestDoesNotDisqualify(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote().Key("tid", "request") })
	f.thread("client", "H1", "a", event{"send", 1, map[string]string{"tid": "1"}})
	f.thread("server", "H2", "x", event{"recv", 2, map[string]string{"tid": "1"}})

	out, err := New(f.model).Match(context.Background(), f.threads)
	require.NoError(t, err)
	assert.Len(t, out.Joins, 1)
}

func TestMatch_ScopedByHost(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote().Key("host") })
	f.thread("client", "H1", "a", event{"send", 1, nil})
	f.thread("server", "H2", "x", event{"recv", 2, nil})
	same := f.thread("server", "H1", "y", event{"recv", 3, nil})

	out, err := New(f.model).Match(context.Background(), f.threads)
	require.NoError(t, err)
	require.Len(t, out.Joins, 1)
	assert.Same(t, same.First(), out.Joins[0].To)
}

func TestMatch_Idempotent(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote().Key("tid") })
	for i, v := range []string{"1", "2", "1", "3"} {
		f.thread("client", "H1", "c"+v+string(rune('a'+i)), event{"send", float64(i), tid(v)})
		f.thread("server", "H2", "s"+v+string(rune('a'+i)), event{"recv", float64(i) + 0.5, tid(v)})
	}

	e := New(f.model, WithWorkers(2))
	first, err := e.Match(context.Background(), f.threads)
	require.NoError(t, err)
	second, err := e.Match(context.Background(), f.threads)
	require.NoError(t, err)

	type pair struct{ from, to *domain.Pace }
	collectPairs := func(o *Outcome) map[pair]int {
		m := make(map[pair]int)
		for _, iv := range o.Joins {
			m[pair{iv.From, iv.To}]++
		}
		return m
	}
	assert.Equal(t, collectPairs(first), collectPairs(second))
	assert.Len(t, first.Joins, 4)
}

func TestLink(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote().Key("tid") })
	a := f.thread("client", "H1", "a", event{"send", 1, tid("1")})
	b := f.thread("server", "H2", "x", event{"recv", 2, tid("1")})

	out, err := New(f.model).Match(context.Background(), f.threads)
	require.NoError(t, err)
	assert.Empty(t, a.First().JoinsOut)

	Link(out.Joins)
	assert.Len(t, a.First().JoinsOut, 1)
	assert.Len(t, b.First().JoinsIn, 1)
}

func TestMatch_Cancelled(t *testing.T) {
	f := newFixture(t, func(j *dsl.JoinBuilder) { j.Remote() })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f.model).Match(ctx, f.threads)
	assert.ErrorIs(t, err, context.Canceled)
}
