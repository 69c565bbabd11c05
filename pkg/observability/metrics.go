package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/report"
)

// Metrics holds the collectors fed by the pipeline.
type Metrics struct {
	ThreadInstances *prometheus.CounterVec
	DanglingLines   *prometheus.CounterVec
	Joins           *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	Failures        *prometheus.CounterVec
	HostOffset      *prometheus.GaugeVec
	UnseenEdges     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ThreadInstances: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_thread_instances_total",
				Help: "Thread instances produced by replay",
			},
			[]string{"component", "complete"},
		),
		DanglingLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_dangling_lines_total",
				Help: "Lines no thread instance could consume",
			},
			[]string{"reason"},
		),
		Joins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_joins_total",
				Help: "Join intervals created",
			},
			[]string{"join", "type"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_requests_total",
				Help: "Valid requests assembled",
			},
			[]string{"state"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_request_failures_total",
				Help: "Requests rejected by validation",
			},
			[]string{"kind"},
		),
		HostOffset: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stitch_host_offset_seconds",
				Help: "Clock offset applied to a host",
			},
			[]string{"host"},
		),
		UnseenEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stitch_unseen_edges",
				Help: "Graph edges no line matched in the last run",
			},
		),
	}
	reg.MustRegister(m.ThreadInstances, m.DanglingLines, m.Joins, m.Requests, m.Failures, m.HostOffset, m.UnseenEdges)
	return m
}

// Hooks returns lifecycle hooks that feed the counters. Collectors are safe for concurrent use.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnThreadInstance: func(_ context.Context, t *domain.ThreadInstance) {
			m.ThreadInstances.WithLabelValues(t.Component, strconv.FormatBool(t.Complete)).Inc()
		},
		OnDangling: func(_ context.Context, _ *domain.Line, reason domain.DanglingReason) {
			m.DanglingLines.WithLabelValues(string(reason)).Inc()
		},
		OnJoin: func(_ context.Context, iv *domain.Interval) {
			m.Joins.WithLabelValues(iv.Join.Name, string(iv.JoinType)).Inc()
		},
		OnRequest: func(_ context.Context, r *domain.RequestInstance) {
			m.Requests.WithLabelValues(r.State).Inc()
		},
	}
}

// ObserveReport records the totals that are only known once a run finishes.
func (m *Metrics) ObserveReport(r *report.RunReport) {
	for kind, n := range r.Assemble.Failed {
		m.Failures.WithLabelValues(kind).Add(float64(n))
	}
	for host, offset := range r.Clock.Offsets {
		m.HostOffset.WithLabelValues(host).Set(offset)
	}
	m.UnseenEdges.Set(float64(len(r.UnseenEdges)))
}

// Chain combines hooks; every non-nil callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnThreadInstance = chain2(out.OnThreadInstance, h.OnThreadInstance)
		out.OnDangling = chain3(out.OnDangling, h.OnDangling)
		out.OnJoin = chain2(out.OnJoin, h.OnJoin)
		out.OnRequest = chain2(out.OnRequest, h.OnRequest)
	}
	return out
}

func chain2[T any](a, b func(context.Context, T)) func(context.Context, T) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, v T) {
		a(ctx, v)
		b(ctx, v)
	}
}

func chain3[T, U any](a, b func(context.Context, T, U)) func(context.Context, T, U) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, v T, w U) {
		a(ctx, v, w)
		b(ctx, v, w)
	}
}
