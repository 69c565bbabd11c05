package stitch

import (
	"maps"
	"slices"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
)

// Summarize flattens a request into its persisted form.
// Main path steps read "<from edge> -> <to edge>".
func Summarize(model *graph.Model, runID string, r *domain.RequestInstance) *domain.RequestSummary {
	s := &domain.RequestSummary{
		RunID:     runID,
		RequestID: r.ID,
		State:     r.State,
		Valid:     r.Valid(),
		Lapse:     r.Lapse(),
		Threads:   len(r.Threads),
		Joins:     len(r.Joins),
		Hosts:     r.Hosts(),
	}
	if len(r.Vars) > 0 {
		s.Vars = maps.Clone(r.Vars)
	}
	for iv := range r.MainPath() {
		s.MainPath = append(s.MainPath, model.Edge(iv.From.Edge).Name+" -> "+model.Edge(iv.To.Edge).Name)
	}
	if len(r.Errors) > 0 {
		s.Errors = make(map[string][]string, len(r.Errors))
		for k, v := range r.Errors {
			s.Errors[string(k)] = slices.Clone(v)
		}
	}
	if len(r.Warnings) > 0 {
		s.Warnings = make(map[string][]string, len(r.Warnings))
		for k, v := range r.Warnings {
			s.Warnings[string(k)] = slices.Clone(v)
		}
	}
	return s
}
