package dsl

import (
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
	"github.com/aretw0/stitch/pkg/schema"
)

// JoinBuilder configures a join declaration.
type JoinBuilder struct {
	builder *Builder
	index   int
}

func (j *JoinBuilder) draft() *graph.JoinDraft {
	return &j.builder.draft.Joins[j.index]
}

// From sets the emitting edge (an edge or interface name).
func (j *JoinBuilder) From(edge string) *JoinBuilder {
	j.draft().From = edge
	return j
}

// To sets the receiving edge (an edge or interface name).
func (j *JoinBuilder) To(edge string) *JoinBuilder {
	j.draft().To = edge
	return j
}

// One consumes both sides: each event joins at most once per role.
func (j *JoinBuilder) One() *JoinBuilder {
	j.draft().Cardinality = domain.One
	return j
}

// All links a source to every matching target.
func (j *JoinBuilder) All() *JoinBuilder {
	j.draft().Cardinality = domain.All
	return j
}

// Any links a source to its first matching target.
func (j *JoinBuilder) Any() *JoinBuilder {
	j.draft().Cardinality = domain.Any
	return j
}

// Cardinality sets the cardinality explicitly.
func (j *JoinBuilder) Cardinality(c domain.Cardinality) *JoinBuilder {
	j.draft().Cardinality = c
	return j
}

// Remote allows the endpoints to run on different hosts.
func (j *JoinBuilder) Remote() *JoinBuilder {
	j.draft().Remote = true
	return j
}

// On compares variable from of the emitting event with variable to of the receiving one.
func (j *JoinBuilder) On(from, to string) *JoinBuilder {
	d := j.draft()
	d.Schema = append(d.Schema, schema.Pair{From: from, To: to})
	return j
}

// Key compares the same variable on both sides.
func (j *JoinBuilder) Key(names ...string) *JoinBuilder {
	d := j.draft()
	for _, name := range names {
		d.Schema = append(d.Schema, schema.Key(name))
	}
	return j
}
