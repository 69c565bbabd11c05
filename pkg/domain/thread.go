package domain

import (
	"fmt"
	"slices"
)

// ThreadInstance is one maximal automaton run over the lines of a (target, thread).
type ThreadInstance struct {
	Key ThreadKey
	// Seq numbers the instances of one thread in chronological order.
	Seq       int
	Component string
	Target    *Target

	// Initial is the start node the run was opened from.
	Initial NodeID
	// Final is the node the run rested on when it stopped.
	Final NodeID

	Paces     []*Pace
	Intervals []*Interval

	// Vars aggregates free-form line variables; the first value wins.
	Vars map[string]string
	// Conflicts records later values that disagreed with Vars.
	Conflicts map[string][]string

	// Requests lists the request identifiers seen, sorted.
	Requests []string
	Marks    []string

	// Complete is set when the run terminated at an end node with an empty call stack.
	Complete     bool
	RequestState string

	// Shared instances may serve several requests; assembly does not traverse through them.
	Shared bool
}

// NewThreadInstance creates an empty run.
func NewThreadInstance(key ThreadKey, seq int, component string, target *Target, initial NodeID) *ThreadInstance {
	return &ThreadInstance{
		Key:       key,
		Seq:       seq,
		Component: component,
		Target:    target,
		Initial:   initial,
		Final:     initial,
		Vars:      make(map[string]string),
		Conflicts: make(map[string][]string),
	}
}

// Name returns a stable human readable identifier.
func (t *ThreadInstance) Name() string {
	return fmt.Sprintf("%s#%d", t.Key, t.Seq)
}

// First returns the first pace, or nil.
func (t *ThreadInstance) First() *Pace {
	if len(t.Paces) == 0 {
		return nil
	}
	return t.Paces[0]
}

// Last returns the last pace, or nil.
func (t *ThreadInstance) Last() *Pace {
	if len(t.Paces) == 0 {
		return nil
	}
	return t.Paces[len(t.Paces)-1]
}

// Lapse returns the offset-adjusted duration of the run.
func (t *ThreadInstance) Lapse() float64 {
	if len(t.Paces) < 2 {
		return 0
	}
	return t.Last().Seconds() - t.First().Seconds()
}

// Append records a pace and the interval leading to it.
func (t *ThreadInstance) Append(p *Pace) {
	p.Thread = t
	p.Index = len(t.Paces)
	if prev := t.Last(); prev != nil {
		iv := &Interval{Kind: IntervalThread, From: prev, To: p}
		prev.Next = iv
		p.Prev = iv
		t.Intervals = append(t.Intervals, iv)
	}
	t.Paces = append(t.Paces, p)
}

// Merge folds line variables into the aggregate and returns the names that conflicted.
func (t *ThreadInstance) Merge(line *Line) []string {
	var conflicts []string
	for k, v := range line.Vars {
		existing, ok := t.Vars[k]
		if !ok {
			t.Vars[k] = v
			continue
		}
		if existing != v && !slices.Contains(t.Conflicts[k], v) {
			t.Conflicts[k] = append(t.Conflicts[k], v)
			conflicts = append(conflicts, k)
		}
	}
	if line.Request != "" {
		if i, found := slices.BinarySearch(t.Requests, line.Request); !found {
			t.Requests = slices.Insert(t.Requests, i, line.Request)
		}
	}
	return conflicts
}

// AddMarks records node marks once each.
func (t *ThreadInstance) AddMarks(marks []string) {
	for _, m := range marks {
		if !slices.Contains(t.Marks, m) {
			t.Marks = append(t.Marks, m)
		}
	}
}
