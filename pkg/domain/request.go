package domain

import (
	"iter"
	"sort"
)

// ErrorKind files a RequestInstance that failed structural validation.
type ErrorKind string

const (
	ErrMultipleRequests  ErrorKind = "multiple_requests"
	ErrDuplicateRequest  ErrorKind = "duplicate_request"
	ErrMissingStart      ErrorKind = "missing_start"
	ErrDuplicateStart    ErrorKind = "duplicate_start"
	ErrMissingEnd        ErrorKind = "missing_end"
	ErrDuplicateEnd      ErrorKind = "duplicate_end"
	ErrAmbiguousMainPath ErrorKind = "ambiguous_main_path"
	ErrBrokenMainPath    ErrorKind = "broken_main_path"
)

// WarningKind classifies non-fatal findings on a RequestInstance.
type WarningKind string

const (
	WarnStrayThread       WarningKind = "stray_thread"
	WarnDuplicateVariable WarningKind = "duplicate_variable"
	WarnIncompleteThread  WarningKind = "incomplete_thread"
)

// RequestInstance is the set of thread instances and joins belonging to one request.
type RequestInstance struct {
	ID      string
	Threads []*ThreadInstance
	Joins   []*Interval

	// Vars aggregates thread variables; the first value wins.
	Vars map[string]string

	Start *ThreadInstance
	End   *ThreadInstance
	State string

	Errors   map[ErrorKind][]string
	Warnings map[WarningKind][]string

	mainPath []*Interval
}

// NewRequestInstance creates an empty request.
func NewRequestInstance(id string, threads []*ThreadInstance) *RequestInstance {
	return &RequestInstance{
		ID:       id,
		Threads:  threads,
		Vars:     make(map[string]string),
		Errors:   make(map[ErrorKind][]string),
		Warnings: make(map[WarningKind][]string),
	}
}

// Valid reports whether no consistency error was recorded.
func (r *RequestInstance) Valid() bool {
	return len(r.Errors) == 0
}

// AddError records a consistency error.
func (r *RequestInstance) AddError(kind ErrorKind, detail string) {
	r.Errors[kind] = append(r.Errors[kind], detail)
}

// AddWarning records a data-quality warning.
func (r *RequestInstance) AddWarning(kind WarningKind, detail string) {
	r.Warnings[kind] = append(r.Warnings[kind], detail)
}

// ErrorKinds returns the recorded error kinds, sorted.
func (r *RequestInstance) ErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(r.Errors))
	for k := range r.Errors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// StartPace returns the first pace of the start thread, or nil.
func (r *RequestInstance) StartPace() *Pace {
	if r.Start == nil {
		return nil
	}
	return r.Start.First()
}

// EndPace returns the last pace of the end thread, or nil.
func (r *RequestInstance) EndPace() *Pace {
	if r.End == nil {
		return nil
	}
	return r.End.Last()
}

// Lapse returns the offset-adjusted duration from start to end.
func (r *RequestInstance) Lapse() float64 {
	start, end := r.StartPace(), r.EndPace()
	if start == nil || end == nil {
		return 0
	}
	return end.Seconds() - start.Seconds()
}

// SetMainPath records the canonical interval chain from start to end.
func (r *RequestInstance) SetMainPath(path []*Interval) {
	r.mainPath = path
}

// MainPath iterates the main path from the start pace to the end pace.
// Every call starts a fresh iteration.
func (r *RequestInstance) MainPath() iter.Seq[*Interval] {
	return func(yield func(*Interval) bool) {
		for _, iv := range r.mainPath {
			if !yield(iv) {
				return
			}
		}
	}
}

// ThreadIntervals returns every thread interval of the request.
func (r *RequestInstance) ThreadIntervals() []*Interval {
	var out []*Interval
	for _, t := range r.Threads {
		out = append(out, t.Intervals...)
	}
	return out
}

// Hosts returns the hosts the request touched, sorted.
func (r *RequestInstance) Hosts() []string {
	seen := make(map[string]bool)
	var hosts []string
	for _, t := range r.Threads {
		if !seen[t.Key.Host] {
			seen[t.Key.Host] = true
			hosts = append(hosts, t.Key.Host)
		}
	}
	sort.Strings(hosts)
	return hosts
}
