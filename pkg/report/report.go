// Package report holds the run statistics threaded through the pipeline.
package report

import "sort"

// RunReport aggregates the statistics of every phase of one run.
type RunReport struct {
	RunID    string        `json:"run_id"`
	Replay   ReplayStats   `json:"replay"`
	Join     JoinStats     `json:"join"`
	Assemble AssembleStats `json:"assemble"`
	Clock    ClockStats    `json:"clock"`

	// UnseenEdges lists the graph edges no line ever matched, sorted.
	UnseenEdges []string `json:"unseen_edges,omitempty"`
}

// ReplayStats counts what thread replay produced.
type ReplayStats struct {
	Threads          int `json:"threads"`
	Lines            int `json:"lines"`
	Paces            int `json:"paces"`
	Instances        int `json:"instances"`
	Complete         int `json:"complete"`
	Incomplete       int `json:"incomplete"`
	Dangling         int `json:"dangling"`
	OutOfOrder       int `json:"out_of_order"`
	UnknownComponent int `json:"unknown_component"`
	DuplicateVars    int `json:"duplicate_vars"`

	// SeenEdges counts matches per edge name.
	SeenEdges map[string]int `json:"seen_edges,omitempty"`
	// Marks counts thread instances per node mark.
	Marks map[string]int `json:"marks,omitempty"`
}

// Merge adds the counters of o into s.
func (s *ReplayStats) Merge(o ReplayStats) {
	s.Threads += o.Threads
	s.Lines += o.Lines
	s.Paces += o.Paces
	s.Instances += o.Instances
	s.Complete += o.Complete
	s.Incomplete += o.Incomplete
	s.Dangling += o.Dangling
	s.OutOfOrder += o.OutOfOrder
	s.UnknownComponent += o.UnknownComponent
	s.DuplicateVars += o.DuplicateVars
	s.SeenEdges = mergeCounts(s.SeenEdges, o.SeenEdges)
	s.Marks = mergeCounts(s.Marks, o.Marks)
}

// CountEdge records one match of the named edge.
func (s *ReplayStats) CountEdge(name string) {
	if s.SeenEdges == nil {
		s.SeenEdges = make(map[string]int)
	}
	s.SeenEdges[name]++
}

// CountMark records one thread instance carrying mark.
func (s *ReplayStats) CountMark(mark string) {
	if s.Marks == nil {
		s.Marks = make(map[string]int)
	}
	s.Marks[mark]++
}

// JoinDeclStats counts the outcome of one join declaration.
type JoinDeclStats struct {
	Name         string `json:"name"`
	Sources      int    `json:"sources"`
	Targets      int    `json:"targets"`
	Matched      int    `json:"matched"`
	EmptySources int    `json:"empty_sources"`
	EmptyTargets int    `json:"empty_targets"`
}

// JoinStats counts what join matching produced.
type JoinStats struct {
	Declarations []JoinDeclStats `json:"declarations"`
	ByType       map[string]int  `json:"by_type,omitempty"`
	// Violated counts joins whose lapse was negative before clock correction.
	Violated int `json:"violated"`
}

// Total returns the number of joins created.
func (s *JoinStats) Total() int {
	n := 0
	for _, d := range s.Declarations {
		n += d.Matched
	}
	return n
}

// AssembleStats counts what request assembly produced.
type AssembleStats struct {
	Components   int            `json:"components"`
	Requests     int            `json:"requests"`
	Failed       map[string]int `json:"failed,omitempty"`
	Unidentified int            `json:"unidentified"`
	Stray        int            `json:"stray"`
	// MainPathIntervals is the total length of every valid main path.
	MainPathIntervals int `json:"main_path_intervals"`
}

// CountFailure records one request filed under kind.
func (s *AssembleStats) CountFailure(kind string) {
	if s.Failed == nil {
		s.Failed = make(map[string]int)
	}
	s.Failed[kind]++
}

// ClockStats summarizes clock synchronization.
type ClockStats struct {
	Hosts     int                `json:"hosts"`
	Relations int                `json:"relations"`
	Offsets   map[string]float64 `json:"offsets,omitempty"`
	// ViolatedBefore and ViolatedAfter count remote joins with negative lapse around correction.
	ViolatedBefore int `json:"violated_before"`
	ViolatedAfter  int `json:"violated_after"`

	// Unconstrained counts remote joins outside valid requests, which never bound
	// an offset; UnconstrainedViolated is how many of them still run backwards.
	Unconstrained         int `json:"unconstrained"`
	UnconstrainedViolated int `json:"unconstrained_violated"`
}

// Unseen returns the names in all that seen does not count, sorted.
func Unseen(all []string, seen map[string]int) []string {
	var out []string
	for _, name := range all {
		if seen[name] == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func mergeCounts(dst, src map[string]int) map[string]int {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]int, len(src))
	}
	for k, v := range src {
		dst[k] += v
	}
	return dst
}
