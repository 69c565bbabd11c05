package domain

// Pace is the result of matching one line against one outgoing edge.
type Pace struct {
	// Index is the position of the pace within its thread instance.
	Index int
	Line  *Line
	Edge  EdgeID
	// From is the node the matched edge leaves; To is where the thread rests afterwards.
	From NodeID
	To   NodeID

	Thread *ThreadInstance

	// Prev and Next are the thread intervals around this pace.
	Prev *Interval
	Next *Interval

	// JoinsOut and JoinsIn are back-references set by the join engine.
	JoinsOut []*Interval
	JoinsIn  []*Interval
}

// Seconds returns the offset-adjusted timestamp.
func (p *Pace) Seconds() float64 {
	return p.Line.Seconds + p.Thread.Target.Offset
}

// RawSeconds returns the timestamp as logged.
func (p *Pace) RawSeconds() float64 {
	return p.Line.Seconds
}

// Host returns the host the pace was logged on.
func (p *Pace) Host() string {
	return p.Thread.Target.Host
}

// Get resolves a variable: the line first, then the thread aggregate.
func (p *Pace) Get(name string) (string, bool) {
	if v, ok := p.Line.Get(name); ok {
		return v, true
	}
	v, ok := p.Thread.Vars[name]
	return v, ok
}
