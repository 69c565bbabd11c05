package domain

// IntervalKind tags the payload carried by an Interval.
type IntervalKind int

const (
	// IntervalThread spans two consecutive paces of one thread instance.
	IntervalThread IntervalKind = iota
	// IntervalJoin links a "joins" pace to a "joined" pace.
	IntervalJoin
)

func (k IntervalKind) String() string {
	if k == IntervalJoin {
		return "join"
	}
	return "thread"
}

// Interval is the span between two paces.
type Interval struct {
	Kind IntervalKind
	From *Pace
	To   *Pace

	// Join and JoinType are set for IntervalJoin only.
	Join     *JoinSpec
	JoinType JoinType

	IsMain bool
}

// Lapse returns the offset-adjusted duration.
func (i *Interval) Lapse() float64 {
	return i.To.Seconds() - i.From.Seconds()
}

// Violated reports whether the interval runs backwards in time.
func (i *Interval) Violated() bool {
	return i.Lapse() < 0
}

// IsRemote reports whether the interval is a join across hosts.
func (i *Interval) IsRemote() bool {
	return i.Kind == IntervalJoin && i.JoinType == JoinRemote
}

// Thread returns the owning thread instance of a thread interval.
func (i *Interval) Thread() *ThreadInstance {
	if i.Kind != IntervalThread {
		return nil
	}
	return i.From.Thread
}
