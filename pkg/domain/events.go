package domain

import "context"

// DanglingReason explains why a line could not be placed in any thread instance.
type DanglingReason string

const (
	DanglingNoMatch          DanglingReason = "no_match"
	DanglingOutOfOrder       DanglingReason = "out_of_order"
	DanglingUnknownComponent DanglingReason = "unknown_component"
)

// LifecycleHooks defines callbacks for pipeline observability.
// Replay and join matching fan out, so hooks must be safe for concurrent use.
type LifecycleHooks struct {
	OnThreadInstance func(context.Context, *ThreadInstance)
	OnDangling       func(context.Context, *Line, DanglingReason)
	OnJoin           func(context.Context, *Interval)
	OnRequest        func(context.Context, *RequestInstance)
}
