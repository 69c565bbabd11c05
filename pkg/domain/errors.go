package domain

import "errors"

// ErrRequestNotFound is returned when a request summary cannot be found in a store.
var ErrRequestNotFound = errors.New("request not found")

// ErrUnknownComponent is reported when a line names a component with no registered automaton.
var ErrUnknownComponent = errors.New("unknown component")
