package domain

import (
	"strconv"
	"time"
)

// VarKey names a reserved line variable.
type VarKey int

const (
	VarComponent VarKey = iota
	VarTarget
	VarHost
	VarThread
	VarRequest
	VarTime
	VarSeconds
)

var varKeyNames = [...]string{
	VarComponent: "component",
	VarTarget:    "target",
	VarHost:      "host",
	VarThread:    "thread",
	VarRequest:   "request",
	VarTime:      "time",
	VarSeconds:   "seconds",
}

func (k VarKey) String() string {
	if k < 0 || int(k) >= len(varKeyNames) {
		return "var(" + strconv.Itoa(int(k)) + ")"
	}
	return varKeyNames[k]
}

// LookupVarKey resolves a variable name to a reserved key.
func LookupVarKey(name string) (VarKey, bool) {
	for i, n := range varKeyNames {
		if n == name {
			return VarKey(i), true
		}
	}
	return 0, false
}

// Reserved holds the variables every line carries.
type Reserved struct {
	Component string    `json:"component"`
	Target    string    `json:"target"`
	Host      string    `json:"host"`
	Thread    string    `json:"thread"`
	Request   string    `json:"request,omitempty"`
	Time      time.Time `json:"time"`
	// Seconds is the raw timestamp as seconds since the epoch.
	Seconds float64 `json:"seconds"`
}

// Get returns the string form of a reserved variable. Empty values are absent.
func (r *Reserved) Get(k VarKey) (string, bool) {
	var v string
	switch k {
	case VarComponent:
		v = r.Component
	case VarTarget:
		v = r.Target
	case VarHost:
		v = r.Host
	case VarThread:
		v = r.Thread
	case VarRequest:
		v = r.Request
	case VarTime:
		if r.Time.IsZero() {
			return "", false
		}
		v = r.Time.Format(time.RFC3339Nano)
	case VarSeconds:
		v = strconv.FormatFloat(r.Seconds, 'f', -1, 64)
	}
	return v, v != ""
}

// Line is one parsed log record of a thread.
type Line struct {
	Reserved
	Keyword string            `json:"keyword"`
	Vars    map[string]string `json:"vars,omitempty"`
	// Number is the position of the line in its source, for diagnostics.
	Number int `json:"number,omitempty"`
}

// Get resolves a variable: reserved names first, then free-form variables.
func (l *Line) Get(name string) (string, bool) {
	if k, ok := LookupVarKey(name); ok {
		return l.Reserved.Get(k)
	}
	v, ok := l.Vars[name]
	return v, ok
}

// Key returns the thread the line belongs to.
func (l *Line) Key() ThreadKey {
	return ThreadKey{Host: l.Host, Target: l.Target, Thread: l.Thread}
}

// ThreadKey identifies one (target, thread) line sequence.
type ThreadKey struct {
	Host   string `json:"host"`
	Target string `json:"target"`
	Thread string `json:"thread"`
}

func (k ThreadKey) String() string {
	return k.Host + "/" + k.Target + "/" + k.Thread
}

// Less orders keys by host, target and thread.
func (k ThreadKey) Less(o ThreadKey) bool {
	if k.Host != o.Host {
		return k.Host < o.Host
	}
	if k.Target != o.Target {
		return k.Target < o.Target
	}
	return k.Thread < o.Thread
}

// Target is the clock entity shared by every thread of one process.
// Offset is the additive correction applied to raw timestamps of its lines.
type Target struct {
	Host   string  `json:"host"`
	Name   string  `json:"name"`
	Offset float64 `json:"offset"`
}
