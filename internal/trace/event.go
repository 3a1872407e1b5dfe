package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver covers a whole check or fix run.
	ScopeDriver Scope = iota + 1
	// ScopePass covers one fix pass over all files.
	ScopePass
	// ScopeFile covers the work done for a single file.
	ScopeFile
	// ScopeStage covers load, parse and check stages inside a file.
	ScopeStage
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeFile:
		return "file"
	case ScopeStage:
		return "stage"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 для корня
	Depth    int
	Name     string // "check", "pass 2", "file:src/a.js"
	Detail   string
	Error    bool // пишется на любом уровне, кроме off
	Extra    map[string]string
}

// passes reports whether a tracer at level l keeps ev.
func (l Level) passes(ev *Event) bool {
	if ev.Error {
		return l > LevelOff
	}
	return l.ShouldEmit(ev.Scope)
}
