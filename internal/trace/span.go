package trace

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 {
	return globalSpans.Add(1)
}

// Span tracks one begin/end pair.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	depth   int
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin starts a new span under parent (nil for a root span) and emits SpanBegin.
func Begin(t Tracer, scope Scope, name string, parent *Span) *Span {
	depth := 0
	var parentID uint64
	if parent != nil {
		parentID = parent.id
		depth = parent.depth + 1
	}
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		// пустой span держит глубину, чтобы вложенные события не съезжали
		return &Span{tracer: Nop, id: parentID, depth: depth - 1, started: time.Now()}
	}

	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parentID,
		depth:   depth,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parentID,
		Depth:    depth,
		Name:     name,
	})
	return s
}

// End emits SpanEnd and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	dur := time.Since(s.started)
	if s.tracer == nil || !s.tracer.Enabled() {
		return dur
	}
	extra := s.extra
	if extra == nil {
		extra = make(map[string]string, 1)
	}
	extra["dur"] = dur.Round(time.Microsecond).String()
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Depth:    s.depth,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
	return dur
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// WithCount is WithExtra for integers.
func (s *Span) WithCount(key string, n int) *Span {
	return s.WithExtra(key, strconv.Itoa(n))
}

// ID returns the span ID.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent *Span) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	ev := &Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Name: name, Detail: detail}
	if parent != nil {
		ev.ParentID = parent.id
		ev.Depth = parent.depth + 1
	}
	t.Emit(ev)
}

// Errorf emits an error point; it is written at every level except off.
func Errorf(t Tracer, name, format string, args ...any) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  ScopeDriver,
		Name:   name,
		Detail: fmt.Sprintf(format, args...),
		Error:  true,
	})
}
