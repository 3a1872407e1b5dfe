package trace

import (
	"io"
	"sync"
	"time"
)

// RingTracer keeps the most recent events in memory. Watch mode resets it
// before every round and dumps it when the round fails, so the dump shows
// only the failing round.
type RingTracer struct {
	mu      sync.Mutex
	buf     []Event
	next    int // индекс следующей записи
	stored  int // сколько событий в буфере, <= len(buf)
	dropped uint64
	level   Level
	start   time.Time
}

// NewRingTracer creates a RingTracer holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		buf:   make([]Event, capacity),
		level: level,
		start: time.Now(),
	}
}

// Emit stores ev, overwriting the oldest event once the buffer is full.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.passes(ev) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = stored
	t.next = (t.next + 1) % len(t.buf)
	if t.stored < len(t.buf) {
		t.stored++
	} else {
		t.dropped++
	}
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Event, 0, t.stored)
	first := (t.next - t.stored + len(t.buf)) % len(t.buf)
	for i := range t.stored {
		out = append(out, t.buf[(first+i)%len(t.buf)])
	}
	return out
}

// Dropped returns how many events were overwritten since the last Reset.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Reset forgets all stored events and restarts the relative clock.
func (t *RingTracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.buf)
	t.next, t.stored, t.dropped = 0, 0, 0
	t.start = time.Now()
}

// Dump writes the stored events in the given format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	t.mu.Lock()
	start := t.start
	t.mu.Unlock()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format, start)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
