package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"":       LevelOff,
		"off":    LevelOff,
		"ERROR":  LevelError,
		"phase":  LevelPhase,
		"detail": LevelDetail,
		"debug":  LevelDebug,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	drv := Begin(ring, ScopeDriver, "check", nil)
	pass := Begin(ring, ScopePass, "pass 1", drv)
	file := Begin(ring, ScopeFile, "file:a.js", pass)
	file.End("")
	pass.End("")
	drv.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events at phase level, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Scope == ScopeFile {
			t.Errorf("file scope leaked at phase level: %+v", ev)
		}
	}
}

func TestSpanNesting(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	root := Begin(ring, ScopeDriver, "fix", nil)
	child := Begin(ring, ScopeStage, "parse", root)
	child.WithCount("tokens", 12).End("ok")
	root.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1].ParentID != root.ID() || events[1].Depth != 1 {
		t.Errorf("child begin: parent=%d depth=%d", events[1].ParentID, events[1].Depth)
	}
	end := events[2]
	if end.Kind != KindSpanEnd || end.Detail != "ok" || end.Extra["tokens"] != "12" || end.Extra["dur"] == "" {
		t.Errorf("unexpected end event: %+v", end)
	}
	if events[0].Seq >= events[3].Seq {
		t.Errorf("sequence not monotonic: %d >= %d", events[0].Seq, events[3].Seq)
	}
}

func TestSuppressedSpanKeepsDepth(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	file := Begin(ring, ScopeFile, "file:a.js", nil)
	stage := Begin(ring, ScopeStage, "parse", file)
	Point(ring, ScopeFile, "skipped", "syntax errors", stage)
	stage.End("")
	file.End("")

	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Kind != KindPoint || events[1].Depth != 1 || events[1].ParentID != file.ID() {
		t.Errorf("point under suppressed stage: %+v", events[1])
	}
}

func TestErrorfPassesErrorLevel(t *testing.T) {
	ring := NewRingTracer(4, LevelError)
	Begin(ring, ScopeDriver, "check", nil).End("")
	Errorf(ring, "load", "open %s: %s", "a.js", "denied")

	events := ring.Snapshot()
	if len(events) != 1 || !events[0].Error || events[0].Detail != "open a.js: denied" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeDriver, name, "", nil)
	}
	events := ring.Snapshot()
	var names []string
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "c,d,e" {
		t.Errorf("unexpected ring contents: %v", names)
	}
	if ring.Dropped() != 2 {
		t.Errorf("dropped = %d, want 2", ring.Dropped())
	}

	ring.Reset()
	if len(ring.Snapshot()) != 0 || ring.Dropped() != 0 {
		t.Fatal("reset left events behind")
	}
	Point(ring, ScopeDriver, "f", "", nil)
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "• f") {
		t.Errorf("unexpected dump %q", buf.String())
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	s := Begin(tr, ScopeDriver, "check", nil)
	Point(tr, ScopeFile, "file:a.js", "2 problems", s)
	s.WithExtra("files", "1").End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got:\n%s", buf.String())
	}
	if !strings.Contains(lines[0], "→ check") {
		t.Errorf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "  • file:a.js (2 problems)") {
		t.Errorf("point line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "← check {dur=") || !strings.Contains(lines[2], "files=1}") {
		t.Errorf("end line = %q", lines[2])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeStage, "tokenize", "", nil)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid ndjson %q: %v", buf.String(), err)
	}
	if got["kind"] != "point" || got["scope"] != "stage" || got["name"] != "tokenize" {
		t.Errorf("unexpected event: %v", got)
	}
}

func TestNewFormatAuto(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off level must give nop tracer, got %v %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Output: &buf, OutputPath: "trace.ndjson"})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopeDriver, "x", "", nil)
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected ndjson output, got %q", buf.String())
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("expected Nop without tracer")
	}
	ring := NewRingTracer(2, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Error("tracer not found in context")
	}
	s := Begin(ring, ScopeDriver, "check", nil)
	ctx = WithSpan(ctx, s)
	if SpanFromContext(ctx) != s {
		t.Error("span not found in context")
	}
	if SpanFromContext(context.Background()) != nil {
		t.Error("unexpected span in empty context")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "text": FormatText, "jsonl": FormatNDJSON} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("chrome"); err == nil {
		t.Error("expected error")
	}
}
