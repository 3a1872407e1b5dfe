package observ

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin(StageParse)
	tm.End(idx, "12 tokens")
	tm.End(42, "ignored")

	r := tm.Report()
	require.Len(t, r.Phases, 1)
	assert.Equal(t, StageParse, r.Phases[0].Name)
	assert.Equal(t, "12 tokens", r.Phases[0].Note)
	assert.GreaterOrEqual(t, r.TotalMS, 0.0)
	assert.Equal(t, Report{}, NewTimer().Report())
}

func TestAggregateMergesConcurrentTimers(t *testing.T) {
	agg := NewAggregate()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm := NewTimer()
			tm.End(tm.Begin(StageLoad), "")
			tm.End(tm.Begin(StageParse), "")
			tm.End(tm.Begin(StageCheck), "")
			agg.Add(tm)
		}()
	}
	wg.Wait()

	r := agg.Report()
	require.Len(t, r.Phases, 3)
	assert.Equal(t, StageLoad, r.Phases[0].Name)
	for _, p := range r.Phases {
		assert.Equal(t, 8, p.Count, p.Name)
	}

	agg.SetWall(1500 * time.Microsecond)
	assert.InDelta(t, 1.5, agg.Report().TotalMS, 1e-9)
}

func TestReportSummary(t *testing.T) {
	r := Report{
		TotalMS: 3,
		Phases: []PhaseReport{
			{Name: "parse", DurationMS: 1, Count: 2},
			{Name: "check", DurationMS: 2, Count: 1, Note: "4 problems"},
		},
	}
	out := r.Summary()
	assert.True(t, strings.HasPrefix(out, "timings:\n"))
	assert.Contains(t, out, "x2")
	assert.Contains(t, out, "// 4 problems")
	assert.Contains(t, out, "total")
}

func TestNilTimerIsNoop(t *testing.T) {
	var tm *Timer
	idx := tm.Begin(StageLoad)
	tm.End(idx, "")
	assert.Equal(t, -1, idx)
	assert.Nil(t, tm.Phases())
	assert.Equal(t, Report{}, tm.Report())
}
