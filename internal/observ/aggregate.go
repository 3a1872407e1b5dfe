package observ

import (
	"sync"
	"time"
)

// Aggregate sums stage timings of many files. Safe for concurrent use.
type Aggregate struct {
	mu     sync.Mutex
	order  []string
	totals map[string]time.Duration
	counts map[string]int
	wall   time.Duration
}

// NewAggregate creates an empty Aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

// Add merges all phases of t.
func (a *Aggregate) Add(t *Timer) {
	if a == nil || t == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range t.phases {
		if _, seen := a.totals[p.Name]; !seen {
			a.order = append(a.order, p.Name)
		}
		a.totals[p.Name] += p.Dur
		a.counts[p.Name]++
	}
}

// SetWall records the wall-clock time of the whole run.
func (a *Aggregate) SetWall(d time.Duration) {
	a.mu.Lock()
	a.wall = d
	a.mu.Unlock()
}

// Report returns stages in first-seen order. TotalMS is the wall time when
// known, otherwise the sum of stages (воркеры параллельны, сумма больше стены).
func (a *Aggregate) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.order) == 0 {
		return Report{TotalMS: durationToMillis(a.wall)}
	}
	report := Report{Phases: make([]PhaseReport, 0, len(a.order))}
	var sum time.Duration
	for _, name := range a.order {
		sum += a.totals[name]
		report.Phases = append(report.Phases, PhaseReport{
			Name:       name,
			DurationMS: durationToMillis(a.totals[name]),
			Count:      a.counts[name],
		})
	}
	if a.wall > 0 {
		report.TotalMS = durationToMillis(a.wall)
	} else {
		report.TotalMS = durationToMillis(sum)
	}
	return report
}
