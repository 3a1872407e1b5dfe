package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indentguard/internal/driver"
	"indentguard/internal/observ"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.PhaseEvent)
	m := NewProgressModel("checking", []string{"a.js", "b.js", "c.js"}, events).(*progressModel)

	m.Update(eventMsg{Path: "a.js", Name: observ.StageParse, Status: driver.PhaseStart})
	assert.Equal(t, "parsing", m.items[0].status)

	m.Update(eventMsg{Path: "a.js", Name: observ.StageCheck, Status: driver.PhaseEnd, Problems: 2, Done: true})
	m.Update(eventMsg{Path: "b.js", Name: observ.StageCheck, Status: driver.PhaseEnd, Done: true})
	m.Update(eventMsg{Path: "c.js", Name: observ.StageLoad, Status: driver.PhaseEnd, Done: true})
	m.Update(eventMsg{Path: "unknown.js", Name: observ.StageParse, Status: driver.PhaseStart})

	assert.Equal(t, "2 problems", m.items[0].status)
	assert.Equal(t, "ok", m.items[1].status)
	assert.Equal(t, "error", m.items[2].status)

	// поздний старт стадии не перетирает итог
	m.Update(eventMsg{Path: "a.js", Name: observ.StageParse, Status: driver.PhaseStart})
	assert.Equal(t, "2 problems", m.items[0].status)

	view := stripANSI(m.View())
	assert.Contains(t, view, "checking 3/3, 2 problem(s)")
	assert.Contains(t, view, "a.js")

	_, cmd := m.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.True(t, strings.HasPrefix(stripANSI(m.View()), "done: "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "very-lo...", truncate("very-long-path/file.js", 10))
	assert.Equal(t, "ve", truncate("very", 2))
	assert.Equal(t, "файл-...", truncate("файл-длинный.js", 8))
	assert.LessOrEqual(t, runewidth.StringWidth(truncate("日本語のファイル.js", 9)), 9)
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
