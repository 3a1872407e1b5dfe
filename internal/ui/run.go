package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"indentguard/internal/driver"
)

// RunWithProgress runs work while rendering progress for files to out.
// work receives an observer that feeds the view; the view quits when work returns.
func RunWithProgress(out io.Writer, title string, files []string, work func(driver.PhaseObserver) error) error {
	events := make(chan driver.PhaseEvent, 256)
	outcome := make(chan error, 1)

	go func() {
		err := work(func(ev driver.PhaseEvent) { events <- ev })
		outcome <- err
		close(events)
	}()

	program := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	err := <-outcome
	if uiErr != nil {
		return uiErr
	}
	return err
}
