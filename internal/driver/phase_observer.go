package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a stage has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a stage boundary of one file.
type PhaseEvent struct {
	Path    string
	Name    string // observ.Stage*
	Status  PhaseStatus
	Elapsed time.Duration
	// Problems is the number of diagnostics known at PhaseEnd of the last stage.
	Problems int
	// Done marks the final event of the file.
	Done bool
}

// PhaseObserver receives phase events. Files are processed concurrently,
// so an observer must be safe for concurrent use.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}
