package review

import "fmt"

// State is a step of the per-file pipeline.
type State string

const (
	StatePending    State = "pending"
	StateReading    State = "reading"
	StateRequesting State = "requesting"
	StateUnchanged  State = "unchanged"
	StateApplying   State = "applying"
	StateFailed     State = "failed"
	StateDone       State = "done"
)

func (s State) String() string { return string(s) }

// RunState is the state of a whole run.
type RunState string

const (
	RunIdle     RunState = "idle"
	RunRunning  RunState = "running"
	RunComplete RunState = "complete"
)

func (s RunState) String() string { return string(s) }

// IsAllowedTransition reports whether a file may move from one state to
// another.
func IsAllowedTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateReading
	case StateReading:
		return to == StateRequesting || to == StateFailed
	case StateRequesting:
		return to == StateUnchanged || to == StateApplying || to == StateFailed
	case StateApplying:
		return to == StateDone || to == StateFailed
	case StateUnchanged, StateFailed:
		return to == StateDone
	default:
		return false
	}
}

// fileState tracks one file through the pipeline and remembers the outcome
// decided on the way to Done.
type fileState struct {
	path    string
	current State
	outcome Outcome
	onMove  func(path string, from, to State)
}

func newFileState(path string, onMove func(string, State, State)) *fileState {
	return &fileState{path: path, current: StatePending, onMove: onMove}
}

func (f *fileState) to(next State) error {
	if !IsAllowedTransition(f.current, next) {
		return fmt.Errorf("disallowed transition for %q: %s -> %s", f.path, f.current, next)
	}
	if f.onMove != nil {
		f.onMove(f.path, f.current, next)
	}
	f.current = next
	switch next {
	case StateUnchanged:
		f.outcome = OutcomeUnchanged
	case StateApplying:
		f.outcome = OutcomeFixed
	case StateFailed:
		f.outcome = OutcomeFailed
	}
	return nil
}
