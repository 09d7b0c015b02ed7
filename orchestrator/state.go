package orchestrator

import "fmt"

// State is the top-level screen the client shows
type State string

const (
	StateInput   State = "input"
	StateLoading State = "loading"
	StatePreview State = "preview"
	StateError   State = "error"
)

// PreviewStatus tracks the PDF fetch inside StatePreview
type PreviewStatus string

const (
	PreviewIdle    PreviewStatus = "idle"
	PreviewLoading PreviewStatus = "loading"
	PreviewReady   PreviewStatus = "ready"
	PreviewFailed  PreviewStatus = "failed"
)

// transitions lists the allowed next states for each state
var transitions = map[State][]State{
	StateInput:   {StateLoading},
	StateLoading: {StatePreview, StateError},
	StatePreview: {StateInput},
	StateError:   {StateInput},
}

// ValidateTransition checks if moving from one state to another is allowed
func ValidateTransition(from, to State) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
