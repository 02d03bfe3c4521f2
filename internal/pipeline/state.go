package pipeline

import (
	"fmt"
	"time"
)

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
var timeNow = time.Now

// State is a pipeline run's position in its lifecycle. Runs move
// strictly forward, one state at a time, and Registered is terminal.
type State string

const (
	StateIdle                 State = "idle"
	StateVariablesResolved    State = "variables_resolved"
	StateInstructionsRendered State = "instructions_rendered"
	StateExecuting            State = "executing"
	StateArtifactsDetected    State = "artifacts_detected"
	StateRegistered           State = "registered"
)

// stateOrder fixes the legal transition sequence.
var stateOrder = []State{
	StateIdle,
	StateVariablesResolved,
	StateInstructionsRendered,
	StateExecuting,
	StateArtifactsDetected,
	StateRegistered,
}

func stateIndex(s State) int {
	for i, st := range stateOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// CanAdvance reports whether a run in state s may move to next. Only
// the immediate successor in the pipeline order is legal.
func CanAdvance(s, next State) error {
	si := stateIndex(s)
	if si < 0 {
		return fmt.Errorf("pipeline: unknown state %q", s)
	}
	ni := stateIndex(next)
	if ni < 0 {
		return fmt.Errorf("pipeline: unknown state %q", next)
	}
	if ni != si+1 {
		return fmt.Errorf("pipeline: illegal transition %s -> %s", s, next)
	}
	return nil
}

// Transition records when a run entered a state.
type Transition struct {
	State State
	At    string
}

// advance validates the step order, then moves the run to next and
// stamps the transition.
func (r *Run) advance(next State) error {
	if err := CanAdvance(r.State, next); err != nil {
		return err
	}
	r.State = next
	r.History = append(r.History, Transition{
		State: next,
		At:    timeNow().UTC().Format(time.RFC3339),
	})
	return nil
}
