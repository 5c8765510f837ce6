package upload

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of an upload batch.
type State string

const (
	StateIdle            State = "idle"
	StateCheckingQuota   State = "checking-quota"
	StateRejected        State = "rejected"
	StateUploading       State = "uploading"
	StatePartiallyFailed State = "partially-failed"
	StateCompleted       State = "completed"
	StateAborted         State = "aborted"
)

// ErrIllegalState is returned when an operation would make an illegal move.
var ErrIllegalState = errors.New("upload: illegal state transition")

// partially-failed is transient: it collapses into completed or aborted.
var transitions = map[State][]State{
	StateIdle:            {StateCheckingQuota},
	StateCheckingQuota:   {StateIdle, StateRejected, StateUploading, StateAborted},
	StateRejected:        {StateIdle},
	StateUploading:       {StatePartiallyFailed, StateCompleted, StateAborted},
	StatePartiallyFailed: {StateCompleted, StateAborted},
	StateCompleted:       {StateIdle},
	StateAborted:         {StateIdle},
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateCompleted || s == StateAborted
}

// Running reports whether a run is in progress.
func (s State) Running() bool {
	return s == StateCheckingQuota || s == StateUploading || s == StatePartiallyFailed
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to State) error {
	if from == to || CanTransition(from, to) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalState, from, to)
}
