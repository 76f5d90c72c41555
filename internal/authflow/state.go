package authflow

import (
	"errors"
	"fmt"
)

// State of a submit cycle
type State int

const (
	Idle State = iota
	Submitting
	Error
	Success
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Error:
		return "error"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition is returned for a transition the machine does not allow
var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[State][]State{
	Idle:       {Submitting},
	Error:      {Submitting},
	Submitting: {Success, Error},
}

// CanTransition reports whether from → to is allowed
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
