package nl80211

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a session state change skips a step
// or moves backwards.
var ErrInvalidTransition = errors.New("nl80211: invalid session state transition")

// State is the lifecycle position of a Session. Sessions only move
// forward, one step at a time; there is no path back after transport loss.
type State int

const (
	StateUnconnected State = iota
	StateConnected
	StateFamilyResolved
	StateSubscribed
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "Unconnected"
	case StateConnected:
		return "Connected"
	case StateFamilyResolved:
		return "FamilyResolved"
	case StateSubscribed:
		return "Subscribed"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// next validates a move from s to to.
func (s State) next(to State) error {
	if s == StateRunning || to != s+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
	}
	return nil
}
