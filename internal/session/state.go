package session

import (
	"slices"

	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
)

// State is the session lifecycle stage.
type State int

const (
	// StateIdle has no buffer and no take in progress.
	StateIdle State = iota
	// StateRecording is capturing audio and timestamping key presses.
	StateRecording
	// StateProcessing is decoding captured or imported audio.
	StateProcessing
	// StateReady has a buffer and a clamped timeline for inspection.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// transitions lists the allowed next states. Processing falls back to Idle
// or Ready when decoding fails.
var transitions = map[State][]State{
	StateIdle:       {StateRecording, StateProcessing},
	StateRecording:  {StateProcessing},
	StateProcessing: {StateReady, StateIdle},
	StateReady:      {StateRecording, StateProcessing},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

func (s *Session) transition(to State) error {
	if !CanTransition(s.state, to) {
		return errors.Newf("cannot move from %s to %s", s.state, to).
			Component(componentSession).
			Category(errors.CategoryState).
			Context("from", s.state.String()).
			Context("to", to.String()).
			Build()
	}
	s.log.Debug("state transition",
		logger.String("from", s.state.String()),
		logger.String("to", to.String()))
	s.state = to
	return nil
}
