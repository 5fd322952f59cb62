package provision

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is an internal error: the pipeline tried to move
// between states the machine does not connect.
var ErrIllegalTransition = errors.New("illegal provisioning transition")

// State is a step of the provisioning state machine.
type State int

const (
	StateNotValidated State = iota
	StateValidated
	StateUploading
	StateRegistered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotValidated:
		return "NOT_VALIDATED"
	case StateValidated:
		return "VALIDATED"
	case StateUploading:
		return "UPLOADING"
	case StateRegistered:
		return "REGISTERED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == StateRegistered || s == StateFailed
}

// machine tracks one CreateSkill call. While uploading, done counts the
// stored artifacts out of total.
type machine struct {
	state State
	done  int
	total int
}

func newMachine(total int) *machine {
	return &machine{state: StateNotValidated, total: total}
}

// transition moves to next, or fails without changing state.
//
// Allowed moves:
//
//	NOT_VALIDATED -> VALIDATED | FAILED
//	VALIDATED     -> UPLOADING(0) | FAILED
//	UPLOADING(k)  -> UPLOADING(k+1) while k < total | REGISTERED once k == total | FAILED
func (m *machine) transition(next State) error {
	ok := false
	switch m.state {
	case StateNotValidated:
		ok = next == StateValidated || next == StateFailed
	case StateValidated:
		ok = next == StateUploading || next == StateFailed
	case StateUploading:
		switch next {
		case StateUploading:
			ok = m.done < m.total
		case StateRegistered:
			ok = m.done == m.total
		case StateFailed:
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s (%d of %d uploaded)", ErrIllegalTransition, m.state, next, m.done, m.total)
	}

	if m.state == StateUploading && next == StateUploading {
		m.done++
	}
	m.state = next
	return nil
}
