package retrieval

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of one retrieval as seen by its consumer
type Status int

const (
	NotRequested Status = iota
	Requested
	Waiting
	Success
	Failed
	NotFound
)

var statusNames = map[Status]string{
	NotRequested: "NOT_REQUESTED",
	Requested:    "REQUESTED",
	Waiting:      "WAITING",
	Success:      "SUCCESS",
	Failed:       "FAILED",
	NotFound:     "NOT_FOUND",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether the status ends a retrieval
func (s Status) Terminal() bool {
	return s == Success || s == Failed || s == NotFound
}

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the allowed moves. Any state re-arms to Requested when
// the tracked input changes; Waiting only resolves to a terminal state.
var transitions = map[Status][]Status{
	NotRequested: {Requested},
	Requested:    {Waiting},
	Waiting:      {Success, Failed, NotFound, Requested},
	Success:      {Requested},
	Failed:       {Requested},
	NotFound:     {Requested},
}

// CanTransition reports whether moving from s to next is allowed
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Machine is the explicit state machine behind a retriever. The zero value
// is NotRequested. It is not safe for concurrent use on its own.
type Machine struct {
	status Status
}

func (m *Machine) Status() Status {
	return m.status
}

func (m *Machine) transition(next Status) error {
	if !m.status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.status, next)
	}
	m.status = next
	return nil
}

// Arm moves to Requested. Arming an already requested machine is a no-op.
func (m *Machine) Arm() {
	if m.status == Requested {
		return
	}
	m.status = Requested
}

// Begin moves Requested to Waiting
func (m *Machine) Begin() error {
	return m.transition(Waiting)
}

// Finish resolves a waiting machine to a terminal status
func (m *Machine) Finish(status Status) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %s is not terminal", ErrInvalidTransition, status)
	}
	return m.transition(status)
}
