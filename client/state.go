// File: client/state.go
// Package client: connection lifecycle state machine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The lifecycle value is the only state shared by the split writer and
// reader handles. All transitions go through compare-and-swap on an
// atomic; no lock is ever held across I/O for a transition.

package client

import "sync/atomic"

// State is the connection lifecycle position.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "invalid"
}

type stateMachine struct {
	v atomic.Int32
}

func (m *stateMachine) Load() State { return State(m.v.Load()) }

func (m *stateMachine) Store(s State) { m.v.Store(int32(s)) }

func (m *stateMachine) CompareAndSwap(from, to State) bool {
	return m.v.CompareAndSwap(int32(from), int32(to))
}
