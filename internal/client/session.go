package client

import (
	"encoding/json"
	"sync"
)

// Phase is the UI-facing request lifecycle. A session starts Initial, moves
// to Loading on each request, and lands on Success or Error; refresh and
// city or unit changes re-enter Loading.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "initial"
	}
}

// State is what a screen renders.
type State struct {
	Phase   Phase
	Payload json.RawMessage
	Message string
}

// Session serializes UI state updates across overlapping requests. Requests
// are not cancelled when superseded; instead each Begin issues a new
// generation, and completions carrying an older generation are discarded so
// a slow earlier response can never overwrite a newer one.
type Session struct {
	mu    sync.Mutex
	gen   uint64
	state State
}

// Begin marks a new request and moves the session to Loading. The returned
// generation must be handed back on completion.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = State{Phase: PhaseLoading}
	return s.gen
}

// Succeed records a successful completion. It reports false, leaving the
// state untouched, when a newer request has been issued since gen.
func (s *Session) Succeed(gen uint64, payload json.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.state = State{Phase: PhaseSuccess, Payload: payload}
	return true
}

// Fail records a failed completion with a user-safe message, subject to the
// same generation check.
func (s *Session) Fail(gen uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.state = State{Phase: PhaseError, Message: message}
	return true
}

// State returns the current UI state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}
