package quota

import (
	"context"
	"sync"
)

// Phase is the coarse state of a [Tracker].
type Phase int

const (
	// PhaseUnknown means no access code was supplied. Quota is not enforced.
	PhaseUnknown Phase = iota
	// PhaseUninitialized means the code has no usable record yet.
	PhaseUninitialized
	// PhaseActive means the code has a remaining count.
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseUnknown:
		return "unknown"
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseActive:
		return "active"
	default:
		return "invalid"
	}
}

// State is the result of a quota read.
type State struct {
	AccessCode string `json:"accessCode,omitempty"`
	// Remaining is [Sentinel] unless the phase is [PhaseActive].
	Remaining int `json:"remaining"`
}

// Phase derives the tracker phase from the state.
func (s State) Phase() Phase {
	switch {
	case s.AccessCode == "":
		return PhaseUnknown
	case s.Remaining == Sentinel:
		return PhaseUninitialized
	default:
		return PhaseActive
	}
}

// CanStart reports whether a new simulation may start. Quota is not enforced
// without an access code.
func (s State) CanStart() bool {
	switch s.Phase() {
	case PhaseUnknown:
		return true
	case PhaseActive:
		return s.Remaining > 0
	default:
		return false
	}
}

// Tracker follows the quota of a single access code.
//
// Consume acts on the state seen by the most recent Read. Callers read, decide
// and then consume, and that sequence is not atomic: two consumers acting on
// the same read both write the same decremented value. This is accepted
// because the limit is advisory.
type Tracker struct {
	m    *Manager
	code string

	mu    sync.Mutex
	state State
}

// AccessCode returns the tracked code, or "" for an anonymous tracker.
func (t *Tracker) AccessCode() string {
	return t.code
}

// State returns the state observed by the last Read.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

// Read looks up the remaining count. Without an access code it returns the
// unknown state and does not touch the store. When a present code has no
// usable record, Read reports the uninitialized state and then initializes the
// code to the allotment, so the next Read observes it.
func (t *Tracker) Read(ctx context.Context) (State, error) {
	if t.code == "" {
		s := State{Remaining: Sentinel}
		t.setState(s)
		return s, nil
	}

	remaining, err := t.m.read(ctx, t.code)
	if err != nil {
		return State{}, err
	}

	s := State{AccessCode: t.code, Remaining: remaining}
	t.setState(s)

	if s.Phase() == PhaseUninitialized {
		if err := t.m.initialize(ctx, t.code); err != nil {
			return s, err
		}
	}

	return s, nil
}

// Consume uses one simulation. It is a no-op unless the last Read observed an
// active record with at least one simulation left.
func (t *Tracker) Consume(ctx context.Context) error {
	s := t.State()
	if s.Phase() != PhaseActive || s.Remaining <= 0 {
		t.m.logger.DebugContext(ctx, "Quota consume skipped", "phase", s.Phase(), "remaining", s.Remaining)
		return nil
	}

	if err := t.m.write(ctx, t.code, s.Remaining-1); err != nil {
		return err
	}

	t.m.logger.DebugContext(ctx, "Quota consumed", "remaining", s.Remaining-1)
	return nil
}
