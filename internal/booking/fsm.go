// Package booking drives one customer's selection flow from cart to checkout.
package booking

// State represents the step of a booking session.
type State string

const (
	StateBrowsing        State = "browsing"
	StateChoosingDate    State = "choosing_date"
	StateChoosingTime    State = "choosing_time"
	StateConfirming      State = "confirming"
	StateAwaitingContact State = "awaiting_contact"
	StateComplete        State = "complete"
	StateCanceled        State = "canceled"
)

// FSM manages state transitions for booking sessions.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates a new FSM with predefined transitions.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateBrowsing:        {StateChoosingDate, StateCanceled},
			StateChoosingDate:    {StateChoosingTime, StateBrowsing, StateCanceled},
			StateChoosingTime:    {StateChoosingDate, StateConfirming, StateBrowsing, StateCanceled},
			StateConfirming:      {StateAwaitingContact, StateComplete, StateChoosingTime, StateBrowsing, StateCanceled},
			StateAwaitingContact: {StateComplete, StateConfirming, StateCanceled},
			StateComplete:        {StateBrowsing},
			StateCanceled:        {StateBrowsing},
		},
	}
}

// CanTransition checks if transition is allowed. Staying in place is always allowed.
func (f *FSM) CanTransition(from, to State) bool {
	if from == to {
		_, ok := f.transitions[from]
		return ok
	}
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition updates the session state if the transition is allowed.
func (f *FSM) Transition(session *Session, to State) bool {
	if f.CanTransition(session.State(), to) {
		session.SetState(to)
		return true
	}
	return false
}

// Back returns the state one step before s in the forward path.
func Back(s State) State {
	switch s {
	case StateChoosingTime:
		return StateChoosingDate
	case StateConfirming:
		return StateChoosingTime
	case StateAwaitingContact:
		return StateConfirming
	default:
		return StateBrowsing
	}
}
