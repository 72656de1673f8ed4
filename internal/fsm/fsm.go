package fsm

// Conversation states of the registration funnel. StateNone is stored as
// NULL and means the user has no funnel in progress.
const (
	StateNone                = ""
	StateRegistrationStarted = "registration_started"
	StateAwaitingPayment     = "awaiting_payment"
	StateAwaitingLast5Digits = "awaiting_last_5_digits"
)

var transitions = map[string]map[string]struct{}{
	StateNone: {
		StateRegistrationStarted: {},
	},
	StateRegistrationStarted: {
		StateAwaitingPayment:     {},
		StateAwaitingLast5Digits: {},
	},
	StateAwaitingPayment: {
		StateAwaitingLast5Digits: {},
	},
	StateAwaitingLast5Digits: {
		StateNone: {},
	},
}

// CanTransition returns whether the funnel can move from one state to another.
// Re-entering registration_started is always allowed: the "報名" keyword
// restarts the funnel from any state.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	if to == StateRegistrationStarted {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Valid reports whether s is a known conversation state.
func Valid(s string) bool {
	switch s {
	case StateNone, StateRegistrationStarted, StateAwaitingPayment, StateAwaitingLast5Digits:
		return true
	}
	return false
}
