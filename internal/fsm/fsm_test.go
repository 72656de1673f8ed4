package fsm

import "testing"

func TestCanTransitionFunnelOrder(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StateNone, StateRegistrationStarted, true},
		{StateRegistrationStarted, StateAwaitingPayment, true},
		{StateRegistrationStarted, StateAwaitingLast5Digits, true},
		{StateAwaitingPayment, StateAwaitingLast5Digits, true},
		{StateAwaitingLast5Digits, StateNone, true},

		{StateNone, StateAwaitingPayment, false},
		{StateNone, StateAwaitingLast5Digits, false},
		{StateAwaitingPayment, StateNone, false},
		{StateRegistrationStarted, StateNone, false},
		{StateAwaitingLast5Digits, StateAwaitingPayment, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanTransitionRestartFromAnyState(t *testing.T) {
	for _, from := range []string{StateNone, StateRegistrationStarted, StateAwaitingPayment, StateAwaitingLast5Digits} {
		if !CanTransition(from, StateRegistrationStarted) {
			t.Errorf("expected restart from %q to be allowed", from)
		}
	}
}

func TestCanTransitionSameState(t *testing.T) {
	if !CanTransition(StateAwaitingLast5Digits, StateAwaitingLast5Digits) {
		t.Error("expected staying in the same state to be allowed")
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{StateNone, StateRegistrationStarted, StateAwaitingPayment, StateAwaitingLast5Digits} {
		if !Valid(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Valid("picked_up") {
		t.Error("unexpected valid state")
	}
}
