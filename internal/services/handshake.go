package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pomoyka/pomoyka-client/internal/payment"
)

// State is a step of the booking-payment handshake
type State string

const (
	StateCreatingBooking         State = "creating_booking"
	StateAwaitingPaymentRedirect State = "awaiting_payment_redirect" // Booking created, payment surface not open yet
	StatePaymentInProgress       State = "payment_in_progress"       // Watching navigation for an outcome
	StateNotifyingComplete       State = "notifying_complete"
	StateNotifyingCancel         State = "notifying_cancel"
	StatePollingStatus           State = "polling_status"
	StateSuccess                 State = "success"
	StateFailed                  State = "failed"
)

// IsTerminal reports whether the handshake is over
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed
}

// ErrInvalidTransition is returned for a transition the handshake does not allow
var ErrInvalidTransition = errors.New("invalid handshake transition")

var transitions = map[State][]State{
	StateCreatingBooking:         {StateAwaitingPaymentRedirect, StateFailed},
	StateAwaitingPaymentRedirect: {StatePaymentInProgress, StateNotifyingCancel},
	StatePaymentInProgress:       {StateNotifyingComplete, StateNotifyingCancel},
	StateNotifyingComplete:       {StatePollingStatus},
	StateNotifyingCancel:         {StatePollingStatus},
	StatePollingStatus:           {StateSuccess, StateFailed},
}

// Handshake is the state of one booking attempt. Every change goes through
// Transition.
type Handshake struct {
	mu       sync.Mutex
	state    State
	signal   payment.Signal
	observer func(from, to State)
}

// NewHandshake starts a handshake in StateCreatingBooking. observer may be nil.
func NewHandshake(observer func(from, to State)) *Handshake {
	return &Handshake{state: StateCreatingBooking, observer: observer}
}

// State returns the current state
func (h *Handshake) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Signal returns the navigation outcome the handshake accepted, if any
func (h *Handshake) Signal() payment.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.signal
}

// Transition moves the handshake to the next state
func (h *Handshake) Transition(to State) error {
	h.mu.Lock()
	from := h.state
	if !allowed(from, to) {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	h.state = to
	h.mu.Unlock()

	if h.observer != nil {
		h.observer(from, to)
	}
	return nil
}

// Accept records a terminal navigation signal and moves to the matching
// notification state. Only the first terminal signal received while the
// payment is in progress is accepted; later ones return false. A failure
// is also accepted before the surface opens, when it could not be opened.
func (h *Handshake) Accept(signal payment.Signal) bool {
	var to State
	switch signal {
	case payment.SignalSuccess:
		to = StateNotifyingComplete
	case payment.SignalFailure:
		to = StateNotifyingCancel
	default:
		return false
	}

	h.mu.Lock()
	from := h.state
	if from != StatePaymentInProgress && !(from == StateAwaitingPaymentRedirect && signal == payment.SignalFailure) {
		h.mu.Unlock()
		return false
	}
	h.state = to
	h.signal = signal
	h.mu.Unlock()

	if h.observer != nil {
		h.observer(from, to)
	}
	return true
}

func allowed(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
