// Package model defines the core domain models used throughout the application.
package model

import "time"

// TrackerState is one step of the purchase-lifecycle state machine.
type TrackerState string

// Lifecycle states, in forward order. The cancellation branch sits after the
// purchase branch so rank comparison keeps it reachable from any monitoring
// state.
const (
	StateIdle                  TrackerState = "IDLE"
	StateMonitoring            TrackerState = "MONITORING"
	StateCheckoutEntered       TrackerState = "CHECKOUT_ENTERED"
	StatePaymentFormActive     TrackerState = "PAYMENT_FORM_ACTIVE"
	StatePaymentSubmitted      TrackerState = "PAYMENT_SUBMITTED"
	StateTransactionConfirmed  TrackerState = "TRANSACTION_CONFIRMED"
	StateCancellationFlow      TrackerState = "CANCELLATION_FLOW"
	StateCancellationConfirmed TrackerState = "CANCELLATION_CONFIRMED"
)

var stateRanks = map[TrackerState]int{
	StateIdle:                  0,
	StateMonitoring:            1,
	StateCheckoutEntered:       2,
	StatePaymentFormActive:     3,
	StatePaymentSubmitted:      4,
	StateTransactionConfirmed:  5,
	StateCancellationFlow:      6,
	StateCancellationConfirmed: 7,
}

// Rank returns the position of the state in the lifecycle ordering.
// Unknown states rank below IDLE so they can never be transitioned into.
func (s TrackerState) Rank() int {
	if rank, ok := stateRanks[s]; ok {
		return rank
	}
	return -1
}

// Valid reports whether the state is a member of the known state set.
func (s TrackerState) Valid() bool {
	_, ok := stateRanks[s]
	return ok
}

// CanTransition reports whether the state machine accepts a move from one
// state to another. Transitions must move forward in rank; the single
// exception is the explicit re-arm back to MONITORING when a new page
// qualifies after navigation.
func CanTransition(from, to TrackerState) bool {
	if !to.Valid() {
		return false
	}
	if to == StateMonitoring {
		return true
	}
	return to.Rank() > from.Rank()
}

// StateTransition records one accepted move of the state machine.
type StateTransition struct {
	At      time.Time    `json:"at"`
	From    TrackerState `json:"from"`
	To      TrackerState `json:"to"`
	Trigger string       `json:"trigger,omitempty"`
}
