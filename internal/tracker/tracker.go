// Package tracker implements the purchase-lifecycle state machine. The
// tracker owns the current state, the accumulated transaction data and a
// bounded transition history; the session engine drives it and performs the
// terminal extraction through the one-shot latch.
package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pursewatch-dev/pursewatch/internal/model"
)

// HistoryCap bounds the transition history ring; the oldest entries are
// evicted first.
const HistoryCap = 50

// Data is the transaction data accumulated across transitions. Fields merge
// last-write-wins: zero values never overwrite earlier observations.
type Data struct {
	Name           string
	TriggerLabel   string
	BillingCycle   string
	PlanTier       string
	ConfirmedURL   string
	Amount         decimal.Decimal
	TrialDays      int
	IsTrial        bool
	IsSubscription bool
}

func (d *Data) merge(in Data) {
	if in.Name != "" {
		d.Name = in.Name
	}
	if in.TriggerLabel != "" {
		d.TriggerLabel = in.TriggerLabel
	}
	if in.BillingCycle != "" {
		d.BillingCycle = in.BillingCycle
	}
	if in.PlanTier != "" {
		d.PlanTier = in.PlanTier
	}
	if in.ConfirmedURL != "" {
		d.ConfirmedURL = in.ConfirmedURL
	}
	if in.Amount.IsPositive() {
		d.Amount = in.Amount
	}
	if in.TrialDays > 0 {
		d.TrialDays = in.TrialDays
	}
	if in.IsTrial {
		d.IsTrial = true
	}
	if in.IsSubscription {
		d.IsSubscription = true
	}
}

// Tracker is a finite-state machine over the purchase lifecycle. It is not
// safe for concurrent use; the session engine owns it from a single
// goroutine.
type Tracker struct {
	now          func() time.Time
	state        model.TrackerState
	history      []model.StateTransition
	data         Data
	hasTriggered bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a tracker in the IDLE state.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		state: model.StateIdle,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current lifecycle state.
func (t *Tracker) State() model.TrackerState {
	return t.state
}

// Data returns the accumulated transaction data.
func (t *Tracker) Data() Data {
	return t.data
}

// History returns a copy of the bounded transition history.
func (t *Tracker) History() []model.StateTransition {
	out := make([]model.StateTransition, len(t.history))
	copy(out, t.history)
	return out
}

// Transition attempts to move the state machine forward. Transitions are
// accepted only when they advance in rank, or when re-arming to MONITORING
// after navigation. Rejected transitions are silent no-ops. On acceptance the
// transition is appended to the capped history and the supplied data is
// merged into the accumulated transaction data.
func (t *Tracker) Transition(to model.TrackerState, trigger string, data Data) bool {
	if !model.CanTransition(t.state, to) {
		return false
	}

	t.history = append(t.history, model.StateTransition{
		From:    t.state,
		To:      to,
		Trigger: trigger,
		At:      t.now(),
	})
	if len(t.history) > HistoryCap {
		t.history = t.history[len(t.history)-HistoryCap:]
	}

	t.data.merge(data)
	t.state = to
	return true
}

// BeginExtraction is the one-shot latch guarding terminal extraction. It
// returns true exactly once, when the tracker has reached
// TRANSACTION_CONFIRMED and extraction has not yet fired, even if the
// confirmed state is somehow re-entered.
func (t *Tracker) BeginExtraction() bool {
	if t.state != model.StateTransactionConfirmed || t.hasTriggered {
		return false
	}
	t.hasTriggered = true
	return true
}

// HasTriggered reports whether terminal extraction already fired.
func (t *Tracker) HasTriggered() bool {
	return t.hasTriggered
}
