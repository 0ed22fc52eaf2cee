package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pursewatch-dev/pursewatch/internal/model"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestTrackerTransitions(t *testing.T) {
	tests := []struct {
		name      string
		sequence  []model.TrackerState
		accepted  []bool
		wantState model.TrackerState
	}{
		{
			name: "full purchase flow",
			sequence: []model.TrackerState{
				model.StateMonitoring,
				model.StateCheckoutEntered,
				model.StatePaymentFormActive,
				model.StatePaymentSubmitted,
				model.StateTransactionConfirmed,
			},
			accepted:  []bool{true, true, true, true, true},
			wantState: model.StateTransactionConfirmed,
		},
		{
			name: "backward transitions are silent no-ops",
			sequence: []model.TrackerState{
				model.StateMonitoring,
				model.StatePaymentSubmitted,
				model.StateCheckoutEntered,
			},
			accepted:  []bool{true, true, false},
			wantState: model.StatePaymentSubmitted,
		},
		{
			name: "re-arm to monitoring after confirmation",
			sequence: []model.TrackerState{
				model.StateMonitoring,
				model.StateTransactionConfirmed,
				model.StateMonitoring,
			},
			accepted:  []bool{true, true, true},
			wantState: model.StateMonitoring,
		},
		{
			name: "cancellation branch from monitoring",
			sequence: []model.TrackerState{
				model.StateMonitoring,
				model.StateCancellationFlow,
				model.StateCancellationConfirmed,
			},
			accepted:  []bool{true, true, true},
			wantState: model.StateCancellationConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(WithClock(fixedClock()))
			require.Equal(t, model.StateIdle, tr.State())

			for i, to := range tt.sequence {
				got := tr.Transition(to, "test", Data{})
				assert.Equal(t, tt.accepted[i], got, "transition %d to %s", i, to)
			}
			assert.Equal(t, tt.wantState, tr.State())
		})
	}
}

func TestTrackerStateNeverDecreasesExceptRearm(t *testing.T) {
	tr := New(WithClock(fixedClock()))
	states := []model.TrackerState{
		model.StateMonitoring,
		model.StatePaymentFormActive,
		model.StateCheckoutEntered,
		model.StateIdle,
		model.StatePaymentSubmitted,
		model.StateCheckoutEntered,
		model.StateTransactionConfirmed,
	}

	prevRank := tr.State().Rank()
	for _, to := range states {
		tr.Transition(to, "fuzz", Data{})
		rank := tr.State().Rank()
		if tr.State() != model.StateMonitoring {
			assert.GreaterOrEqual(t, rank, prevRank)
		}
		prevRank = rank
	}
}

func TestTrackerHistoryCap(t *testing.T) {
	tr := New(WithClock(fixedClock()))

	// Alternate between re-arm and a forward state to generate accepted
	// transitions well past the cap.
	for i := 0; i < HistoryCap*3; i++ {
		if i%2 == 0 {
			tr.Transition(model.StateMonitoring, fmt.Sprintf("step-%d", i), Data{})
		} else {
			tr.Transition(model.StateCheckoutEntered, fmt.Sprintf("step-%d", i), Data{})
		}
	}

	history := tr.History()
	assert.Len(t, history, HistoryCap)
	// Oldest entries evicted first: the trailing transition is the newest.
	assert.Equal(t, fmt.Sprintf("step-%d", HistoryCap*3-1), history[len(history)-1].Trigger)
}

func TestTrackerDataMerge(t *testing.T) {
	tr := New(WithClock(fixedClock()))

	tr.Transition(model.StateMonitoring, "load", Data{Name: "Acme"})
	tr.Transition(model.StatePaymentSubmitted, "click", Data{
		TriggerLabel: "Start Free Trial",
		IsTrial:      true,
	})
	// Zero values must not overwrite earlier observations.
	tr.Transition(model.StateTransactionConfirmed, "confirm", Data{
		Amount: decimal.NewFromFloat(9.99),
	})

	data := tr.Data()
	assert.Equal(t, "Acme", data.Name)
	assert.Equal(t, "Start Free Trial", data.TriggerLabel)
	assert.True(t, data.IsTrial)
	assert.True(t, decimal.NewFromFloat(9.99).Equal(data.Amount))
}

func TestBeginExtractionLatch(t *testing.T) {
	tr := New(WithClock(fixedClock()))

	assert.False(t, tr.BeginExtraction(), "extraction before confirmation")

	tr.Transition(model.StateMonitoring, "load", Data{})
	tr.Transition(model.StateTransactionConfirmed, "confirm", Data{})

	assert.True(t, tr.BeginExtraction(), "first extraction fires")
	assert.False(t, tr.BeginExtraction(), "second extraction suppressed")
	assert.True(t, tr.HasTriggered())

	// Even after an (allowed) re-arm and re-confirmation the latch holds.
	tr.Transition(model.StateMonitoring, "re-arm", Data{})
	tr.Transition(model.StateTransactionConfirmed, "confirm-again", Data{})
	assert.False(t, tr.BeginExtraction())
}
