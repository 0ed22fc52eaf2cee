package session

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pursewatch-dev/pursewatch/internal/analyzer"
	"github.com/pursewatch-dev/pursewatch/internal/bus"
	"github.com/pursewatch-dev/pursewatch/internal/config"
	"github.com/pursewatch-dev/pursewatch/internal/model"
	"github.com/pursewatch-dev/pursewatch/internal/service"
)

// memStorage is an in-memory service.Storage for engine tests.
type memStorage struct {
	fingerprints map[string]bool
	blacklist    []string
	dupErr       error
}

func newMemStorage() *memStorage {
	return &memStorage{fingerprints: make(map[string]bool)}
}

func (m *memStorage) IsDuplicate(_ context.Context, fingerprint string) (bool, error) {
	if m.dupErr != nil {
		return false, m.dupErr
	}
	return m.fingerprints[fingerprint], nil
}

func (m *memStorage) MarkSaved(_ context.Context, fingerprint string) error {
	m.fingerprints[fingerprint] = true
	return nil
}

func (m *memStorage) ListFingerprints(context.Context) ([]service.FingerprintEntry, error) {
	return nil, nil
}
func (m *memStorage) ClearFingerprints(context.Context) error        { return nil }
func (m *memStorage) GetBlacklist(context.Context) ([]string, error) { return m.blacklist, nil }
func (m *memStorage) AddBlacklistDomain(context.Context, string) error {
	return nil
}
func (m *memStorage) RemoveBlacklistDomain(context.Context, string) error { return nil }
func (m *memStorage) Migrate(context.Context) error                       { return nil }
func (m *memStorage) Close() error                                        { return nil }

// capture records broadcast events in order; engine tests are single
// goroutine so no locking is needed.
type capture struct {
	events []bus.Event
}

func (c *capture) Broadcast(_ context.Context, event bus.Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *capture) ofType(t bus.EventType) []bus.Event {
	var out []bus.Event
	for _, event := range c.events {
		if event.Type == t {
			out = append(out, event)
		}
	}
	return out
}

type fixture struct {
	engine  *Engine
	storage *memStorage
	bus     *capture
	now     time.Time
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		storage: newMemStorage(),
		bus:     &capture{},
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(f)
	}

	deps := Deps{
		Store:       config.NewStaticStore(f.storage.blacklist, nil),
		Analyzer:    analyzer.NewSiteAnalyzer(analyzer.WithClock(func() time.Time { return f.now })),
		Storage:     f.storage,
		Broadcaster: f.bus,
		Clock:       func() time.Time { return f.now },
	}
	f.engine = New("sess-1", DefaultConfig(), deps)
	return f
}

const pricingHTML = `<html><head><title>Acme Cloud | Pricing</title></head><body>
	<div class="plan">Pro plan, $12.99/mo billed monthly</div>
	<form action="/checkout/submit">
		<input autocomplete="cc-number" name="cardnumber" placeholder="Card number">
	</form>
	<button>Start Free Trial</button>
</body></html>`

const confirmationHTML = `<html><body>
	<h1>Thank you for your purchase</h1>
	<div class="order-total">Total: $12.99</div>
	<p>Your 14-day free trial has started.</p>
</body></html>`

func TestEngineTrialPurchaseFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.handleEvent(ctx, model.PageEvent{
		Type:  model.EventPageLoad,
		URL:   "https://acme.example.com/pricing",
		Title: "Acme Cloud | Pricing",
		HTML:  pricingHTML,
	}, time.NewTimer(time.Hour))

	// Pricing URL plus visible payment form walk the tracker forward
	// immediately.
	assert.Equal(t, model.StatePaymentFormActive, f.engine.tracker.State())
	status := f.engine.Status()
	assert.True(t, status.Analysis.IsPaymentSite)
	assert.Equal(t, "Acme Cloud", status.Site.Name)

	f.engine.handleClick(ctx, model.PageEvent{
		Type:      model.EventClick,
		ClickText: "Start Free Trial",
	})
	assert.Equal(t, model.StatePaymentSubmitted, f.engine.tracker.State())
	assert.True(t, f.engine.watcherActive)

	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventNavigation,
		URL:  "https://acme.example.com/checkout/success",
		HTML: confirmationHTML,
	}, time.NewTimer(time.Hour))

	assert.Equal(t, model.StateTransactionConfirmed, f.engine.tracker.State())
	assert.False(t, f.engine.watcherActive)

	detected := f.bus.ofType(bus.EventTransactionDetected)
	require.Len(t, detected, 1)
	record := detected[0].Record
	require.NotNil(t, record)
	assert.Equal(t, model.TypeTrial, record.Type)
	assert.True(t, record.IsTrial)
	assert.Equal(t, 14, record.TrialDays)
	assert.Equal(t, "acme.example.com", record.Hostname)
	assert.True(t, decimal.RequireFromString("12.99").Equal(record.Amount))
	assert.NotEmpty(t, record.BehaviorFlow)

	// Trials also fire the subscription-shaped event.
	assert.Len(t, f.bus.ofType(bus.EventSubscriptionDetected), 1)

	// Every accepted transition fanned out a state update.
	assert.NotEmpty(t, f.bus.ofType(bus.EventStateUpdate))

	// The fingerprint was persisted for same-day dedup.
	dup, err := f.storage.IsDuplicate(context.Background(), record.Fingerprint())
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestEngineSuppressesSameDayDuplicate(t *testing.T) {
	storage := newMemStorage()

	run := func() *capture {
		f := newFixture(t, func(f *fixture) { f.storage = storage })
		ctx := context.Background()

		f.engine.handleEvent(ctx, model.PageEvent{
			Type: model.EventPageLoad,
			URL:  "https://acme.example.com/pricing",
			HTML: pricingHTML,
		}, time.NewTimer(time.Hour))
		f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Pay now"})
		f.engine.handleEvent(ctx, model.PageEvent{
			Type: model.EventNavigation,
			URL:  "https://acme.example.com/checkout/success",
			HTML: confirmationHTML,
		}, time.NewTimer(time.Hour))
		return f.bus
	}

	first := run()
	require.Len(t, first.ofType(bus.EventTransactionDetected), 1)

	second := run()
	assert.Empty(t, second.ofType(bus.EventTransactionDetected),
		"same fingerprint on the same day reports once")
}

func TestEngineDedupFailureDegradesToReporting(t *testing.T) {
	f := newFixture(t)
	f.storage.dupErr = assert.AnError
	ctx := context.Background()

	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventPageLoad,
		URL:  "https://acme.example.com/pricing",
		HTML: pricingHTML,
	}, time.NewTimer(time.Hour))
	f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Pay now"})
	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventNavigation,
		URL:  "https://acme.example.com/checkout/success",
		HTML: confirmationHTML,
	}, time.NewTimer(time.Hour))

	assert.Len(t, f.bus.ofType(bus.EventTransactionDetected), 1,
		"a broken dedup cache never swallows the transaction")
}

func TestEngineCancellationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventPageLoad,
		URL:  "https://acme.example.com/account/cancel",
		HTML: pricingHTML,
	}, time.NewTimer(time.Hour))
	assert.Equal(t, model.StateCancellationFlow, f.engine.tracker.State())

	// A payment-looking click is ignored while cancelling unless it confirms
	// the cancellation.
	f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Yes, cancel my subscription"})
	assert.Equal(t, model.StateCancellationConfirmed, f.engine.tracker.State())

	cancels := f.bus.ofType(bus.EventCancellationDetected)
	require.Len(t, cancels, 1)
	assert.Equal(t, "sess-1", cancels[0].SessionID)
	assert.Empty(t, f.bus.ofType(bus.EventTransactionDetected))
}

func TestEngineIgnoresBlacklistedDomain(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.storage.blacklist = []string{"acme.example.com"}
	})
	ctx := context.Background()

	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventPageLoad,
		URL:  "https://acme.example.com/pricing",
		HTML: pricingHTML,
	}, time.NewTimer(time.Hour))

	assert.Equal(t, model.StateIdle, f.engine.tracker.State())
	assert.True(t, f.engine.Status().Ignored)
	assert.Empty(t, f.bus.events, "excluded domains emit nothing")

	f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Pay now"})
	assert.Equal(t, model.StateIdle, f.engine.tracker.State())
}

func TestEngineContentPageStaysIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventPageLoad,
		URL:  "https://blog.example.com/post",
		HTML: "<html><body><article>Nothing to buy here.</article></body></html>",
	}, time.NewTimer(time.Hour))

	assert.Equal(t, model.StateIdle, f.engine.tracker.State())

	// Below the threshold no clicks are interpreted as purchases.
	f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Pay now"})
	assert.Equal(t, model.StateIdle, f.engine.tracker.State())
	assert.Empty(t, f.bus.ofType(bus.EventTransactionDetected))
}

func TestEngineWatcherExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventPageLoad,
		URL:  "https://acme.example.com/pricing",
		HTML: pricingHTML,
	}, time.NewTimer(time.Hour))
	f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Pay now"})
	require.True(t, f.engine.watcherActive)

	// Within the window the watcher keeps polling without a confirmation.
	f.now = f.now.Add(30 * time.Second)
	f.engine.pollConfirmation(ctx)
	assert.True(t, f.engine.watcherActive)

	// Past the deadline it disarms and the flow never confirms.
	f.now = f.now.Add(31 * time.Second)
	f.engine.pollConfirmation(ctx)
	assert.False(t, f.engine.watcherActive)
	assert.Equal(t, model.StatePaymentSubmitted, f.engine.tracker.State())
	assert.Empty(t, f.bus.ofType(bus.EventTransactionDetected))
}

func TestEngineRepeatedPaymentClicksKeepOneWatcher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.handleEvent(ctx, model.PageEvent{
		Type: model.EventPageLoad,
		URL:  "https://acme.example.com/pricing",
		HTML: pricingHTML,
	}, time.NewTimer(time.Hour))

	f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Pay now"})
	deadline := f.engine.watcherDeadline

	f.now = f.now.Add(10 * time.Second)
	f.engine.handleClick(ctx, model.PageEvent{Type: model.EventClick, ClickText: "Pay now"})
	assert.Equal(t, deadline, f.engine.watcherDeadline, "second click does not re-arm")
}

func TestEngineSubmitDropsWhenQueueFull(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < eventQueueSize; i++ {
		require.True(t, f.engine.Submit(model.PageEvent{Type: model.EventMutation}))
	}
	assert.False(t, f.engine.Submit(model.PageEvent{Type: model.EventMutation}))
}

func TestEngineDebouncedMutationChecks(t *testing.T) {
	storage := newMemStorage()
	deps := Deps{
		Store:    config.NewStaticStore(nil, nil),
		Analyzer: analyzer.NewSiteAnalyzer(),
		Storage:  storage,
	}
	cfg := Config{
		Debounce:            20 * time.Millisecond,
		WatcherTimeout:      time.Minute,
		WatcherPollInterval: time.Minute,
	}
	engine := New("sess-1", cfg, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	// Qualifies as a payment site but offers no checkout URL or form yet.
	require.True(t, engine.Submit(model.PageEvent{
		Type: model.EventPageLoad,
		URL:  "https://acme.example.com/home",
		HTML: `<html><body>
			<div class="plan">Pro plan, billed monthly</div>
			<div class="pricing-cart">compare plans</div>
			<button>Subscribe</button>
		</body></html>`,
	}))
	require.Eventually(t, func() bool {
		return engine.Status().State == model.StateMonitoring
	}, time.Second, 5*time.Millisecond)

	// A burst of mutations, the last of which reveals the payment form; the
	// debounced re-check picks it up.
	for i := 0; i < 3; i++ {
		require.True(t, engine.Submit(model.PageEvent{
			Type: model.EventMutation,
			URL:  "https://acme.example.com/home",
			HTML: `<html><body><input autocomplete="cc-number"></body></html>`,
		}))
	}
	require.Eventually(t, func() bool {
		return engine.Status().State == model.StatePaymentFormActive
	}, time.Second, 5*time.Millisecond)
}

func TestEngineRunStopsOnUnload(t *testing.T) {
	f := newFixture(t)

	done := make(chan struct{})
	go func() {
		f.engine.Run(context.Background())
		close(done)
	}()

	f.engine.Submit(model.PageEvent{Type: model.EventUnload})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop on unload")
	}
}

func TestEngineRunStopsOnContextCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.engine.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop on cancel")
	}
}
