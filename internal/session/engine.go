// Package session runs the per-page-session detection engine: a single
// goroutine consuming page lifecycle events and timer fires from one select
// loop. Re-entrancy is prevented structurally; there are no locks around the
// tracker or the scheduler state.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pursewatch-dev/pursewatch/internal/analyzer"
	"github.com/pursewatch-dev/pursewatch/internal/bus"
	"github.com/pursewatch-dev/pursewatch/internal/config"
	"github.com/pursewatch-dev/pursewatch/internal/extract"
	"github.com/pursewatch-dev/pursewatch/internal/model"
	"github.com/pursewatch-dev/pursewatch/internal/page"
	"github.com/pursewatch-dev/pursewatch/internal/service"
	"github.com/pursewatch-dev/pursewatch/internal/tracker"
)

// Config holds the scheduler timings.
type Config struct {
	// Debounce collapses bursts of mutation events into one re-evaluation.
	Debounce time.Duration
	// WatcherTimeout bounds the confirmation watcher after a payment-looking
	// click.
	WatcherTimeout time.Duration
	// WatcherPollInterval is how often the armed watcher re-checks the last
	// snapshot.
	WatcherPollInterval time.Duration
}

// DefaultConfig returns the design-default scheduler timings.
func DefaultConfig() Config {
	return Config{
		Debounce:            300 * time.Millisecond,
		WatcherTimeout:      60 * time.Second,
		WatcherPollInterval: 2 * time.Second,
	}
}

// Deps are the collaborators an engine is constructed with. The engine owns
// its tracker; analyzer, storage and broadcaster are shared across sessions.
type Deps struct {
	Store       *config.Store
	Analyzer    *analyzer.SiteAnalyzer
	Storage     service.Storage
	Broadcaster bus.Broadcaster
	Extractor   *extract.PriceExtractor
	Clock       func() time.Time
}

const eventQueueSize = 64

// Engine drives one page session through analysis and the purchase
// lifecycle.
type Engine struct {
	deps    Deps
	tracker *tracker.Tracker
	events  chan model.PageEvent
	status  *statusHolder
	id      string
	cfg     Config

	// loop-local state, touched only by Run's goroutine
	site            model.SiteIdentity
	analysis        model.AnalysisResult
	lastSnap        *page.Snapshot
	watcherDeadline time.Time
	ignored         bool
	watcherActive   bool
}

// New creates an engine for one page session.
func New(id string, cfg Config, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.NewPriceExtractor()
	}
	return &Engine{
		id:      id,
		cfg:     cfg,
		deps:    deps,
		tracker: tracker.New(tracker.WithClock(deps.Clock)),
		events:  make(chan model.PageEvent, eventQueueSize),
		status:  newStatusHolder(id),
	}
}

// Submit queues a page event for the engine. Events are dropped with a log
// when the queue is full; the next natural event re-evaluates anyway.
func (e *Engine) Submit(event model.PageEvent) bool {
	select {
	case e.events <- event:
		return true
	default:
		slog.Warn("session event queue full, dropping event",
			"session_id", e.id, "event_type", event.Type)
		return false
	}
}

// Status answers the "get current site status" query from in-memory state.
func (e *Engine) Status() Status {
	return e.status.get()
}

// Run consumes events and timers until the context is cancelled. It is the
// only goroutine that touches the tracker and scheduler state.
func (e *Engine) Run(ctx context.Context) {
	debounce := time.NewTimer(e.cfg.Debounce)
	stopTimer(debounce)
	defer debounce.Stop()

	poll := time.NewTicker(e.cfg.WatcherPollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-e.events:
			if !ok {
				return
			}
			if event.Type == model.EventUnload {
				e.watcherActive = false
				return
			}
			e.handleEvent(ctx, event, debounce)
		case <-debounce.C:
			e.runChecks(ctx, e.lastSnap)
		case <-poll.C:
			e.pollConfirmation(ctx)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, event model.PageEvent, debounce *time.Timer) {
	switch event.Type {
	case model.EventPageLoad, model.EventNavigation:
		snap, err := page.NewSnapshot(event.URL, event.Title, event.HTML)
		if err != nil {
			slog.Debug("unparseable snapshot, skipping", "session_id", e.id, "error", err)
			return
		}
		e.onPageLoad(ctx, snap)
	case model.EventMutation:
		if event.HTML != "" {
			snap, err := page.NewSnapshot(event.URL, event.Title, event.HTML)
			if err != nil {
				return
			}
			e.lastSnap = snap
		}
		resetTimer(debounce, e.cfg.Debounce)
	case model.EventClick:
		e.handleClick(ctx, event)
	case model.EventUnload:
		// handled in Run
	}
}

// onPageLoad gates on the deny-lists, scores the page (cached per domain) and
// arms monitoring when the capability score clears the threshold.
func (e *Engine) onPageLoad(ctx context.Context, snap *page.Snapshot) {
	e.lastSnap = snap
	hostname := snap.Hostname()

	if e.deps.Store.ShouldIgnore(hostname) {
		e.ignored = true
		slog.Debug("hostname excluded, skipping analysis",
			"session_id", e.id, "hostname", hostname)
		e.status.setIgnored(hostname)
		return
	}
	e.ignored = false

	e.analysis = e.deps.Analyzer.Analyze(snap)
	e.site = analyzer.Identify(snap)
	if e.analysis.Category != "" {
		e.site.Category = e.analysis.Category
	}

	if e.analysis.IsPaymentSite {
		e.transition(ctx, model.StateMonitoring, "page_qualified", tracker.Data{Name: e.site.Name})
	}

	e.runChecks(ctx, snap)
	e.syncStatus()
}

// runChecks re-evaluates URL, form and cancellation detectors against the
// latest snapshot. It is the debounced re-evaluation target for mutations.
func (e *Engine) runChecks(ctx context.Context, snap *page.Snapshot) {
	if e.ignored || snap == nil {
		return
	}
	if e.tracker.State() == model.StateIdle {
		return
	}

	path := snap.Path()

	if containsFragment(path, cancelPathFragments) {
		e.transition(ctx, model.StateCancellationFlow, "cancellation_url", tracker.Data{})
	}

	if containsFragment(path, checkoutPathFragments) {
		e.transition(ctx, model.StateCheckoutEntered, "checkout_url", tracker.Data{})
	}

	for _, selector := range paymentFormSelectors {
		if snap.Has(selector) {
			e.transition(ctx, model.StatePaymentFormActive, "payment_form", tracker.Data{})
			break
		}
	}

	if e.watcherActive {
		e.checkConfirmation(ctx, snap)
	}

	e.syncStatus()
}

// handleClick classifies the clicked label. While in the cancellation branch
// a matching confirm label completes the cancellation; otherwise a
// payment-looking label moves the flow to PAYMENT_SUBMITTED and arms the
// confirmation watcher.
func (e *Engine) handleClick(ctx context.Context, event model.PageEvent) {
	if e.ignored || e.tracker.State() == model.StateIdle {
		return
	}
	label := strings.ToLower(strings.TrimSpace(event.ClickText))
	if label == "" {
		return
	}

	if e.tracker.State() == model.StateCancellationFlow && matchesVocab(label, cancelConfirmVocab) {
		if e.transition(ctx, model.StateCancellationConfirmed, "cancellation_click", tracker.Data{}) {
			e.reportCancellation(ctx)
		}
		e.syncStatus()
		return
	}

	if matchesVocab(label, payClickVocab) {
		data := tracker.Data{
			TriggerLabel:   event.ClickText,
			IsTrial:        strings.Contains(label, "trial"),
			IsSubscription: matchesVocab(label, subscriptionLabelVocab),
		}
		if e.transition(ctx, model.StatePaymentSubmitted, "payment_click", data) {
			e.armWatcher()
		}
		e.syncStatus()
	}
}

// armWatcher starts the bounded confirmation watcher. The active flag keeps
// repeated payment clicks from spawning overlapping watchers.
func (e *Engine) armWatcher() {
	if e.watcherActive {
		return
	}
	e.watcherActive = true
	e.watcherDeadline = e.deps.Clock().Add(e.cfg.WatcherTimeout)
	slog.Debug("confirmation watcher armed",
		"session_id", e.id, "deadline", e.watcherDeadline)
}

func (e *Engine) pollConfirmation(ctx context.Context) {
	if !e.watcherActive {
		return
	}
	if e.deps.Clock().After(e.watcherDeadline) {
		e.watcherActive = false
		slog.Debug("confirmation watcher expired", "session_id", e.id)
		return
	}
	e.checkConfirmation(ctx, e.lastSnap)
}

// checkConfirmation looks for success-shaped URL fragments or wording and, on
// a hit, drives the tracker to the terminal state and performs the one-shot
// extraction.
func (e *Engine) checkConfirmation(ctx context.Context, snap *page.Snapshot) {
	if snap == nil {
		return
	}

	success := containsFragment(snap.Path(), successPathFragments)
	if !success {
		text := snap.LowerText()
		for _, marker := range successTextMarkers {
			if strings.Contains(text, marker) {
				success = true
				break
			}
		}
	}
	if !success {
		return
	}

	if e.transition(ctx, model.StateTransactionConfirmed, "confirmation_page", tracker.Data{ConfirmedURL: snap.URL()}) {
		e.watcherActive = false
		e.extractAndReport(ctx, snap)
		e.syncStatus()
	}
}

// extractAndReport builds the terminal record behind the tracker's one-shot
// latch, suppresses same-day duplicates via the persisted fingerprint list
// and hands the record to the reporting collaborator.
func (e *Engine) extractAndReport(ctx context.Context, snap *page.Snapshot) {
	if !e.tracker.BeginExtraction() {
		return
	}

	record := e.tracker.BuildRecord(e.site, snap, e.deps.Extractor)
	fingerprint := record.Fingerprint()

	duplicate, err := e.deps.Storage.IsDuplicate(ctx, fingerprint)
	if err != nil {
		// A possible duplicate report beats losing the transaction.
		slog.Warn("dedup check failed, assuming not duplicate",
			"session_id", e.id, "error", err)
		duplicate = false
	}
	if duplicate {
		slog.Info("suppressed duplicate transaction report",
			"session_id", e.id, "hostname", record.Hostname, "fingerprint", fingerprint)
		return
	}

	slog.Info("transaction detected",
		"session_id", e.id,
		"hostname", record.Hostname,
		"type", record.Type,
		"amount", record.Amount)

	e.broadcast(ctx, bus.Event{
		Type:      bus.EventTransactionDetected,
		SessionID: e.id,
		Timestamp: e.deps.Clock(),
		State:     e.tracker.State(),
		Site:      &e.site,
		Record:    &record,
	})
	if record.Type != model.TypePurchase {
		e.broadcast(ctx, bus.Event{
			Type:      bus.EventSubscriptionDetected,
			SessionID: e.id,
			Timestamp: e.deps.Clock(),
			Site:      &e.site,
			Record:    &record,
		})
	}

	if err := e.deps.Storage.MarkSaved(ctx, fingerprint); err != nil {
		slog.Warn("failed to persist fingerprint", "session_id", e.id, "error", err)
	}
}

// reportCancellation fires the cancellation event. Cancellations are gated by
// state rank alone; there is no fingerprint dedup for them.
func (e *Engine) reportCancellation(ctx context.Context) {
	slog.Info("cancellation detected", "session_id", e.id, "hostname", e.site.Hostname)
	e.broadcast(ctx, bus.Event{
		Type:      bus.EventCancellationDetected,
		SessionID: e.id,
		Timestamp: e.deps.Clock(),
		State:     e.tracker.State(),
		Site:      &e.site,
	})
}

// transition drives the tracker and, on acceptance, broadcasts the state
// update to the companion surface.
func (e *Engine) transition(ctx context.Context, to model.TrackerState, trigger string, data tracker.Data) bool {
	if !e.tracker.Transition(to, trigger, data) {
		return false
	}
	e.broadcast(ctx, bus.Event{
		Type:      bus.EventStateUpdate,
		SessionID: e.id,
		Timestamp: e.deps.Clock(),
		State:     e.tracker.State(),
		Site:      &e.site,
		Analysis:  &e.analysis,
	})
	return true
}

// broadcast is fire-and-forget: a failed delivery is logged and dropped.
func (e *Engine) broadcast(ctx context.Context, event bus.Event) {
	if e.deps.Broadcaster == nil {
		return
	}
	if err := e.deps.Broadcaster.Broadcast(ctx, event); err != nil {
		slog.Debug("broadcast dropped", "session_id", e.id, "event_type", event.Type, "error", err)
	}
}

func (e *Engine) syncStatus() {
	e.status.set(Status{
		SessionID: e.id,
		Ignored:   e.ignored,
		Site:      e.site,
		Analysis:  e.analysis,
		State:     e.tracker.State(),
		History:   e.tracker.History(),
	})
}

func containsFragment(path string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

func matchesVocab(label string, vocab []string) bool {
	for _, phrase := range vocab {
		if strings.Contains(label, phrase) {
			return true
		}
	}
	return false
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
