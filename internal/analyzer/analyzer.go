// Package analyzer scores pages for payment capability from independent
// weighted signals and classifies the site into a business category. The
// detector table is static configuration data; the analyzer itself never
// mutates the page.
package analyzer

import (
	"log/slog"
	"time"

	"github.com/pursewatch-dev/pursewatch/internal/model"
	"github.com/pursewatch-dev/pursewatch/internal/page"
)

// PaymentScoreThreshold is the score at or above which a page is considered
// to belong to a site with purchase capability.
const PaymentScoreThreshold = 15

// SiteAnalyzer computes payment-capability scores for page snapshots,
// memoized per domain for the cache window.
type SiteAnalyzer struct {
	cache     *Cache
	now       func() time.Time
	detectors []Detector
	threshold int
}

// Option configures a SiteAnalyzer.
type Option func(*SiteAnalyzer)

// WithDetectors replaces the default detector table.
func WithDetectors(detectors []Detector) Option {
	return func(a *SiteAnalyzer) { a.detectors = detectors }
}

// WithThreshold overrides the payment-site decision threshold.
func WithThreshold(threshold int) Option {
	return func(a *SiteAnalyzer) { a.threshold = threshold }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *SiteAnalyzer) {
		a.now = now
		a.cache.now = now
	}
}

// WithCacheTTL overrides the per-domain cache window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(a *SiteAnalyzer) { a.cache.ttl = ttl }
}

// NewSiteAnalyzer creates an analyzer with the default detector table and a
// 5-minute per-domain result cache.
func NewSiteAnalyzer(opts ...Option) *SiteAnalyzer {
	a := &SiteAnalyzer{
		detectors: DefaultDetectors(),
		threshold: PaymentScoreThreshold,
		now:       time.Now,
		cache:     NewCache(DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores the snapshot, reusing the cached result for the snapshot's
// domain when one is still fresh.
func (a *SiteAnalyzer) Analyze(snap *page.Snapshot) model.AnalysisResult {
	domain := snap.Hostname()
	if result, ok := a.cache.Get(domain); ok {
		return result
	}

	result := a.Score(snap)
	if domain != "" {
		a.cache.Put(domain, result)
	}

	slog.Debug("analyzed page",
		"hostname", domain,
		"score", result.Score,
		"payment_site", result.IsPaymentSite,
		"category", result.Category,
		"signals", result.Signals)
	return result
}

// Score evaluates the detector table against the snapshot, bypassing the
// cache. Detector failures count as "no signal" and never abort the scan.
func (a *SiteAnalyzer) Score(snap *page.Snapshot) model.AnalysisResult {
	score := 0
	signals := make([]string, 0, len(a.detectors))

	for _, detector := range a.detectors {
		points := safeProbe(detector, snap)
		if points > 0 {
			score += points
			signals = append(signals, detector.Signal)
		}
	}

	return model.AnalysisResult{
		Score:         score,
		IsPaymentSite: score >= a.threshold,
		Signals:       signals,
		Category:      Categorize(snap.Title(), snap.Hostname()),
		AnalyzedAt:    a.now(),
	}
}

// InvalidateDomain drops any cached result for the domain, used when the
// caller knows the page changed qualitatively (hard navigation).
func (a *SiteAnalyzer) InvalidateDomain(domain string) {
	a.cache.Invalidate(domain)
}

func safeProbe(detector Detector, snap *page.Snapshot) (points int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("detector probe failed", "signal", detector.Signal, "panic", r)
			points = 0
		}
	}()
	return detector.Probe(snap)
}
