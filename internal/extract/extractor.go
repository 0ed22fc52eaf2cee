// Package extract implements the price-extraction cascade and the supporting
// text heuristics for trial, subscription, billing-cycle and plan-tier
// detection. All rules live in ordered pattern tables so each one is
// independently testable and the short-circuit policy stays explicit.
package extract

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pursewatch-dev/pursewatch/internal/page"
)

// Candidate is one possible monetary amount found on a page, tagged with the
// confidence of the tier that produced it.
type Candidate struct {
	Source     string
	Amount     decimal.Decimal
	Confidence float64
}

var (
	maxPlausibleAmount = decimal.NewFromInt(1_000_000)

	// Tier confidences. A matched total selector is trusted over any number
	// of weaker text matches.
	confidenceSelector = 1.0
	confidenceVocab    = 0.8
	confidenceSweep    = 0.5
)

// PriceExtractor finds the best-guess transaction amount on a page.
type PriceExtractor struct{}

// NewPriceExtractor returns an extractor using the default pattern tables.
func NewPriceExtractor() *PriceExtractor {
	return &PriceExtractor{}
}

// ExtractPrices returns candidate amounts ordered highest-confidence first,
// ties broken toward the larger amount on the assumption that totals dominate
// line items. The three tiers short-circuit: the first tier yielding any
// positive candidate is the only one consulted.
func (pe *PriceExtractor) ExtractPrices(snap *page.Snapshot) []Candidate {
	// Tier 1: structural total selectors, first match wins outright.
	for _, selector := range totalSelectors {
		text, ok := snap.FirstText(selector)
		if !ok {
			continue
		}
		amount := pe.ExtractPriceFromText(text)
		if amount.IsPositive() {
			return []Candidate{{
				Amount:     amount,
				Confidence: confidenceSelector,
				Source:     selector,
			}}
		}
	}

	// Tier 2: short text nodes carrying total vocabulary.
	var candidates []Candidate
	snap.EachText(totalScanSelector, func(text string) {
		if len(text) >= 100 {
			return
		}
		lower := strings.ToLower(text)
		if !containsAny(lower, totalVocab) {
			return
		}
		amount := pe.ExtractPriceFromText(text)
		if amount.IsPositive() {
			candidates = append(candidates, Candidate{
				Amount:     amount,
				Confidence: confidenceVocab,
				Source:     "total-vocabulary",
			})
		}
	})

	// Tier 3: currency-marked numbers anywhere in the visible text.
	if len(candidates) == 0 {
		for _, amount := range allAmounts(snap.Text()) {
			candidates = append(candidates, Candidate{
				Amount:     amount,
				Confidence: confidenceSweep,
				Source:     "text-sweep",
			})
		}
	}

	return rankCandidates(candidates)
}

// BestPrice returns the single highest-ranked amount, or zero when the page
// yields no plausible candidate.
func (pe *PriceExtractor) BestPrice(snap *page.Snapshot) decimal.Decimal {
	candidates := pe.ExtractPrices(snap)
	if len(candidates) == 0 {
		return decimal.Zero
	}
	return candidates[0].Amount
}

// ExtractPriceFromText returns the first plausible currency-marked amount in
// the text, or zero.
func (pe *PriceExtractor) ExtractPriceFromText(text string) decimal.Decimal {
	for _, pattern := range currencyPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if amount, ok := parseAmount(match[1]); ok {
			return amount
		}
	}
	return decimal.Zero
}

func allAmounts(text string) []decimal.Decimal {
	var amounts []decimal.Decimal
	for _, pattern := range currencyPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if amount, ok := parseAmount(match[1]); ok {
				amounts = append(amounts, amount)
			}
		}
	}
	return amounts
}

// parseAmount parses a numeric string with optional thousands separators and
// applies the plausibility bound that rejects parsing noise.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if !amount.IsPositive() || amount.GreaterThanOrEqual(maxPlausibleAmount) {
		return decimal.Zero, false
	}
	return amount, true
}

// rankCandidates deduplicates by amount and sorts by confidence descending,
// then amount descending.
func rankCandidates(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	unique := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.Amount.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].Confidence != unique[j].Confidence {
			return unique[i].Confidence > unique[j].Confidence
		}
		return unique[i].Amount.GreaterThan(unique[j].Amount)
	})
	return unique
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
