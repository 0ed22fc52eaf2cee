package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pursewatch-dev/pursewatch/internal/model"
	"github.com/pursewatch-dev/pursewatch/internal/page"
)

func mustSnapshot(t *testing.T, html string) *page.Snapshot {
	t.Helper()
	snap, err := page.NewSnapshot("https://shop.example.com/checkout", "Checkout", html)
	require.NoError(t, err)
	return snap
}

func TestExtractPricesTierShortCircuit(t *testing.T) {
	// A grand-total selector must win outright even when the page is littered
	// with other currency-marked amounts.
	html := `<html><body>
		<div class="line-item">Widget $50.00</div>
		<div class="line-item">Gadget $200.00</div>
		<div class="grand-total">Grand Total: $99.00</div>
	</body></html>`
	pe := NewPriceExtractor()

	candidates := pe.ExtractPrices(mustSnapshot(t, html))
	require.Len(t, candidates, 1)
	assert.True(t, decimal.RequireFromString("99.00").Equal(candidates[0].Amount))
	assert.Equal(t, 1.0, candidates[0].Confidence)
}

func TestExtractPricesTotalVocabulary(t *testing.T) {
	// No structural total selector, but a short node carrying total vocabulary
	// beats the raw text sweep.
	html := `<html><body>
		<p>Some marketing copy mentioning $5.00 shipping.</p>
		<span>Amount due: $42.50</span>
	</body></html>`
	pe := NewPriceExtractor()

	candidates := pe.ExtractPrices(mustSnapshot(t, html))
	require.NotEmpty(t, candidates)
	assert.True(t, decimal.RequireFromString("42.50").Equal(candidates[0].Amount))
	assert.Equal(t, 0.8, candidates[0].Confidence)
}

func TestExtractPricesTextSweepFallback(t *testing.T) {
	html := `<html><body>
		<article>Our premium widget costs $12.99 and ships worldwide.</article>
	</body></html>`
	pe := NewPriceExtractor()

	candidates := pe.ExtractPrices(mustSnapshot(t, html))
	require.NotEmpty(t, candidates)
	assert.True(t, decimal.RequireFromString("12.99").Equal(candidates[0].Amount))
	assert.Equal(t, 0.5, candidates[0].Confidence)
}

func TestExtractPricesEmptyPage(t *testing.T) {
	pe := NewPriceExtractor()
	snap := mustSnapshot(t, "<html><body><p>Nothing for sale here.</p></body></html>")

	assert.Empty(t, pe.ExtractPrices(snap))
	assert.True(t, pe.BestPrice(snap).IsZero())
}

func TestExtractPriceFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "dollar sign", text: "Total: $19.99", want: "19.99"},
		{name: "thousands separator", text: "Pay $1,299.50 now", want: "1299.50"},
		{name: "currency code prefix", text: "USD 49", want: "49"},
		{name: "currency word suffix", text: "only 25 dollars today", want: "25"},
		{name: "euro symbol", text: "€9.99/mo", want: "9.99"},
		{name: "no amount", text: "free forever", want: "0"},
		{name: "implausibly large", text: "$9,999,999.00 jackpot", want: "0"},
		{name: "zero rejected", text: "$0.00 due", want: "0"},
	}

	pe := NewPriceExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pe.ExtractPriceFromText(tt.text)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"got %s", got)
		})
	}
}

func TestRankCandidatesDedupAndOrder(t *testing.T) {
	in := []Candidate{
		{Amount: decimal.NewFromInt(10), Confidence: 0.5},
		{Amount: decimal.NewFromInt(99), Confidence: 0.5},
		{Amount: decimal.NewFromInt(10), Confidence: 0.5},
		{Amount: decimal.NewFromInt(42), Confidence: 0.8},
	}

	out := rankCandidates(in)
	require.Len(t, out, 3)
	assert.True(t, decimal.NewFromInt(42).Equal(out[0].Amount), "confidence first")
	assert.True(t, decimal.NewFromInt(99).Equal(out[1].Amount), "then amount desc")
	assert.True(t, decimal.NewFromInt(10).Equal(out[2].Amount))
}

func TestTrialDays(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Start your 14-day free trial today", 14},
		{"7 day trial, cancel anytime", 7},
		{"trial period of 30 days", 30},
		{"free for 60 days", 60},
		{"lifetime access, no trial", 0},
		{"0-day trial", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, TrialDays(tt.text))
		})
	}
}

func TestIsSubscription(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "two distinct keywords",
			text: "Subscribe now, billed monthly",
			want: true,
		},
		{
			name: "single keyword too weak",
			text: "Choose a plan",
			want: false,
		},
		{
			name: "repeated keyword still single",
			text: "plan plan plan",
			want: false,
		},
		{
			name: "no keywords",
			text: "Buy this one-time widget",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSubscription(tt.text))
		})
	}
}

func TestBillingCycle(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"$99 billed annually", model.BillingYearly},
		{"per year pricing", model.BillingYearly},
		{"$5 weekly", model.BillingWeekly},
		{"charged quarterly", model.BillingQuarterly},
		{"every 3 months", model.BillingQuarterly},
		{"$9.99/month", model.BillingMonthly},
		{"no cycle phrasing at all", model.BillingMonthly},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, BillingCycle(tt.text))
		})
	}
}

func TestPlanTier(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Enterprise plan for large teams", model.TierEnterprise},
		// First rule wins when multiple tiers are mentioned.
		{"Compare Enterprise vs Pro", model.TierEnterprise},
		{"Upgrade to Premium", model.TierPro},
		{"Basic plan, $5/mo", model.TierStarter},
		{"a plan with no tier words", model.TierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanTier(tt.text))
		})
	}
}
