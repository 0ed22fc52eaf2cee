package extract

import (
	"regexp"

	"github.com/pursewatch-dev/pursewatch/internal/model"
)

// totalSelectors is the tier-1 priority list of structural selectors strongly
// associated with order/grand/final totals. First match wins and is returned
// as the sole candidate.
var totalSelectors = []string{
	".order-total .amount",
	".order-total__amount",
	"[data-testid*='order-total']",
	"[data-testid*='grand-total']",
	".grand-total",
	".order-total",
	".cart-total",
	".checkout-total",
	".payment-total",
	".total-amount",
	".total-price",
	".final-price",
	"[class*='grand-total']",
	"[class*='order-total']",
	"[class*='total-amount']",
	"#order-total",
	"#total",
}

// totalVocab marks short text nodes that look like a total line (tier 2).
var totalVocab = []string{
	"grand total",
	"order total",
	"total due",
	"amount due",
	"amount payable",
	"total payable",
	"you pay",
	"total:",
	"total ",
}

// totalScanSelector limits the tier-2 sweep to leafish text containers.
const totalScanSelector = "span, div, td, th, dd, strong, b, p, li"

// currencyPatterns match currency-marked numeric amounts in visible text
// (tier 3). Each pattern captures the numeric part in group 1; thousands
// separators and up to two decimal places are supported.
var currencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$€£₹₨]\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	regexp.MustCompile(`(?i)\b(?:USD|EUR|GBP|INR|CAD|AUD|PKR|Rs\.?)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	regexp.MustCompile(`(?i)([0-9][0-9,]*(?:\.[0-9]{1,2})?)\s*(?:USD|EUR|GBP|dollars|euros)\b`),
}

// trialPatterns extract a trial duration in days from phrasing like
// "14-day free trial". Group 1 captures the day count.
var trialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d{1,3})[-\s]day(?:s)?(?:\s+free)?\s+trial\b`),
	regexp.MustCompile(`(?i)\btrial\s+(?:period\s+)?(?:of\s+|for\s+)?(\d{1,3})\s+days?\b`),
	regexp.MustCompile(`(?i)\bfree\s+for\s+(\d{1,3})\s+days?\b`),
}

// subscriptionKeywords drive the keyword-density subscription check; two or
// more distinct hits classify the flow as a subscription.
var subscriptionKeywords = []string{
	"subscription",
	"subscribe",
	"billed",
	"billing",
	"per month",
	"/mo",
	"monthly",
	"per year",
	"/yr",
	"annual",
	"renew",
	"recurring",
	"membership",
	"plan",
}

// cycleRule maps a billing-cycle phrasing pattern to its cycle name. Rules
// are evaluated in order; monthly is the fallback.
type cycleRule struct {
	pattern *regexp.Regexp
	cycle   string
}

var cycleRules = []cycleRule{
	{regexp.MustCompile(`(?i)\b(?:annual(?:ly)?|yearly|per\s+year|/\s*y(?:ea)?r)\b`), model.BillingYearly},
	{regexp.MustCompile(`(?i)\b(?:weekly|per\s+week|/\s*w(?:ee)?k)\b`), model.BillingWeekly},
	{regexp.MustCompile(`(?i)\b(?:quarterly|per\s+quarter|every\s+3\s+months)\b`), model.BillingQuarterly},
}

// tierRule maps plan-tier keywords to a tier name. Rules are evaluated in
// order and the first matching rule wins, so enterprise outranks pro.
type tierRule struct {
	pattern *regexp.Regexp
	tier    string
}

var tierRules = []tierRule{
	{regexp.MustCompile(`(?i)\b(?:enterprise|business|team)\b`), model.TierEnterprise},
	{regexp.MustCompile(`(?i)\b(?:pro|premium|plus)\b`), model.TierPro},
	{regexp.MustCompile(`(?i)\b(?:starter|basic|lite)\b`), model.TierStarter},
}
