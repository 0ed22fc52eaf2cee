package extract

import (
	"strconv"
	"strings"

	"github.com/pursewatch-dev/pursewatch/internal/model"
)

// TrialDays returns the trial duration found in the text, or zero when no
// "N-day trial" phrasing is present.
func TrialDays(text string) int {
	for _, pattern := range trialPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if days, err := strconv.Atoi(match[1]); err == nil && days > 0 {
			return days
		}
	}
	return 0
}

// IsSubscription reports whether the text carries enough subscription
// vocabulary to classify the flow as recurring. A single keyword is too weak;
// two or more distinct keywords are required.
func IsSubscription(text string) bool {
	lower := strings.ToLower(text)
	distinct := 0
	for _, keyword := range subscriptionKeywords {
		if strings.Contains(lower, keyword) {
			distinct++
			if distinct >= 2 {
				return true
			}
		}
	}
	return false
}

// BillingCycle classifies the billing period mentioned in the text. Monthly
// is the default when no other cycle phrasing matches.
func BillingCycle(text string) string {
	for _, rule := range cycleRules {
		if rule.pattern.MatchString(text) {
			return rule.cycle
		}
	}
	return model.BillingMonthly
}

// PlanTier classifies the plan tier mentioned in the text. Rules are
// priority-ordered and first match wins, so "enterprise" beats "pro" when
// both appear. Standard is the fallback.
func PlanTier(text string) string {
	for _, rule := range tierRules {
		if rule.pattern.MatchString(text) {
			return rule.tier
		}
	}
	return model.TierStandard
}
