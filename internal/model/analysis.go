package model

import "time"

// AnalysisResult is the outcome of scoring a page for payment capability.
// It is immutable once produced and cached per domain.
type AnalysisResult struct {
	AnalyzedAt    time.Time `json:"analyzed_at"`
	Category      string    `json:"category"`
	Signals       []string  `json:"signals"`
	Score         int       `json:"score"`
	IsPaymentSite bool      `json:"is_payment_site"`
}

// SiteIdentity describes the site behind the current page, derived once per
// page load from metadata and title heuristics. Category is refined when the
// analysis result assigns one.
type SiteIdentity struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	Category string `json:"category"`
	IconURL  string `json:"icon_url,omitempty"`
}
