package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a detected transaction.
type TransactionType string

// Transaction type constants.
const (
	TypePurchase     TransactionType = "purchase"
	TypeSubscription TransactionType = "subscription"
	TypeTrial        TransactionType = "trial"
)

// Billing cycle constants.
const (
	BillingMonthly   = "monthly"
	BillingYearly    = "yearly"
	BillingQuarterly = "quarterly"
	BillingWeekly    = "weekly"
)

// Plan tier constants, most specific first.
const (
	TierEnterprise = "enterprise"
	TierPro        = "pro"
	TierStarter    = "starter"
	TierStandard   = "standard"
)

// TransactionRecord is the terminal artifact of a confirmed flow. It is
// created exactly once per tracker instance and is write-once; ownership
// transfers to the reporting collaborator immediately after creation.
type TransactionRecord struct {
	DetectedAt   time.Time         `json:"detected_at"`
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Hostname     string            `json:"hostname"`
	Type         TransactionType   `json:"type"`
	BillingCycle string            `json:"billing_cycle,omitempty"`
	PlanTier     string            `json:"plan_tier,omitempty"`
	Category     string            `json:"category"`
	SourceURL    string            `json:"source_url"`
	BehaviorFlow []StateTransition `json:"behavior_flow,omitempty"`
	Amount       decimal.Decimal   `json:"amount"`
	TrialDays    int               `json:"trial_days,omitempty"`
	IsTrial      bool              `json:"is_trial"`
}

// Fingerprint derives the duplicate-suppression key for the record. Two
// reports of the same purchase on the same calendar day collapse to the same
// fingerprint; the key is never persisted on the record itself.
func (r *TransactionRecord) Fingerprint() string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		r.Hostname,
		r.Name,
		r.Amount.StringFixed(2),
		r.DetectedAt.Format("2006-01-02"))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:8])
}
