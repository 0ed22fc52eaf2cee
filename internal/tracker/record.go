package tracker

import (
	"github.com/google/uuid"

	"github.com/pursewatch-dev/pursewatch/internal/extract"
	"github.com/pursewatch-dev/pursewatch/internal/model"
	"github.com/pursewatch-dev/pursewatch/internal/page"
)

// BuildRecord assembles the terminal transaction record from the accumulated
// data, the confirmation-page snapshot and the text heuristics. Call it only
// after BeginExtraction returned true; the record is write-once and ownership
// passes to the reporting collaborator.
func (t *Tracker) BuildRecord(site model.SiteIdentity, snap *page.Snapshot, pe *extract.PriceExtractor) model.TransactionRecord {
	text := snap.Text()
	if t.data.TriggerLabel != "" {
		text = t.data.TriggerLabel + " " + text
	}

	amount := t.data.Amount
	if !amount.IsPositive() {
		amount = pe.BestPrice(snap)
	}

	trialDays := t.data.TrialDays
	if trialDays == 0 {
		trialDays = extract.TrialDays(text)
	}
	isTrial := t.data.IsTrial || trialDays > 0
	isSubscription := t.data.IsSubscription || extract.IsSubscription(text)

	recordType := model.TypePurchase
	switch {
	case isTrial:
		recordType = model.TypeTrial
	case isSubscription:
		recordType = model.TypeSubscription
	}

	name := t.data.Name
	if name == "" {
		name = site.Name
	}

	record := model.TransactionRecord{
		ID:           uuid.NewString(),
		Name:         name,
		Hostname:     site.Hostname,
		Type:         recordType,
		Amount:       amount,
		IsTrial:      isTrial,
		TrialDays:    trialDays,
		Category:     site.Category,
		SourceURL:    snap.URL(),
		DetectedAt:   t.now(),
		BehaviorFlow: t.History(),
	}

	if recordType != model.TypePurchase {
		record.BillingCycle = t.data.BillingCycle
		if record.BillingCycle == "" {
			record.BillingCycle = extract.BillingCycle(text)
		}
		record.PlanTier = t.data.PlanTier
		if record.PlanTier == "" {
			record.PlanTier = extract.PlanTier(text)
		}
	}

	return record
}
