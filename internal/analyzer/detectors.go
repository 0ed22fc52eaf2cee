package analyzer

import (
	"strings"

	"github.com/pursewatch-dev/pursewatch/internal/extract"
	"github.com/pursewatch-dev/pursewatch/internal/page"
)

// Signal names, in detector order.
const (
	SignalCreditCardForm       = "credit_card_form"
	SignalPaymentIframe        = "payment_iframe"
	SignalPaymentURL           = "payment_url"
	SignalEcommerceMarkers     = "ecommerce_markers"
	SignalPaymentButtons       = "payment_buttons"
	SignalCommerceMetadata     = "commerce_metadata"
	SignalSubscriptionKeywords = "subscription_keywords"
	SignalProductPage          = "product_page"
)

// Signal weights. These are design-level values; the decision threshold in
// analyzer.go is calibrated against them.
const (
	weightCreditCardForm       = 40
	weightPaymentIframe        = 35
	weightPaymentURL           = 30
	weightMarkersStrong        = 20
	weightMarkersWeak          = 10
	weightPaymentButtons       = 15
	weightCommerceMetadata     = 10
	weightSubscriptionKeywords = 15
	weightProductStrong        = 25
	weightProductWeak          = 10
)

// Detector is one independent, weighted contribution to the page-capability
// score. Probe returns the points contributed; zero means no signal.
type Detector struct {
	Probe  func(snap *page.Snapshot) int
	Signal string
}

// DefaultDetectors returns the static detector table, evaluated in order.
// Detectors are additive; within a single concern (credit-card form, payment
// iframe, payment button) the probe stops at its first match to avoid
// double-counting.
func DefaultDetectors() []Detector {
	return []Detector{
		{Signal: SignalCreditCardForm, Probe: probeCreditCardForm},
		{Signal: SignalPaymentIframe, Probe: probePaymentIframe},
		{Signal: SignalPaymentURL, Probe: probePaymentURL},
		{Signal: SignalEcommerceMarkers, Probe: probeEcommerceMarkers},
		{Signal: SignalPaymentButtons, Probe: probePaymentButtons},
		{Signal: SignalCommerceMetadata, Probe: probeCommerceMetadata},
		{Signal: SignalSubscriptionKeywords, Probe: probeSubscriptionKeywords},
		{Signal: SignalProductPage, Probe: probeProductPage},
	}
}

var creditCardSelectors = []string{
	`input[autocomplete='cc-number']`,
	`input[autocomplete='cc-exp']`,
	`input[autocomplete='cc-csc']`,
	`input[name='cardnumber']`,
	`input[name*='card-number']`,
	`input[name*='cardNumber']`,
	`input[id*='card-number']`,
	`input[placeholder*='card number']`,
	`input[placeholder*='Card number']`,
	`input[data-elements-stable-field-name='cardNumber']`,
}

func probeCreditCardForm(snap *page.Snapshot) int {
	for _, selector := range creditCardSelectors {
		if snap.Has(selector) {
			return weightCreditCardForm
		}
	}
	return 0
}

var paymentIframeSelectors = []string{
	`iframe[src*='stripe']`,
	`iframe[src*='paypal']`,
	`iframe[src*='braintree']`,
	`iframe[src*='adyen']`,
	`iframe[src*='checkout']`,
	`iframe[src*='payment']`,
	`iframe[name*='card-fields']`,
	`div[class*='StripeElement']`,
	`div[id*='paypal-button']`,
}

func probePaymentIframe(snap *page.Snapshot) int {
	for _, selector := range paymentIframeSelectors {
		if snap.Has(selector) {
			return weightPaymentIframe
		}
	}
	return 0
}

var paymentPathFragments = []string{
	"checkout",
	"payment",
	"billing",
	"cart",
	"order",
	"subscribe",
	"purchase",
	"pricing",
	"plans",
	"upgrade",
	"buy",
}

func probePaymentURL(snap *page.Snapshot) int {
	path := snap.Path()
	for _, fragment := range paymentPathFragments {
		if strings.Contains(path, fragment) {
			return weightPaymentURL
		}
	}
	return 0
}

var ecommerceMarkerSelectors = []string{
	`[class*='cart']`,
	`[class*='product']`,
	`[class*='price']`,
	`[class*='checkout']`,
	`[class*='add-to-cart']`,
	`[class*='buy-now']`,
	`[id*='cart']`,
}

func probeEcommerceMarkers(snap *page.Snapshot) int {
	matched := 0
	for _, selector := range ecommerceMarkerSelectors {
		if snap.Has(selector) {
			matched++
		}
	}
	switch {
	case matched >= 2:
		return weightMarkersStrong
	case matched == 1:
		return weightMarkersWeak
	default:
		return 0
	}
}

var payButtonVocab = []string{
	"pay now",
	"pay ",
	"place order",
	"complete purchase",
	"complete order",
	"buy now",
	"subscribe",
	"checkout",
	"proceed to payment",
	"start free trial",
	"upgrade now",
}

const clickableSelector = `button, a, input[type='submit'], [role='button']`

func probePaymentButtons(snap *page.Snapshot) int {
	found := false
	snap.EachText(clickableSelector, func(text string) {
		if found {
			return
		}
		lower := strings.ToLower(text)
		for _, vocab := range payButtonVocab {
			if strings.Contains(lower, vocab) {
				found = true
				return
			}
		}
	})
	if found {
		return weightPaymentButtons
	}
	return 0
}

func probeCommerceMetadata(snap *page.Snapshot) int {
	if strings.Contains(strings.ToLower(snap.MetaContent("og:type")), "product") {
		return weightCommerceMetadata
	}
	if snap.Has(`[itemtype*='schema.org/Product'], [itemtype*='schema.org/Offer']`) {
		return weightCommerceMetadata
	}
	jsonLD := false
	snap.EachText(`script[type='application/ld+json']`, func(text string) {
		if strings.Contains(text, `"Product"`) || strings.Contains(text, `"Offer"`) {
			jsonLD = true
		}
	})
	if jsonLD {
		return weightCommerceMetadata
	}
	return 0
}

func probeSubscriptionKeywords(snap *page.Snapshot) int {
	if extract.IsSubscription(snap.Text()) {
		return weightSubscriptionKeywords
	}
	return 0
}

var productPathFragments = []string{"/product", "/item", "/p/", "/dp/", "/shop/"}

// probeProductPage scores a composite of product-page traits and maps it to a
// strong or weak contribution.
func probeProductPage(snap *page.Snapshot) int {
	composite := 0

	path := snap.Path()
	for _, fragment := range productPathFragments {
		if strings.Contains(path, fragment) {
			composite++
			break
		}
	}

	if snap.Has(`.product-title, .product-name, [class*='product-detail'], [class*='product-info']`) {
		composite++
	}

	if extract.NewPriceExtractor().ExtractPriceFromText(snap.Text()).IsPositive() {
		composite++
	}

	if snap.Has(`select[name*='size'], select[name*='variant'], [class*='size-selector'], [class*='variant'], [class*='swatch']`) {
		composite++
	}

	if snap.Has(`input[name*='quantity'], select[name*='quantity'], [class*='quantity']`) {
		composite++
	}

	cartText := false
	snap.EachText(clickableSelector, func(text string) {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "add to cart") || strings.Contains(lower, "add to bag") || strings.Contains(lower, "add to basket") {
			cartText = true
		}
	})
	if cartText {
		composite++
	}

	if snap.Count(`[class*='gallery'] img`) >= 2 || snap.Count(`[class*='product'] img`) >= 2 {
		composite++
	}

	if snap.Has(`script[src*='shopify'], script[src*='woocommerce'], script[src*='magento'], body[class*='woocommerce']`) ||
		strings.Contains(strings.ToLower(snap.MetaContent("generator")), "woocommerce") {
		composite++
	}

	switch {
	case composite >= 3:
		return weightProductStrong
	case composite >= 1:
		return weightProductWeak
	default:
		return 0
	}
}
