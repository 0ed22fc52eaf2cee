package session

// Driving-input vocabularies for the scheduler checks. These are static,
// swappable data; the state machine itself never inspects page content.

// checkoutPathFragments move the tracker to CHECKOUT_ENTERED when found in
// the URL path.
var checkoutPathFragments = []string{
	"checkout",
	"billing",
	"cart",
	"order",
	"payment",
	"/pay",
	"purchase",
	"pricing",
	"plans",
	"subscribe",
	"upgrade",
}

// paymentFormSelectors mark an active payment form on the page.
var paymentFormSelectors = []string{
	`input[autocomplete='cc-number']`,
	`input[name='cardnumber']`,
	`input[name*='card-number']`,
	`form[action*='checkout']`,
	`form[action*='payment']`,
	`form[id*='payment']`,
	`form[class*='payment']`,
	`iframe[src*='stripe']`,
	`iframe[src*='braintree']`,
	`div[class*='StripeElement']`,
	`#card-element`,
	`[class*='card-element']`,
}

// payClickVocab matches the visible label of a payment-looking click.
var payClickVocab = []string{
	"pay now",
	"pay",
	"place order",
	"place your order",
	"complete purchase",
	"complete order",
	"confirm payment",
	"confirm and pay",
	"buy now",
	"purchase",
	"subscribe",
	"start free trial",
	"start trial",
	"start membership",
	"upgrade",
}

// subscriptionLabelVocab marks a clicked label as a subscription guess.
var subscriptionLabelVocab = []string{
	"subscribe",
	"subscription",
	"membership",
	"upgrade",
	"plan",
}

// cancelPathFragments move the tracker into the cancellation branch when
// found in the URL path.
var cancelPathFragments = []string{
	"cancel",
	"unsubscribe",
	"downgrade",
	"deactivate",
	"close-account",
}

// cancelConfirmVocab matches the click that completes a cancellation while in
// CANCELLATION_FLOW.
var cancelConfirmVocab = []string{
	"confirm cancel",
	"confirm cancellation",
	"complete cancellation",
	"yes, cancel",
	"yes cancel",
	"cancel subscription",
	"cancel membership",
	"end subscription",
	"end membership",
	"turn off auto-renew",
}

// successPathFragments mark a confirmation-shaped URL for the watcher.
var successPathFragments = []string{
	"success",
	"confirmation",
	"thank",
	"receipt",
	"order-received",
	"order-complete",
	"purchase-complete",
}

// successTextMarkers mark success-shaped wording in the visible page text.
var successTextMarkers = []string{
	"thank you for your purchase",
	"thank you for your order",
	"order confirmed",
	"your order has been placed",
	"payment successful",
	"payment was successful",
	"purchase complete",
	"order complete",
	"we've received your order",
	"subscription confirmed",
	"subscription is now active",
	"you're all set",
}
