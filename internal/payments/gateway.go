// Package payments talks to the card payment provider.
package payments

import "errors"

const EventCheckoutCompleted = "checkout.session.completed"

var (
	ErrWebhookSecretMissing = errors.New("webhook secret is not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)

// LineItem is one priced line of a hosted checkout page. UnitAmount is in minor units.
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	OrderID       string
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
}

// Session is the provider-agnostic view of a checkout session.
type Session struct {
	ID              string
	URL             string
	Paid            bool
	OrderID         string
	PaymentIntentID string
}

// Event is a verified webhook notification.
type Event struct {
	ID      string
	Type    string
	Session *Session // set for checkout session events
}

// Gateway creates and inspects hosted checkout sessions.
type Gateway interface {
	CreateCheckoutSession(req SessionRequest) (*Session, error)
	GetCheckoutSession(id string) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
