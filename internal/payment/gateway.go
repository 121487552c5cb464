package payment

import "context"

// Checkout session payment states reported by the gateway.
const (
	SessionPaid   = "paid"
	SessionUnpaid = "unpaid"
)

// Webhook event types that can complete a payment.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventCheckoutExpired       = "checkout.session.expired"
)

// SessionRequest describes a hosted checkout for a single booking.
type SessionRequest struct {
	BookingID     string
	UserID        int
	CustomerEmail string
	ProductName   string
	Description   string
	ImageURL      string
	AmountMinor   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// Session is the gateway's view of a checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	BookingID     string
}

func (s Session) Paid() bool {
	return s.PaymentStatus == SessionPaid
}

// Event is a verified webhook notification.
type Event struct {
	ID      string
	Type    string
	Session *Session
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*Session, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
