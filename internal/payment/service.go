package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"carexyz/internal/auth"
	"carexyz/internal/booking"
	"carexyz/internal/logger"
	"carexyz/internal/metrics"
)

type Service interface {
	StartCheckout(ctx context.Context, bookingID string, caller auth.Caller) (*Checkout, error)
	VerifyPayment(ctx context.Context, sessionRef, bookingID string, callerID int) (*booking.Booking, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// Checkout is what the client needs to redirect to the hosted payment page.
type Checkout struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type Options struct {
	AppURL         string
	Currency       string
	GatewayTimeout time.Duration
}

type service struct {
	bookings booking.Service
	catalog  booking.Catalog
	gateway  Gateway
	opts     Options
}

// NewService wires checkout to the booking lifecycle. catalog may be nil;
// it only enriches the product shown on the payment page.
func NewService(bookings booking.Service, catalog booking.Catalog, gateway Gateway, opts Options) Service {
	opts.AppURL = strings.TrimSuffix(opts.AppURL, "/")
	opts.Currency = strings.ToLower(opts.Currency)
	return &service{
		bookings: bookings,
		catalog:  catalog,
		gateway:  gateway,
		opts:     opts,
	}
}

func (s *service) StartCheckout(ctx context.Context, bookingID string, caller auth.Caller) (*Checkout, error) {
	b, err := s.ownedBooking(ctx, bookingID, caller.UserID)
	if err != nil {
		metrics.RecordCheckoutSession("rejected")
		return nil, err
	}
	if b.IsPaid() {
		metrics.RecordCheckoutSession("rejected")
		return nil, ErrAlreadyPaid
	}
	if b.Status == booking.StatusCancelled {
		metrics.RecordCheckoutSession("rejected")
		return nil, booking.ErrInvalidState
	}

	req := SessionRequest{
		BookingID:     b.ID,
		UserID:        b.UserID,
		CustomerEmail: caller.Email,
		ProductName:   b.ServiceName,
		Description:   fmt.Sprintf("%d %s - %s, %s", b.Duration.Value, b.Duration.Unit, b.Location.City, b.Location.Area),
		AmountMinor:   minorUnits(b.TotalCost),
		Currency:      s.opts.Currency,
		SuccessURL:    fmt.Sprintf("%s/payment/success?session_id={CHECKOUT_SESSION_ID}&booking_id=%s", s.opts.AppURL, url.QueryEscape(b.ID)),
		CancelURL:     s.opts.AppURL + "/my-bookings?payment=cancelled",
	}
	s.describe(ctx, b.ServiceID, &req)

	gctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sess, err := s.gateway.CreateCheckoutSession(gctx, req)
	if err != nil {
		metrics.RecordCheckoutSession("error")
		return nil, upstream("create checkout session", err)
	}

	metrics.RecordCheckoutSession("created")
	logger.Info("checkout session created",
		"booking_id", b.ID,
		"session_id", sess.ID,
		"amount", req.AmountMinor,
		"currency", req.Currency,
	)
	return &Checkout{SessionID: sess.ID, URL: sess.URL}, nil
}

func (s *service) VerifyPayment(ctx context.Context, sessionRef, bookingID string, callerID int) (*booking.Booking, error) {
	sessionRef = strings.TrimSpace(sessionRef)
	bookingID = strings.TrimSpace(bookingID)
	if sessionRef == "" || bookingID == "" {
		return nil, ErrMissingReference
	}

	b, err := s.ownedBooking(ctx, bookingID, callerID)
	if err != nil {
		return nil, err
	}
	if b.IsPaid() {
		metrics.RecordPayment(string(booking.SourceRedirect), "already_paid")
		return b, nil
	}

	gctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sess, err := s.gateway.GetCheckoutSession(gctx, sessionRef)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, upstream("retrieve checkout session", err)
	}

	if sess.BookingID != b.ID {
		logger.Warn("checkout session belongs to another booking",
			"booking_id", b.ID,
			"session_id", sess.ID,
			"session_booking_id", sess.BookingID,
		)
		return nil, ErrSessionMismatch
	}
	if err := s.checkSettled(sess, b); err != nil {
		return nil, err
	}

	paid, _, err := s.bookings.MarkPaid(ctx, b.ID, sess.ID, booking.SourceRedirect)
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		metrics.RecordWebhookEvent("unknown", "invalid_signature")
		logger.Warn("webhook rejected", "error", err)
		if errors.Is(err, ErrInvalidSignature) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	switch ev.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded:
		return s.completeFromWebhook(ctx, ev)
	default:
		metrics.RecordWebhookEvent(ev.Type, "ignored")
		logger.Debug("webhook event ignored", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
}

// completeFromWebhook never fails: every outcome is logged and acknowledged
// so the gateway stops redelivering the event.
func (s *service) completeFromWebhook(ctx context.Context, ev *Event) error {
	sess := ev.Session
	if sess == nil || !sess.Paid() {
		metrics.RecordWebhookEvent(ev.Type, "unpaid")
		logger.Info("checkout session not paid yet", "event_id", ev.ID)
		return nil
	}
	if sess.BookingID == "" {
		metrics.RecordWebhookEvent(ev.Type, "no_booking")
		logger.Warn("checkout session without booking reference", "event_id", ev.ID, "session_id", sess.ID)
		return nil
	}

	b, err := s.bookings.FindBooking(ctx, sess.BookingID)
	switch {
	case errors.Is(err, booking.ErrNotFound):
		metrics.RecordWebhookEvent(ev.Type, "unknown_booking")
		logger.Warn("paid session for unknown booking", "event_id", ev.ID, "booking_id", sess.BookingID)
		return nil
	case err != nil:
		metrics.RecordWebhookEvent(ev.Type, "error")
		logger.Error("failed to load booking for webhook", "event_id", ev.ID, "booking_id", sess.BookingID, "error", err)
		return nil
	case b.IsPaid():
		metrics.RecordWebhookEvent(ev.Type, "duplicate")
		return nil
	}
	if err := s.checkSettled(sess, b); err != nil {
		metrics.RecordWebhookEvent(ev.Type, "amount_mismatch")
		logger.Warn("webhook session does not settle booking", "event_id", ev.ID, "booking_id", b.ID, "error", err)
		return nil
	}

	_, changed, err := s.bookings.MarkPaid(ctx, b.ID, sess.ID, booking.SourceWebhook)
	switch {
	case err == nil && changed:
		metrics.RecordWebhookEvent(ev.Type, "paid")
	case err == nil:
		metrics.RecordWebhookEvent(ev.Type, "duplicate")
	case errors.Is(err, booking.ErrNotFound):
		metrics.RecordWebhookEvent(ev.Type, "unknown_booking")
		logger.Warn("paid session for unknown booking", "event_id", ev.ID, "booking_id", b.ID)
	case errors.Is(err, booking.ErrInvalidState):
		metrics.RecordWebhookEvent(ev.Type, "rejected")
		logger.Warn("paid session for cancelled booking", "event_id", ev.ID, "booking_id", b.ID)
	default:
		metrics.RecordWebhookEvent(ev.Type, "error")
		logger.Error("failed to mark booking paid from webhook", "event_id", ev.ID, "booking_id", b.ID, "error", err)
	}
	return nil
}

func (s *service) ownedBooking(ctx context.Context, bookingID string, callerID int) (*booking.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID, auth.Caller{UserID: callerID})
	if err != nil {
		return nil, err
	}
	if b.UserID != callerID {
		return nil, booking.ErrForbidden
	}
	return b, nil
}

func (s *service) checkSettled(sess *Session, b *booking.Booking) error {
	if !sess.Paid() {
		return ErrPaymentIncomplete
	}
	if sess.AmountTotal != minorUnits(b.TotalCost) {
		logger.Warn("paid amount does not match booking",
			"booking_id", b.ID,
			"session_id", sess.ID,
			"amount_total", sess.AmountTotal,
			"expected", minorUnits(b.TotalCost),
		)
		return fmt.Errorf("%w: amount %d does not match booking total", ErrPaymentIncomplete, sess.AmountTotal)
	}
	if sess.Currency != "" && !strings.EqualFold(sess.Currency, s.opts.Currency) {
		return fmt.Errorf("%w: currency %s", ErrPaymentIncomplete, sess.Currency)
	}
	return nil
}

// describe fills product details from the catalog when it is reachable.
func (s *service) describe(ctx context.Context, serviceID string, req *SessionRequest) {
	if s.catalog == nil {
		return
	}
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	svc, err := s.catalog.Lookup(cctx, serviceID)
	if err != nil {
		logger.Debug("catalog details unavailable for checkout", "service_id", serviceID, "error", err)
		return
	}
	if svc.ShortDescription != "" {
		req.Description = svc.ShortDescription
	}
	req.ImageURL = svc.Image
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.GatewayTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.GatewayTimeout)
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
