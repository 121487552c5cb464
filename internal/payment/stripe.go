package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"carexyz/internal/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	metaBookingID = "booking_id"
	metaUserID    = "user_id"

	stripeMaxRetries = 2
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// BackendURL overrides the Stripe API base URL.
	BackendURL string
}

// StripeGateway runs hosted checkout through Stripe.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	// GetBackendWithConfig fills in the URL, so each backend gets its own config.
	backend := func(kind stripe.SupportedBackend) stripe.Backend {
		backendCfg := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			LeveledLogger:     stripeLogger{},
			MaxNetworkRetries: stripe.Int64(stripeMaxRetries),
		}
		if cfg.BackendURL != "" {
			backendCfg.URL = stripe.String(cfg.BackendURL)
		}
		return stripe.GetBackendWithConfig(kind, backendCfg)
	}

	backends := &stripe.Backends{
		API:     backend(stripe.APIBackend),
		Connect: backend(stripe.ConnectBackend),
		Uploads: backend(stripe.UploadsBackend),
	}

	return &StripeGateway{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.ProductName),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(req.Currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(req.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(metaBookingID, req.BookingID)
	params.AddMetadata(metaUserID, strconv.Itoa(req.UserID))
	params.Context = ctx

	cs, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return toSession(cs), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return toSession(cs), nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil && len(ev.Data.Raw) > 0 && isCheckoutEvent(out.Type) {
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = toSession(&cs)
	}
	return out, nil
}

func isCheckoutEvent(t string) bool {
	switch t {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed, EventCheckoutExpired:
		return true
	}
	return false
}

func toSession(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		BookingID:     cs.Metadata[metaBookingID],
	}
	if s.BookingID == "" {
		s.BookingID = cs.ClientReferenceID
	}
	return s
}

// stripeLogger routes stripe-go client logs into the service logger.
type stripeLogger struct{}

func (stripeLogger) Debugf(format string, v ...interface{}) { logger.Debugf(format, v...) }
func (stripeLogger) Infof(format string, v ...interface{})  { logger.Debugf(format, v...) }
func (stripeLogger) Warnf(format string, v ...interface{})  { logger.Warnf(format, v...) }
func (stripeLogger) Errorf(format string, v ...interface{}) { logger.Errorf(format, v...) }
