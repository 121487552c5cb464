package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"carexyz/internal/api"
	"carexyz/internal/auth"
	"carexyz/internal/catalog"
	"carexyz/internal/clock"
	"carexyz/internal/logger"
	"carexyz/internal/metrics"

	"github.com/google/uuid"
)

type Service interface {
	CreateBooking(ctx context.Context, userID int, in CreateInput) (*Booking, error)
	ListBookings(ctx context.Context, userID int) ([]Booking, error)
	ListAllBookings(ctx context.Context) ([]Booking, error)
	GetBooking(ctx context.Context, id string, caller auth.Caller) (*Booking, error)
	FindBooking(ctx context.Context, id string) (*Booking, error)
	UpdateStatus(ctx context.Context, id string, caller auth.Caller, status string) (*Booking, error)
	CancelBooking(ctx context.Context, id string, callerID int) (*Booking, error)
	MarkPaid(ctx context.Context, id, sessionRef string, source PaymentSource) (*Booking, bool, error)
}

// Catalog is the subset of the service catalog bookings depend on.
type Catalog interface {
	Lookup(ctx context.Context, id string) (*catalog.Service, error)
}

type Timeouts struct {
	Catalog time.Duration
	Store   time.Duration
	Notify  time.Duration
}

type service struct {
	repo       Repository
	catalog    Catalog
	recipients Recipients
	notifier   Notifier
	clock      clock.Clock
	timeouts   Timeouts
}

func NewService(
	repo Repository,
	catalog Catalog,
	recipients Recipients,
	notifier Notifier,
	clk clock.Clock,
	timeouts Timeouts,
) Service {
	if notifier == nil {
		notifier = NopNotifier()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &service{
		repo:       repo,
		catalog:    catalog,
		recipients: recipients,
		notifier:   notifier,
		clock:      clk,
		timeouts:   timeouts,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID int, in CreateInput) (*Booking, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	in.ServiceID = strings.TrimSpace(in.ServiceID)
	in.Location = in.Location.trimmed()
	if fields := api.ValidateStruct(in); len(fields) > 0 {
		metrics.RecordBooking(in.ServiceID, "invalid")
		return nil, &InputError{Fields: fields}
	}

	svc, err := s.lookupService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	rate, ok := svc.RateFor(string(in.Duration.Unit))
	if !ok {
		return nil, invalidField("Duration.Unit", "oneof", "Duration.Unit must be one of: hours days")
	}

	now := s.clock.Now()
	dayStart, dayEnd := clock.DayBounds(now)

	storeCtx, cancel := s.withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	exists, err := s.repo.HasActiveBookingForDay(storeCtx, userID, svc.ID, dayStart, dayEnd)
	if err != nil {
		return nil, upstream("check duplicate booking", err)
	}
	if exists {
		metrics.RecordBooking(svc.ID, "duplicate")
		return nil, ErrDuplicateBooking
	}

	created, err := s.repo.Create(storeCtx, Booking{
		ID:            uuid.NewString(),
		UserID:        userID,
		ServiceID:     svc.ID,
		ServiceName:   svc.Name,
		Duration:      in.Duration,
		Location:      in.Location,
		TotalCost:     totalCost(in.Duration.Value, rate),
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateBooking) {
			metrics.RecordBooking(svc.ID, "duplicate")
			return nil, ErrDuplicateBooking
		}
		return nil, upstream("create booking", err)
	}

	metrics.RecordBooking(svc.ID, "created")
	logger.Info("booking created",
		"booking_id", created.ID,
		"user_id", userID,
		"service_id", svc.ID,
		"total_cost", created.TotalCost,
	)

	s.notify(ctx, "booking_created", *created, s.notifier.NotifyBookingCreated)
	return created, nil
}

func (s *service) ListBookings(ctx context.Context, userID int) ([]Booking, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	storeCtx, cancel := s.withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	bookings, err := s.repo.ListByUser(storeCtx, userID)
	if err != nil {
		return nil, upstream("list bookings", err)
	}
	return bookings, nil
}

func (s *service) ListAllBookings(ctx context.Context) ([]Booking, error) {
	storeCtx, cancel := s.withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	bookings, err := s.repo.ListAll(storeCtx)
	if err != nil {
		return nil, upstream("list all bookings", err)
	}
	return bookings, nil
}

func (s *service) GetBooking(ctx context.Context, id string, caller auth.Caller) (*Booking, error) {
	if caller.UserID <= 0 {
		return nil, ErrUnauthorized
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return b, nil
}

// FindBooking reads a booking without an ownership check. It serves callers
// that are already authenticated by other means, such as signed gateway events.
func (s *service) FindBooking(ctx context.Context, id string) (*Booking, error) {
	return s.load(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id string, caller auth.Caller, status string) (*Booking, error) {
	if caller.UserID <= 0 {
		return nil, ErrUnauthorized
	}

	target, err := ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, invalidField("Status", "oneof", "Status must be one of: Pending Confirmed Completed Cancelled")
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if !canTransition(updateTransitions, current.Status, target) {
		return nil, ErrInvalidState
	}

	updated, err := s.transition(ctx, current.ID, []Status{current.Status}, target)
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusUpdate(string(target))
	logger.Info("booking status updated",
		"booking_id", updated.ID,
		"from", current.Status,
		"to", target,
		"by_user", caller.UserID,
	)
	return updated, nil
}

func (s *service) CancelBooking(ctx context.Context, id string, callerID int) (*Booking, error) {
	if callerID <= 0 {
		return nil, ErrUnauthorized
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != callerID {
		return nil, ErrForbidden
	}
	if !canTransition(cancelTransitions, current.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}

	cancelled, err := s.transition(ctx, current.ID, sourcesFor(cancelTransitions, StatusCancelled), StatusCancelled)
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation()
	logger.Info("booking cancelled", "booking_id", cancelled.ID, "user_id", callerID)
	return cancelled, nil
}

// MarkPaid records the paid transition exactly once. Repeated calls for an
// already-paid booking return it unchanged with changed=false.
func (s *service) MarkPaid(ctx context.Context, id, sessionRef string, source PaymentSource) (*Booking, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, ErrBookingNotFound
	}

	storeCtx, cancel := s.withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	// A second attempt covers a row that changed between the guarded update and the re-read.
	for attempt := 0; attempt < 2; attempt++ {
		paid, err := s.repo.MarkPaid(storeCtx, id, sessionRef, s.clock.Now())
		if err == nil {
			metrics.RecordPayment(string(source), "paid")
			logger.Info("booking marked paid",
				"booking_id", paid.ID,
				"source", source,
				"session_id", sessionRef,
			)
			s.notify(ctx, "payment_received", *paid, s.notifier.NotifyPaymentReceived)
			return paid, true, nil
		}
		if !errors.Is(err, ErrNoTransition) {
			metrics.RecordPayment(string(source), "error")
			return nil, false, upstream("mark booking paid", err)
		}

		current, err := s.repo.GetByID(storeCtx, id)
		if err != nil {
			if errors.Is(err, ErrBookingNotFound) {
				return nil, false, ErrBookingNotFound
			}
			return nil, false, upstream("reload booking", err)
		}
		switch {
		case current.IsPaid():
			metrics.RecordPayment(string(source), "already_paid")
			return current, false, nil
		case current.Status == StatusCancelled:
			metrics.RecordPayment(string(source), "rejected_cancelled")
			return nil, false, ErrInvalidState
		}
	}

	return nil, false, upstream("mark booking paid", fmt.Errorf("booking %s kept changing", id))
}

func (s *service) lookupService(ctx context.Context, id string) (*catalog.Service, error) {
	lookupCtx, cancel := s.withTimeout(ctx, s.timeouts.Catalog)
	defer cancel()

	svc, err := s.catalog.Lookup(lookupCtx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			metrics.RecordBooking(id, "unknown_service")
			return nil, ErrServiceNotFound
		}
		return nil, upstream("catalog lookup", err)
	}
	return svc, nil
}

func (s *service) load(ctx context.Context, id string) (*Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}

	storeCtx, cancel := s.withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	b, err := s.repo.GetByID(storeCtx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, upstream("load booking", err)
	}
	return b, nil
}

func (s *service) transition(ctx context.Context, id string, from []Status, to Status) (*Booking, error) {
	storeCtx, cancel := s.withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	updated, err := s.repo.TransitionStatus(storeCtx, id, from, to, s.clock.Now())
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, ErrDuplicateBooking):
		return nil, ErrDuplicateBooking
	case errors.Is(err, ErrNoTransition):
		// The booking moved since it was read, or disappeared.
		if _, getErr := s.repo.GetByID(storeCtx, id); errors.Is(getErr, ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, ErrInvalidState
	default:
		return nil, upstream("update booking status", err)
	}
}

// notify runs after the booking change is committed, on a context detached
// from the request and bounded by the notify timeout. Errors are logged only.
func (s *service) notify(ctx context.Context, kind string, b Booking, send func(context.Context, string, string, Booking) error) {
	nctx, cancel := s.withTimeout(context.WithoutCancel(ctx), s.timeouts.Notify)
	defer cancel()

	if s.recipients == nil {
		return
	}
	u, err := s.recipients.FindByID(nctx, b.UserID)
	if err != nil {
		metrics.RecordNotificationFailure(kind)
		logger.Warn("notification skipped, recipient lookup failed",
			"kind", kind,
			"booking_id", b.ID,
			"error", err,
		)
		return
	}

	if err := send(nctx, u.Email, u.Name, b); err != nil {
		metrics.RecordNotificationFailure(kind)
		logger.Warn("notification failed",
			"kind", kind,
			"booking_id", b.ID,
			"error", err,
		)
	}
}

func (s *service) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func totalCost(value int, rate float64) float64 {
	return math.Round(float64(value)*rate*100) / 100
}
