package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"carexyz/internal/booking"
)

// BookingStore is an in-memory booking.Repository with the same guard
// semantics as the Postgres store: at most one non-cancelled booking per
// (user, service, calendar day of creation), and a set-once paid transition.
type BookingStore struct {
	mu       sync.Mutex
	bookings map[string]booking.Booking

	// FailWith, when set, is returned by every call.
	FailWith error
	// MarkPaidErr, when set, is returned by MarkPaid only.
	MarkPaidErr error
	// SkipDayCheck makes HasActiveBookingForDay always report false, so tests
	// can exercise the insert-time guard alone.
	SkipDayCheck bool
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: map[string]booking.Booking{}}
}

// Put stores b as-is, bypassing every guard.
func (s *BookingStore) Put(b booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = clone(b)
}

// Get returns the stored booking, if any.
func (s *BookingStore) Get(id string) (booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return clone(b), ok
}

func (s *BookingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *BookingStore) Create(ctx context.Context, b booking.Booking) (*booking.Booking, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collides(b, "") {
		return nil, booking.ErrDuplicateBooking
	}
	s.bookings[b.ID] = clone(b)
	out := clone(b)
	return &out, nil
}

func (s *BookingStore) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	out := clone(b)
	return &out, nil
}

func (s *BookingStore) HasActiveBookingForDay(ctx context.Context, userID int, serviceID string, from, to time.Time) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	if s.SkipDayCheck {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.UserID == userID && b.ServiceID == serviceID && b.Status.IsActive() &&
			!b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (s *BookingStore) ListByUser(ctx context.Context, userID int) ([]booking.Booking, error) {
	return s.list(ctx, func(b booking.Booking) bool { return b.UserID == userID })
}

func (s *BookingStore) ListAll(ctx context.Context) ([]booking.Booking, error) {
	return s.list(ctx, func(booking.Booking) bool { return true })
}

func (s *BookingStore) TransitionStatus(ctx context.Context, id string, from []booking.Status, to booking.Status, at time.Time) (*booking.Booking, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || !contains(from, b.Status) {
		return nil, booking.ErrNoTransition
	}

	next := clone(b)
	next.Status = to
	next.UpdatedAt = at
	if to.IsActive() && !b.Status.IsActive() && s.collides(next, id) {
		return nil, booking.ErrDuplicateBooking
	}
	s.bookings[id] = next
	out := clone(next)
	return &out, nil
}

func (s *BookingStore) MarkPaid(ctx context.Context, id, sessionRef string, at time.Time) (*booking.Booking, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if s.MarkPaidErr != nil {
		return nil, s.MarkPaidErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.PaymentStatus != booking.PaymentUnpaid || b.Status == booking.StatusCancelled {
		return nil, booking.ErrNoTransition
	}

	ref := sessionRef
	paidAt := at
	b.PaymentStatus = booking.PaymentPaid
	b.PaymentSessionID = &ref
	b.PaidAt = &paidAt
	b.UpdatedAt = at
	s.bookings[id] = b
	out := clone(b)
	return &out, nil
}

func (s *BookingStore) list(ctx context.Context, keep func(booking.Booking) bool) ([]booking.Booking, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []booking.Booking{}
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *BookingStore) check(ctx context.Context) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	return ctx.Err()
}

// collides must be called with mu held.
func (s *BookingStore) collides(b booking.Booking, except string) bool {
	day := dayKey(b.CreatedAt)
	for id, other := range s.bookings {
		if id == except {
			continue
		}
		if other.UserID == b.UserID && other.ServiceID == b.ServiceID &&
			other.Status.IsActive() && dayKey(other.CreatedAt) == day {
			return true
		}
	}
	return false
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func contains(list []booking.Status, s booking.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clone(b booking.Booking) booking.Booking {
	if b.PaymentSessionID != nil {
		ref := *b.PaymentSessionID
		b.PaymentSessionID = &ref
	}
	if b.PaidAt != nil {
		at := *b.PaidAt
		b.PaidAt = &at
	}
	return b
}
