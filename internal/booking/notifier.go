package booking

import (
	"context"

	"carexyz/internal/user"
)

// Notifier delivers booking-related messages. Failures never affect booking state.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, to, name string, b Booking) error
	NotifyPaymentReceived(ctx context.Context, to, name string, b Booking) error
}

// Recipients resolves the contact details of a booking's owner.
type Recipients interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type nopNotifier struct{}

// NopNotifier discards every notification.
func NopNotifier() Notifier { return nopNotifier{} }

func (nopNotifier) NotifyBookingCreated(context.Context, string, string, Booking) error  { return nil }
func (nopNotifier) NotifyPaymentReceived(context.Context, string, string, Booking) error { return nil }
