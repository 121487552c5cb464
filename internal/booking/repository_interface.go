package booking

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b Booking) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	HasActiveBookingForDay(ctx context.Context, userID int, serviceID string, from, to time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)
	TransitionStatus(ctx context.Context, id string, from []Status, to Status, at time.Time) (*Booking, error)
	MarkPaid(ctx context.Context, id, sessionRef string, at time.Time) (*Booking, error)
}
