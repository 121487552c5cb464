package payment

import (
	"errors"
	"fmt"

	"carexyz/internal/booking"
)

var (
	ErrAlreadyPaid       = errors.New("booking already paid")
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrSessionMismatch   = fmt.Errorf("checkout session does not belong to this booking: %w", booking.ErrInvalidInput)
	ErrMissingReference  = fmt.Errorf("sessionId and bookingId are required: %w", booking.ErrInvalidInput)
	ErrSessionNotFound   = fmt.Errorf("checkout session %w", booking.ErrNotFound)
)

func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, booking.ErrUpstream, err)
}
