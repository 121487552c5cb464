package booking

import (
	"errors"
	"fmt"
	"strings"

	"carexyz/internal/api"
)

var (
	ErrUnauthorized     = errors.New("authentication required")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrBookingNotFound  = fmt.Errorf("booking %w", ErrNotFound)
	ErrServiceNotFound  = fmt.Errorf("service %w", ErrNotFound)
	ErrForbidden        = errors.New("forbidden")
	ErrDuplicateBooking = errors.New("an active booking for this service already exists today")
	ErrInvalidState     = errors.New("operation not allowed in the booking's current state")
	ErrUpstream         = errors.New("upstream failure")

	// ErrNoTransition is returned by a Repository when a conditional update matched no row.
	ErrNoTransition = errors.New("no row matched the transition guard")
)

// InputError carries per-field validation failures and unwraps to ErrInvalidInput.
type InputError struct {
	Fields []api.ValidationError
}

func (e *InputError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidField(field, tag, msg string) error {
	return &InputError{Fields: []api.ValidationError{{Field: field, Tag: tag, Message: msg}}}
}

func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
