package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Pending", "Confirmed", "Completed", "Cancelled"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), st)
	}

	for _, s := range []string{"", "pending", "Paid", "Done"} {
		_, err := ParseStatus(s)
		assert.Error(t, err, s)
	}
}

func TestUpdateTransitionsArePermissive(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			assert.True(t, canTransition(updateTransitions, from, to), "%s -> %s", from, to)
		}
	}
}

func TestCancelTransitions(t *testing.T) {
	assert.True(t, canTransition(cancelTransitions, StatusPending, StatusCancelled))
	assert.True(t, canTransition(cancelTransitions, StatusConfirmed, StatusCancelled))
	assert.False(t, canTransition(cancelTransitions, StatusCompleted, StatusCancelled))
	assert.False(t, canTransition(cancelTransitions, StatusCancelled, StatusCancelled))
	assert.False(t, canTransition(cancelTransitions, StatusPending, StatusConfirmed))

	assert.Equal(t, []Status{StatusPending, StatusConfirmed}, sourcesFor(cancelTransitions, StatusCancelled))
}

func TestBookingRef(t *testing.T) {
	b := Booking{ID: "0b7e2a4c-9d1f-4b3e-8a6c-5f2e1d0c9ab7"}
	assert.Equal(t, "1D0C9AB7", b.Ref())

	short := Booking{ID: "abc"}
	assert.Equal(t, "ABC", short.Ref())
}

func TestInputErrorUnwraps(t *testing.T) {
	err := invalidField("Duration.Value", "gt", "Duration.Value must be greater than 0")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "Duration.Value must be greater than 0")
}

func TestNotFoundKinds(t *testing.T) {
	assert.ErrorIs(t, ErrBookingNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrServiceNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrBookingNotFound, ErrServiceNotFound)
}
