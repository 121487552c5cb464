package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carexyz/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const activeDailyConstraint = "bookings_active_daily_uniq"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (
			id, user_id, service_id, service_name, duration_value, duration_unit,
			division, district, city, area, address, total_cost,
			status, payment_status, booking_day, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::date, $16, $16)
		RETURNING id, user_id, service_id, service_name, duration_value, duration_unit, division, district, city, area, address, total_cost, status, payment_status, payment_session_id, paid_at, created_at, updated_at
	`

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query,
		b.ID, b.UserID, b.ServiceID, b.ServiceName, b.Duration.Value, string(b.Duration.Unit),
		b.Location.Division, b.Location.District, b.Location.City, b.Location.Area, b.Location.Address, b.TotalCost,
		string(b.Status), string(b.PaymentStatus), b.CreatedAt.Format("2006-01-02"), b.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, activeDailyConstraint) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}

	created := row.toBooking()
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT id, user_id, service_id, service_name, duration_value, duration_unit, division, district, city, area, address, total_cost, status, payment_status, payment_session_id, paid_at, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	b := row.toBooking()
	return &b, nil
}

func (r *repository) HasActiveBookingForDay(ctx context.Context, userID int, serviceID string, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND service_id = $2 AND status <> 'Cancelled'
			AND created_at >= $3 AND created_at < $4
		)
	`

	return db.Exists(ctx, r.db, query, userID, serviceID, from, to)
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Booking, error) {
	query := `
		SELECT id, user_id, service_id, service_name, duration_value, duration_unit, division, district, city, area, address, total_cost, status, payment_status, payment_session_id, paid_at, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	return toBookings(rows), nil
}

func (r *repository) ListAll(ctx context.Context) ([]Booking, error) {
	query := `
		SELECT id, user_id, service_id, service_name, duration_value, duration_unit, division, district, city, area, address, total_cost, status, payment_status, payment_session_id, paid_at, created_at, updated_at
		FROM bookings
		ORDER BY created_at DESC
	`

	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	return toBookings(rows), nil
}

// TransitionStatus moves the booking to `to` only while its status is one of `from`.
func (r *repository) TransitionStatus(ctx context.Context, id string, from []Status, to Status, at time.Time) (*Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)
		RETURNING id, user_id, service_id, service_name, duration_value, duration_unit, division, district, city, area, address, total_cost, status, payment_status, payment_session_id, paid_at, created_at, updated_at
	`

	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, id, string(to), at, pq.Array(allowed))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoTransition
	}
	if err != nil {
		if db.IsUniqueViolation(err, activeDailyConstraint) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}

	b := row.toBooking()
	return &b, nil
}

// MarkPaid sets the paid fields once. It matches only unpaid, non-cancelled rows.
func (r *repository) MarkPaid(ctx context.Context, id, sessionRef string, at time.Time) (*Booking, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'Paid', payment_session_id = $2, paid_at = $3, updated_at = $3
		WHERE id = $1 AND payment_status = 'Unpaid' AND status <> 'Cancelled'
		RETURNING id, user_id, service_id, service_name, duration_value, duration_unit, division, district, city, area, address, total_cost, status, payment_status, payment_session_id, paid_at, created_at, updated_at
	`

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, id, sessionRef, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoTransition
	}
	if err != nil {
		return nil, err
	}

	b := row.toBooking()
	return &b, nil
}

func toBookings(rows []bookingRow) []Booking {
	out := make([]Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toBooking())
	}
	return out
}
