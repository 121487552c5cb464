package booking

import (
	"database/sql"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

type DurationUnit string

const (
	UnitHours DurationUnit = "hours"
	UnitDays  DurationUnit = "days"
)

// PaymentSource identifies which confirmation path marked a booking paid.
type PaymentSource string

const (
	SourceRedirect PaymentSource = "redirect"
	SourceWebhook  PaymentSource = "webhook"
)

type Duration struct {
	Value int          `json:"value" validate:"gt=0"`
	Unit  DurationUnit `json:"unit" validate:"oneof=hours days"`
}

type Location struct {
	Division string `json:"division" validate:"required"`
	District string `json:"district" validate:"required"`
	City     string `json:"city" validate:"required"`
	Area     string `json:"area" validate:"required"`
	Address  string `json:"address" validate:"required"`
}

func (l Location) trimmed() Location {
	return Location{
		Division: strings.TrimSpace(l.Division),
		District: strings.TrimSpace(l.District),
		City:     strings.TrimSpace(l.City),
		Area:     strings.TrimSpace(l.Area),
		Address:  strings.TrimSpace(l.Address),
	}
}

// Booking is a user's request for a caregiving service. ServiceName and
// TotalCost are copied from the catalog when the booking is created.
type Booking struct {
	ID               string        `json:"id"`
	UserID           int           `json:"userId"`
	ServiceID        string        `json:"serviceId"`
	ServiceName      string        `json:"serviceName"`
	Duration         Duration      `json:"duration"`
	Location         Location      `json:"location"`
	TotalCost        float64       `json:"totalCost"`
	Status           Status        `json:"status"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	PaymentSessionID *string       `json:"paymentSessionId,omitempty"`
	PaidAt           *time.Time    `json:"paidAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentPaid
}

// Ref is the short, human-facing booking reference used in emails.
func (b *Booking) Ref() string {
	id := strings.ReplaceAll(b.ID, "-", "")
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

type bookingRow struct {
	ID               string         `db:"id"`
	UserID           int            `db:"user_id"`
	ServiceID        string         `db:"service_id"`
	ServiceName      string         `db:"service_name"`
	DurationValue    int            `db:"duration_value"`
	DurationUnit     string         `db:"duration_unit"`
	Division         string         `db:"division"`
	District         string         `db:"district"`
	City             string         `db:"city"`
	Area             string         `db:"area"`
	Address          string         `db:"address"`
	TotalCost        float64        `db:"total_cost"`
	Status           string         `db:"status"`
	PaymentStatus    string         `db:"payment_status"`
	PaymentSessionID sql.NullString `db:"payment_session_id"`
	PaidAt           sql.NullTime   `db:"paid_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r bookingRow) toBooking() Booking {
	b := Booking{
		ID:          r.ID,
		UserID:      r.UserID,
		ServiceID:   r.ServiceID,
		ServiceName: r.ServiceName,
		Duration:    Duration{Value: r.DurationValue, Unit: DurationUnit(r.DurationUnit)},
		Location: Location{
			Division: r.Division,
			District: r.District,
			City:     r.City,
			Area:     r.Area,
			Address:  r.Address,
		},
		TotalCost:     r.TotalCost,
		Status:        Status(r.Status),
		PaymentStatus: PaymentStatus(r.PaymentStatus),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.PaymentSessionID.Valid {
		ref := r.PaymentSessionID.String
		b.PaymentSessionID = &ref
	}
	if r.PaidAt.Valid {
		at := r.PaidAt.Time
		b.PaidAt = &at
	}
	return b
}

// CreateInput is the caller-supplied part of a new booking.
type CreateInput struct {
	ServiceID string   `json:"serviceId" validate:"required"`
	Duration  Duration `json:"duration"`
	Location  Location `json:"location"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
