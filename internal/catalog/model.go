package catalog

import "time"

const (
	UnitHours = "hours"
	UnitDays  = "days"
)

// Service is a bookable caregiving offering with hourly and daily rates.
type Service struct {
	ID               string    `db:"service_id" json:"serviceId"`
	Name             string    `db:"name" json:"name"`
	ShortDescription string    `db:"short_description" json:"shortDescription"`
	Category         string    `db:"category" json:"category"`
	Image            string    `db:"image" json:"image,omitempty"`
	ChargePerHour    float64   `db:"charge_per_hour" json:"chargePerHour"`
	ChargePerDay     float64   `db:"charge_per_day" json:"chargePerDay"`
	IsActive         bool      `db:"is_active" json:"isActive"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// RateFor returns the charge for one unit of the given duration unit.
func (s Service) RateFor(unit string) (float64, bool) {
	switch unit {
	case UnitHours:
		return s.ChargePerHour, true
	case UnitDays:
		return s.ChargePerDay, true
	default:
		return 0, false
	}
}

type CreateServiceRequest struct {
	ID               string  `json:"serviceId" binding:"required"`
	Name             string  `json:"name" binding:"required"`
	ShortDescription string  `json:"shortDescription"`
	Category         string  `json:"category" binding:"required"`
	Image            string  `json:"image"`
	ChargePerHour    float64 `json:"chargePerHour" binding:"gte=0"`
	ChargePerDay     float64 `json:"chargePerDay" binding:"gte=0"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
