package catalog

import (
	"context"
	"database/sql"
	"errors"

	"carexyz/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceExists   = errors.New("service already exists")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, svc Service) (*Service, error) {
	query := `
		INSERT INTO services (service_id, name, short_description, category, image, charge_per_hour, charge_per_day, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING service_id, name, short_description, category, image, charge_per_hour, charge_per_day, is_active, created_at
	`

	var created Service
	err := r.db.GetContext(ctx, &created, query,
		svc.ID, svc.Name, svc.ShortDescription, svc.Category, svc.Image, svc.ChargePerHour, svc.ChargePerDay)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrServiceExists
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Service, error) {
	query := `
		SELECT service_id, name, short_description, category, image, charge_per_hour, charge_per_day, is_active, created_at
		FROM services
		WHERE is_active = TRUE
		ORDER BY name
	`

	services := []Service{}
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, err
	}

	return services, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Service, error) {
	query := `
		SELECT service_id, name, short_description, category, image, charge_per_hour, charge_per_day, is_active, created_at
		FROM services
		WHERE service_id = $1
	`

	var svc Service
	err := r.db.GetContext(ctx, &svc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}

	return &svc, nil
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE services SET is_active = $2 WHERE service_id = $1`, id, active)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrServiceNotFound
	}
	return nil
}
