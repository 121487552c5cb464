package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceColumns = []string{"service_id", "name", "short_description", "category", "image", "charge_per_hour", "charge_per_day", "is_active", "created_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewRepository(sqlx.NewDb(sqlDB, "sqlmock")), mock
}

func TestCreateService(t *testing.T) {
	repo, mock := setupMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO services.*`).
		WithArgs("night-care", "Night Care", "Overnight support", "elderly", "", 300.0, 2400.0).
		WillReturnRows(sqlmock.NewRows(serviceColumns).
			AddRow("night-care", "Night Care", "Overnight support", "elderly", "", 300.0, 2400.0, true, time.Now()))

	svc, err := repo.Create(ctx, Service{
		ID: "night-care", Name: "Night Care", ShortDescription: "Overnight support",
		Category: "elderly", ChargePerHour: 300, ChargePerDay: 2400,
	})
	require.NoError(t, err)
	assert.Equal(t, "night-care", svc.ID)
	assert.True(t, svc.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateServiceDuplicate(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`INSERT INTO services.*`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "services_pkey"})

	_, err := repo.Create(context.Background(), Service{ID: "baby-care", Name: "Baby Care", Category: "child"})
	assert.ErrorIs(t, err, ErrServiceExists)
}

func TestListActiveServices(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT service_id, name, short_description, category, image, charge_per_hour, charge_per_day, is_active, created_at FROM services WHERE is_active = TRUE.*`).
		WillReturnRows(sqlmock.NewRows(serviceColumns).
			AddRow("baby-care", "Baby Care", "", "child", "", 200.0, 1500.0, true, time.Now()).
			AddRow("elderly-care", "Elderly Care", "", "elderly", "", 250.0, 2000.0, true, time.Now()))

	services, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 2)
	assert.Equal(t, 250.0, services[1].ChargePerHour)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetServiceByID(t *testing.T) {
	repo, mock := setupMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .* FROM services WHERE service_id = \$1`).
		WithArgs("elderly-care").
		WillReturnRows(sqlmock.NewRows(serviceColumns).
			AddRow("elderly-care", "Elderly Care", "", "elderly", "", 250.0, 2000.0, true, time.Now()))

	svc, err := repo.GetByID(ctx, "elderly-care")
	require.NoError(t, err)
	assert.Equal(t, "Elderly Care", svc.Name)

	mock.ExpectQuery(`SELECT .* FROM services WHERE service_id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActive(t *testing.T) {
	repo, mock := setupMock(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE services SET is_active = \$2 WHERE service_id = \$1`).
		WithArgs("sick-care", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetActive(ctx, "sick-care", false))

	mock.ExpectExec(`UPDATE services SET is_active = \$2 WHERE service_id = \$1`).
		WithArgs("ghost", true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetActive(ctx, "ghost", true), ErrServiceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
