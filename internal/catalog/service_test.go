package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) Create(ctx context.Context, svc Service) (*Service, error) {
	args := m.Called(ctx, svc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Service), args.Error(1)
}

func (m *MockRepo) ListActive(ctx context.Context) ([]Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Service), args.Error(1)
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Service), args.Error(1)
}

func (m *MockRepo) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		setup   func(r *MockRepo)
		wantErr error
	}{
		{
			name: "active service",
			id:   " elderly-care ",
			setup: func(r *MockRepo) {
				r.On("GetByID", ctx, "elderly-care").Return(&Service{ID: "elderly-care", IsActive: true}, nil)
			},
		},
		{
			name: "inactive service hidden",
			id:   "sick-care",
			setup: func(r *MockRepo) {
				r.On("GetByID", ctx, "sick-care").Return(&Service{ID: "sick-care", IsActive: false}, nil)
			},
			wantErr: ErrServiceNotFound,
		},
		{
			name:    "blank id",
			id:      "  ",
			setup:   func(r *MockRepo) {},
			wantErr: ErrServiceNotFound,
		},
		{
			name: "store failure passes through",
			id:   "baby-care",
			setup: func(r *MockRepo) {
				r.On("GetByID", ctx, "baby-care").Return(nil, assert.AnError)
			},
			wantErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			tt.setup(repo)

			svc, err := NewCatalog(repo).Lookup(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
			} else {
				require.NoError(t, err)
				assert.True(t, svc.IsActive)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCreateServiceTrims(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepo)
	repo.On("Create", ctx, Service{ID: "night-care", Name: "Night Care", Category: "elderly", ChargePerHour: 300}).
		Return(&Service{ID: "night-care"}, nil)

	_, err := NewCatalog(repo).CreateService(ctx, CreateServiceRequest{
		ID: " night-care", Name: "Night Care ", Category: "elderly", ChargePerHour: 300,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRateFor(t *testing.T) {
	svc := Service{ChargePerHour: 250, ChargePerDay: 2000}

	rate, ok := svc.RateFor(UnitHours)
	assert.True(t, ok)
	assert.Equal(t, 250.0, rate)

	rate, ok = svc.RateFor(UnitDays)
	assert.True(t, ok)
	assert.Equal(t, 2000.0, rate)

	_, ok = svc.RateFor("weeks")
	assert.False(t, ok)
}
