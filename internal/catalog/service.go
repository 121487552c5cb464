package catalog

import (
	"context"
	"strings"
)

// Catalog is the read side used by bookings plus the admin write side.
type Catalog interface {
	Lookup(ctx context.Context, id string) (*Service, error)
	ListActive(ctx context.Context) ([]Service, error)
	CreateService(ctx context.Context, req CreateServiceRequest) (*Service, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type catalogService struct {
	repo Repository
}

func NewCatalog(repo Repository) Catalog {
	return &catalogService{repo: repo}
}

// Lookup returns an active service. Inactive services are reported as not found.
func (s *catalogService) Lookup(ctx context.Context, id string) (*Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrServiceNotFound
	}

	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

func (s *catalogService) ListActive(ctx context.Context) ([]Service, error) {
	return s.repo.ListActive(ctx)
}

func (s *catalogService) CreateService(ctx context.Context, req CreateServiceRequest) (*Service, error) {
	return s.repo.Create(ctx, Service{
		ID:               strings.TrimSpace(req.ID),
		Name:             strings.TrimSpace(req.Name),
		ShortDescription: strings.TrimSpace(req.ShortDescription),
		Category:         strings.TrimSpace(req.Category),
		Image:            strings.TrimSpace(req.Image),
		ChargePerHour:    req.ChargePerHour,
		ChargePerDay:     req.ChargePerDay,
	})
}

func (s *catalogService) SetActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
