package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, svc Service) (*Service, error)
	ListActive(ctx context.Context) ([]Service, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	SetActive(ctx context.Context, id string, active bool) error
}
