package order

import (
	"context"

	"directsales/internal/domain"
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f Filter) ([]domain.Order, int, error)
	// UpdateStatus moves a pending order to status. Orders that already
	// left pending are returned unchanged.
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}
