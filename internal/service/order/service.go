package order

import (
	"context"

	"github.com/google/uuid"

	"directsales/internal/domain"
	orderrepo "directsales/internal/repository/order"
)

type Service struct {
	repo orderrepo.Repository
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

var statuses = map[string]bool{
	domain.OrderPending:   true,
	domain.OrderPaid:      true,
	domain.OrderFailed:    true,
	domain.OrderCancelled: true,
}

// List is the back-office listing, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]domain.Order, int, error) {
	if status != "" && !statuses[status] {
		return nil, 0, domain.Invalid("status", "unknown order status")
	}
	return s.repo.List(ctx, orderrepo.Filter{Status: status, Limit: limit, Offset: offset})
}

func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	return s.repo.List(ctx, orderrepo.Filter{UserID: userID, Limit: limit, Offset: offset})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// GetMine hides orders that belong to someone else.
func (s *Service) GetMine(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}
