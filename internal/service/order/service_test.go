package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directsales/internal/domain"
	orderrepo "directsales/internal/repository/order"
)

const orderID = "5d6c3f1a-2f0e-4a61-8c1d-6a8b9e0f1a2b"

type stubRepo struct {
	order      *domain.Order
	lastFilter orderrepo.Filter
}

func (s *stubRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) { return &o, nil }

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubRepo) List(_ context.Context, f orderrepo.Filter) ([]domain.Order, int, error) {
	s.lastFilter = f
	return nil, 0, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, nil
}

func TestGetMine_HidesOtherUsers(t *testing.T) {
	svc := New(&stubRepo{order: &domain.Order{ID: orderID, UserID: "owner"}})

	_, err := svc.GetMine(context.Background(), "intruder", orderID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	o, err := svc.GetMine(context.Background(), "owner", orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, o.ID)

	_, err = svc.Get(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestList_StatusFilter(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)

	_, _, err := svc.List(context.Background(), "shipped", 10, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, _, err = svc.List(context.Background(), domain.OrderPaid, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, repo.lastFilter.Status)
}
