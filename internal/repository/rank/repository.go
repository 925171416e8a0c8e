package rank

import (
	"context"

	"directsales/internal/domain"
)

type Repository interface {
	// List returns every rank ordered by threshold_pv ascending.
	List(ctx context.Context) ([]domain.Rank, error)
	GetByID(ctx context.Context, id string) (*domain.Rank, error)
	Create(ctx context.Context, r domain.Rank) (*domain.Rank, error)
	Update(ctx context.Context, r domain.Rank) (*domain.Rank, error)
	Delete(ctx context.Context, id string) error
	// SwapThresholds exchanges threshold_pv and threshold_gv between two
	// ranks as one unit of work.
	SwapThresholds(ctx context.Context, firstID, secondID string) error
}
