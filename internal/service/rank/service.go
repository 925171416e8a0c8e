// Package rank administers the compensation ladder.
package rank

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/logging"
	"directsales/internal/rankladder"
	rankrepo "directsales/internal/repository/rank"
)

// Direction moves a rank along the ladder.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", domain.Invalid("direction", "must be up or down")
}

type Service struct {
	repo   rankrepo.Repository
	logger *zap.Logger
}

func New(repo rankrepo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logging.OrNop(logger).Named("rank_admin")}
}

type Input struct {
	Name           string  `json:"name"`
	CommissionRate float64 `json:"commissionRate"`
	ThresholdPV    int64   `json:"thresholdPv"`
	ThresholdGV    int64   `json:"thresholdGv"`
}

func (in Input) validate() (domain.Rank, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Rank{}, domain.Invalid("name", "required")
	}
	if in.CommissionRate < 0 || in.CommissionRate > 100 {
		return domain.Rank{}, domain.Invalid("commissionRate", "must be between 0 and 100")
	}
	if in.ThresholdPV < 0 {
		return domain.Rank{}, domain.Invalid("thresholdPv", "must not be negative")
	}
	if in.ThresholdGV < 0 {
		return domain.Rank{}, domain.Invalid("thresholdGv", "must not be negative")
	}
	return domain.Rank{
		Name:           name,
		CommissionRate: in.CommissionRate,
		ThresholdPV:    in.ThresholdPV,
		ThresholdGV:    in.ThresholdGV,
	}, nil
}

// Ladder loads the ranks table as the single ordered ladder.
func (s *Service) Ladder(ctx context.Context) (rankladder.Ladder, error) {
	ranks, err := s.repo.List(ctx)
	if err != nil {
		return rankladder.Ladder{}, fmt.Errorf("load ranks: %w", err)
	}
	return rankladder.New(ranks), nil
}

func (s *Service) List(ctx context.Context) ([]domain.Rank, error) {
	ladder, err := s.Ladder(ctx)
	if err != nil {
		return nil, err
	}
	return ladder.Ranks(), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Rank, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Rank, error) {
	r, err := in.validate()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Rank, error) {
	r, err := in.validate()
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	r.ID = id
	return s.repo.Update(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Reorder moves the rank one rung up or down by swapping its PV and GV
// thresholds with its neighbour. Names and commission rates stay on their
// rows. Moving the first rank up or the last rank down changes nothing.
func (s *Service) Reorder(ctx context.Context, id string, dir Direction) ([]domain.Rank, error) {
	ladder, err := s.Ladder(ctx)
	if err != nil {
		return nil, err
	}
	idx := ladder.IndexOf(id)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	neighbor, ok := ladder.Neighbor(idx, dir == Up)
	if !ok {
		return ladder.Ranks(), nil
	}

	rungs := ladder.Ranks()
	if err := s.repo.SwapThresholds(ctx, rungs[idx].ID, rungs[neighbor].ID); err != nil {
		return nil, fmt.Errorf("swap thresholds: %w", err)
	}
	s.logger.Info("rank reordered",
		zap.String("id", id),
		zap.String("direction", string(dir)),
		zap.String("swapped_with", rungs[neighbor].Name),
	)
	return s.List(ctx)
}
