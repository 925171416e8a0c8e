package withdrawal

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/logging"
	withdrawalrepo "directsales/internal/repository/withdrawal"
)

type Service struct {
	repo   withdrawalrepo.Repository
	logger *zap.Logger
}

func New(repo withdrawalrepo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logging.OrNop(logger).Named("withdrawal")}
}

type RequestInput struct {
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

// Request asks to pay out part of the user's commission balance.
func (s *Service) Request(ctx context.Context, userID string, in RequestInput) (*domain.Withdrawal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		return nil, domain.Invalid("amount", "must be a decimal number")
	}
	if !amount.IsPositive() {
		return nil, domain.Invalid("amount", "must be greater than zero")
	}
	if amount.Exponent() < -2 {
		return nil, domain.Invalid("amount", "at most two decimal places")
	}
	return s.repo.Create(ctx, userID, amount, strings.TrimSpace(in.Note))
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Withdrawal, error) {
	out, _, err := s.repo.List(ctx, withdrawalrepo.Filter{UserID: userID, Limit: 100})
	return out, err
}

func (s *Service) Available(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.repo.Available(ctx, userID)
}

func (s *Service) List(ctx context.Context, f withdrawalrepo.Filter) ([]domain.Withdrawal, int, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Approve(ctx context.Context, id, note string) (*domain.Withdrawal, error) {
	return s.decide(ctx, id, domain.WithdrawalApproved, note)
}

func (s *Service) Reject(ctx context.Context, id, note string) (*domain.Withdrawal, error) {
	return s.decide(ctx, id, domain.WithdrawalRejected, note)
}

func (s *Service) decide(ctx context.Context, id, status, note string) (*domain.Withdrawal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	w, err := s.repo.Decide(ctx, id, status, strings.TrimSpace(note))
	if err != nil {
		return nil, err
	}
	s.logger.Info("withdrawal decided", zap.String("id", id), zap.String("status", status), zap.String("amount", w.Amount.StringFixed(2)))
	return w, nil
}
