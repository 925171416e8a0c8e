package profile

import (
	"context"
	"fmt"

	"directsales/internal/domain"
)

// ErrReferralCodeTaken reports a Create that lost a race for its referral
// code. Callers may retry with a fresh code.
var ErrReferralCodeTaken = fmt.Errorf("referral code taken: %w", domain.ErrAlreadyExists)

// AdminUpdate carries back-office edits. Nil fields are left unchanged.
type AdminUpdate struct {
	Role           *string
	RankID         *string
	PersonalVolume *int64
	GroupVolume    *int64
}

// Repository persists and fetches profiles.
type Repository interface {
	Create(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]domain.Profile, int, error)
	Update(ctx context.Context, id string, in AdminUpdate) (*domain.Profile, error)
	DirectDownline(ctx context.Context, id string) ([]domain.Profile, error)
	DownlineSize(ctx context.Context, id string) (int, error)
}
