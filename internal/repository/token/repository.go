package token

import (
	"context"
	"time"
)

// Revocation marks an access token id as unusable until it would have expired anyway.
type Revocation struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	// Revoke is idempotent; revoking the same token twice is not an error.
	Revoke(ctx context.Context, r Revocation) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Prune drops revocations whose tokens expired before cutoff.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
