package profile

import (
	"context"
	"errors"
	"testing"

	"directsales/internal/dbtest"
	"directsales/internal/domain"
)

func TestPostgres_CreateGrowsUplineTeams(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	root, err := repo.Create(ctx, domain.Profile{Email: "Root@Example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "ROOT"})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if root.Email != "root@example.com" {
		t.Fatalf("expected lower-cased email, got %s", root.Email)
	}
	mid, err := repo.Create(ctx, domain.Profile{Email: "mid@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "MID", SponsorID: &root.ID})
	if err != nil {
		t.Fatalf("create mid: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Profile{Email: "leaf@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "LEAF", SponsorID: &mid.ID}); err != nil {
		t.Fatalf("create leaf: %v", err)
	}

	root, _ = repo.GetByID(ctx, root.ID)
	mid, _ = repo.GetByID(ctx, mid.ID)
	if root.TeamSize != 2 || mid.TeamSize != 1 {
		t.Fatalf("unexpected team sizes root=%d mid=%d", root.TeamSize, mid.TeamSize)
	}

	size, err := repo.DownlineSize(ctx, root.ID)
	if err != nil || size != 2 {
		t.Fatalf("DownlineSize: %d %v", size, err)
	}
	direct, err := repo.DirectDownline(ctx, root.ID)
	if err != nil || len(direct) != 1 || direct[0].ID != mid.ID {
		t.Fatalf("DirectDownline: %+v %v", direct, err)
	}

	byCode, err := repo.GetByReferralCode(ctx, "MID")
	if err != nil || byCode.ID != mid.ID {
		t.Fatalf("GetByReferralCode: %+v %v", byCode, err)
	}

	_, err = repo.Create(ctx, domain.Profile{Email: "root@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "OTHER"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected duplicate email to be refused, got %v", err)
	}
}

func TestPostgres_UpdateJoinsRank(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	var rankID string
	if err := pool.QueryRow(ctx, `INSERT INTO ranks (name, commission_rate, threshold_pv) VALUES ('Starter', 5, 100) RETURNING id::text`).Scan(&rankID); err != nil {
		t.Fatalf("insert rank: %v", err)
	}
	p, err := repo.Create(ctx, domain.Profile{Email: "u@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "U1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pv := int64(150)
	updated, err := repo.Update(ctx, p.ID, AdminUpdate{RankID: &rankID, PersonalVolume: &pv})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Rank == nil || updated.Rank.Name != "Starter" || updated.PersonalVolume != 150 {
		t.Fatalf("unexpected profile %+v", updated)
	}

	list, total, err := repo.List(ctx, 10, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("List: %d %d %v", len(list), total, err)
	}
}

func TestPostgres_CreateAssignsEntryRank(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	unranked, err := repo.Create(ctx, domain.Profile{Email: "early@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "EARLY"})
	if err != nil {
		t.Fatalf("create without ladder: %v", err)
	}
	if unranked.RankID != nil {
		t.Fatalf("expected no rank on an empty ladder, got %v", *unranked.RankID)
	}

	if _, err := pool.Exec(ctx, `
INSERT INTO ranks (name, commission_rate, threshold_pv, threshold_gv)
VALUES ('Starter', 5, 0, 0), ('Associate', 8, 100, 500)`); err != nil {
		t.Fatalf("insert ranks: %v", err)
	}
	p, err := repo.Create(ctx, domain.Profile{Email: "new@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "NEW"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Rank == nil || p.Rank.Name != "Starter" {
		t.Fatalf("expected Starter, got %+v", p.Rank)
	}
}

func TestPostgres_CreateReportsReferralCodeClash(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	if _, err := repo.Create(ctx, domain.Profile{Email: "a@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "SAME"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, domain.Profile{Email: "b@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "SAME"})
	if !errors.Is(err, ErrReferralCodeTaken) {
		t.Fatalf("expected ErrReferralCodeTaken, got %v", err)
	}
	_, err = repo.Create(ctx, domain.Profile{Email: "a@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "OTHER"})
	if !errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, ErrReferralCodeTaken) {
		t.Fatalf("expected plain duplicate email error, got %v", err)
	}
}

func TestPostgres_UpdateUnknownRankIsInvalid(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	p, err := repo.Create(ctx, domain.Profile{Email: "u@example.com", PasswordHash: "h", Role: domain.RoleCustomer, ReferralCode: "U1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	missing := "00000000-0000-0000-0000-000000000001"
	_, err = repo.Update(ctx, p.ID, AdminUpdate{RankID: &missing})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid rank, got %v", err)
	}
}
