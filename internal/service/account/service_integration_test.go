package account

import (
	"context"
	"testing"
	"time"

	"directsales/internal/dbtest"
	profilerepo "directsales/internal/repository/profile"
)

func TestSignupAndLogin_Integration(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)

	svc := New(profilerepo.NewPostgres(pool, nil), "integration-secret", time.Hour, nil)

	password := "Abcdefg1"
	sponsor, err := svc.Signup(ctx, SignupInput{Email: "sponsor@example.com", Password: password, FirstName: "Int"})
	if err != nil {
		t.Fatalf("signup sponsor: %v", err)
	}
	recruit, err := svc.Signup(ctx, SignupInput{
		Email:        "integration@example.com",
		Password:     password,
		FirstName:    "Int",
		LastName:     "User",
		ReferralCode: sponsor.ReferralCode,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if recruit.SponsorID == nil || *recruit.SponsorID != sponsor.ID {
		t.Fatalf("expected sponsor link, got %+v", recruit)
	}

	_, token, err := svc.Login(ctx, "integration@example.com", password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	me, err := svc.Me(ctx, sponsor.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.TeamSize != 1 {
		t.Fatalf("expected sponsor team size 1, got %d", me.TeamSize)
	}
}
