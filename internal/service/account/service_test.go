package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"directsales/internal/domain"
	profilerepo "directsales/internal/repository/profile"
	tokenrepo "directsales/internal/repository/token"
	"directsales/internal/session"
)

// memoryRepo is a lightweight in-memory profile repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.Profile
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.Profile)}
}

func (r *memoryRepo) Create(_ context.Context, p domain.Profile) (*domain.Profile, error) {
	if _, exists := r.byEmail[p.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := p
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	if p, ok := r.byEmail[email]; ok {
		return &p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	for _, p := range r.byEmail {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByReferralCode(_ context.Context, code string) (*domain.Profile, error) {
	for _, p := range r.byEmail {
		if p.ReferralCode == code {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) List(_ context.Context, _, _ int) ([]domain.Profile, int, error) {
	return nil, len(r.byEmail), nil
}

func (r *memoryRepo) Update(_ context.Context, id string, in profilerepo.AdminUpdate) (*domain.Profile, error) {
	for email, p := range r.byEmail {
		if p.ID != id {
			continue
		}
		if in.Role != nil {
			p.Role = *in.Role
		}
		r.byEmail[email] = p
		return &p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) DirectDownline(_ context.Context, _ string) ([]domain.Profile, error) {
	return nil, nil
}

func (r *memoryRepo) DownlineSize(_ context.Context, _ string) (int, error) { return 0, nil }

func TestSignupAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := New(newMemoryRepo(), "secret", time.Hour, nil)
	ctx := context.Background()

	p, err := svc.Signup(ctx, SignupInput{
		Email:     "User@Example.com",
		Password:  " Abcdefg1 ",
		FirstName: "T",
	})
	if err != nil {
		t.Fatalf("signup returned error: %v", err)
	}
	if p.Email != "user@example.com" || p.Role != domain.RoleCustomer || len(p.ReferralCode) != 8 {
		t.Fatalf("unexpected profile %+v", p)
	}

	_, token, err := svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login failed with trimmed password: %v", err)
	}

	id, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != p.ID || id.Role != domain.RoleCustomer {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestSignup_ReferralCodeSetsSponsor(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, "secret", time.Hour, nil)
	ctx := context.Background()

	sponsor, err := svc.Signup(ctx, SignupInput{Email: "sponsor@example.com", Password: "Abcdefg1"})
	if err != nil {
		t.Fatalf("signup sponsor: %v", err)
	}
	recruit, err := svc.Signup(ctx, SignupInput{Email: "recruit@example.com", Password: "Abcdefg1", ReferralCode: sponsor.ReferralCode})
	if err != nil {
		t.Fatalf("signup recruit: %v", err)
	}
	if recruit.SponsorID == nil || *recruit.SponsorID != sponsor.ID {
		t.Fatalf("expected sponsor %s, got %+v", sponsor.ID, recruit.SponsorID)
	}

	_, err = svc.Signup(ctx, SignupInput{Email: "lost@example.com", Password: "Abcdefg1", ReferralCode: "NOPE"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid referral code, got %v", err)
	}
	if _, ok := repo.byEmail["lost@example.com"]; ok {
		t.Fatalf("profile must not be created with an unknown referral code")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := New(newMemoryRepo(), "secret", time.Hour, nil)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "Abcdefg1"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected validation error for case %s, got %v", tc.name, err)
		}
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := New(newMemoryRepo(), "secret", time.Hour, nil)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Login(ctx, "user@example.com", "wrongpass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "missing@example.com", "Abcdefg1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, "secret", time.Hour, nil)
	ctx := context.Background()
	p, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "Abcdefg1"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	other := newTokenManager("other-secret", time.Hour)
	forged, _ := other.Issue(session.Identity{UserID: p.ID, Role: domain.RoleAdmin})
	if _, err := svc.Authenticate(ctx, forged); err != ErrInvalidToken {
		t.Fatalf("expected forged token rejected, got %v", err)
	}

	expired := newTokenManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Issue(session.Identity{UserID: p.ID})
	if _, err := svc.Authenticate(ctx, old); err != ErrInvalidToken {
		t.Fatalf("expected expired token rejected, got %v", err)
	}

	if _, err := svc.Authenticate(ctx, "not-a-jwt"); err != ErrInvalidToken {
		t.Fatalf("expected garbage rejected, got %v", err)
	}
}

func TestAuthenticate_ReadsRoleFromStorage(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, "secret", time.Hour, nil)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, SignupInput{Email: "boss@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, token, err := svc.Login(ctx, "boss@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.GrantAdmin(ctx, "boss@example.com"); err != nil {
		t.Fatalf("grant admin: %v", err)
	}
	id, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !id.IsAdmin() {
		t.Fatalf("expected admin identity, got %+v", id)
	}
}

func TestAdminUpdate_Validation(t *testing.T) {
	svc := New(newMemoryRepo(), "secret", time.Hour, nil)
	role := "owner"
	if _, err := svc.AdminUpdate(context.Background(), "x", AdminUpdateInput{Role: &role}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid role, got %v", err)
	}
	neg := int64(-1)
	if _, err := svc.AdminUpdate(context.Background(), "x", AdminUpdateInput{PersonalVolume: &neg}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid volume, got %v", err)
	}
}

func TestAdminUpdate_RejectsMalformedIDs(t *testing.T) {
	svc := New(newMemoryRepo(), "secret", time.Hour, nil)
	ctx := context.Background()
	if _, err := svc.AdminUpdate(ctx, "abc", AdminUpdateInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
	rank := "gold"
	var verr *domain.ValidationError
	_, err := svc.AdminUpdate(ctx, uuid.NewString(), AdminUpdateInput{RankID: &rank})
	if !errors.As(err, &verr) || verr.Field != "rankId" {
		t.Fatalf("expected rankId validation error, got %v", err)
	}
}

// flakyCreateRepo fails the first Create calls with the queued errors.
type flakyCreateRepo struct {
	*memoryRepo
	createErrs []error
	creates    int
}

func (r *flakyCreateRepo) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	r.creates++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return nil, err
	}
	return r.memoryRepo.Create(ctx, p)
}

func TestSignup_RetriesReferralCodeClash(t *testing.T) {
	repo := &flakyCreateRepo{memoryRepo: newMemoryRepo(), createErrs: []error{profilerepo.ErrReferralCodeTaken}}
	svc := New(repo, "secret", time.Hour, nil)
	if _, err := svc.Signup(context.Background(), SignupInput{Email: "a@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if repo.creates != 2 {
		t.Fatalf("expected one retry, got %d creates", repo.creates)
	}
}

func TestSignup_ConcurrentEmailIsConflict(t *testing.T) {
	// The pre-check passes but another signup wins the insert.
	repo := &flakyCreateRepo{memoryRepo: newMemoryRepo(), createErrs: []error{domain.ErrAlreadyExists}}
	svc := New(repo, "secret", time.Hour, nil)
	_, err := svc.Signup(context.Background(), SignupInput{Email: "a@example.com", Password: "Abcdefg1"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("email conflict must not be retried, got %d creates", repo.creates)
	}
}

type memoryRevocations struct {
	byID map[string]tokenrepo.Revocation
}

func (m *memoryRevocations) Revoke(_ context.Context, r tokenrepo.Revocation) error {
	m.byID[r.TokenID] = r
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memoryRevocations) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, r := range m.byID {
		if r.ExpiresAt.Before(cutoff) {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

func TestLogout_RevokesOnlyThatToken(t *testing.T) {
	store := &memoryRevocations{byID: make(map[string]tokenrepo.Revocation)}
	svc := New(newMemoryRepo(), "secret", time.Hour, nil).WithRevocations(store)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, SignupInput{Email: "out@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, first, err := svc.Login(ctx, "out@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	_, second, err := svc.Login(ctx, "out@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, first); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, first); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, second); err != nil {
		t.Fatalf("other session must survive: %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err := svc.PruneRevocations(ctx)
	if err != nil || n != 1 {
		t.Fatalf("prune: n=%d err=%v", n, err)
	}
}
