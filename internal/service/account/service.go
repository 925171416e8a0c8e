package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"directsales/internal/domain"
	"directsales/internal/logging"
	profilerepo "directsales/internal/repository/profile"
	tokenrepo "directsales/internal/repository/token"
	"directsales/internal/session"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles signup, login and the identity behind access tokens.
type Service struct {
	repo        profilerepo.Repository
	tokens      *tokenManager
	revocations tokenrepo.Repository
	logger      *zap.Logger
	passwordMin int
}

func New(repo profilerepo.Repository, secret string, accessTTL time.Duration, logger *zap.Logger) *Service {
	if accessTTL <= 0 {
		accessTTL = 48 * time.Hour
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(secret, accessTTL),
		logger:      logging.OrNop(logger).Named("account"),
		passwordMin: 8,
	}
}

// WithRevocations enables Logout and makes Authenticate reject revoked tokens.
func (s *Service) WithRevocations(store tokenrepo.Repository) *Service {
	s.revocations = store
	return s
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ReferralCode string `json:"referralCode"`
}

// Signup registers a customer. A referral code, when given, must belong to
// an existing profile, which becomes the sponsor.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Profile, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	var sponsorID *string
	if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
		sponsor, err := s.repo.GetByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Invalid("referralCode", "unknown referral code")
			}
			return nil, err
		}
		sponsorID = &sponsor.ID
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 5; i++ {
		code, err := randomReferralCode()
		if err != nil {
			return nil, err
		}
		p, err := s.repo.Create(ctx, domain.Profile{
			Email:        email,
			PasswordHash: string(hashed),
			Role:         domain.RoleCustomer,
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			ReferralCode: code,
			SponsorID:    sponsorID,
		})
		if err == nil {
			s.logger.Info("signed up", zap.String("id", p.ID), zap.Bool("sponsored", sponsorID != nil))
			return p, nil
		}
		if !errors.Is(err, profilerepo.ErrReferralCodeTaken) {
			return nil, err
		}
		s.logger.Warn("referral code clash, retrying", zap.Int("attempt", i+1))
	}
	return nil, errors.New("referral code collision")
}

// Login validates credentials and returns an access token plus the profile.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Profile, string, error) {
	password = strings.TrimSpace(password)
	p, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(session.Identity{UserID: p.ID, Email: p.Email, Role: p.Role})
	if err != nil {
		return nil, "", err
	}
	return p, token, nil
}

// Authenticate resolves an access token to the identity it was issued for.
// The role is read from storage so revoked admins lose access immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Identity, error) {
	claims, ok := s.tokens.Validate(token)
	if !ok {
		return session.Identity{}, ErrInvalidToken
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return session.Identity{}, err
		}
		if revoked {
			return session.Identity{}, ErrInvalidToken
		}
	}
	p, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return session.Identity{}, ErrInvalidToken
		}
		return session.Identity{}, err
	}
	return session.Identity{UserID: p.ID, Email: p.Email, Role: p.Role}, nil
}

// Logout revokes token until its natural expiry.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, ok := s.tokens.Validate(token)
	if !ok {
		return ErrInvalidToken
	}
	if s.revocations == nil {
		return errors.New("token revocation not configured")
	}
	err := s.revocations.Revoke(ctx, tokenrepo.Revocation{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("token revoked", zap.String("user_id", claims.UserID))
	return nil
}

// PruneRevocations forgets revoked tokens that have expired on their own.
func (s *Service) PruneRevocations(ctx context.Context) (int64, error) {
	if s.revocations == nil {
		return 0, nil
	}
	return s.revocations.Prune(ctx, s.tokens.now())
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.repo.GetByID(ctx, userID)
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.tokens.ttl.Seconds())
}

// AdminUpdateInput is the back-office edit of a customer.
type AdminUpdateInput struct {
	Role           *string `json:"role"`
	RankID         *string `json:"rankId"`
	PersonalVolume *int64  `json:"personalVolume"`
	GroupVolume    *int64  `json:"groupVolume"`
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Profile, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) AdminUpdate(ctx context.Context, id string, in AdminUpdateInput) (*domain.Profile, error) {
	if in.Role != nil && *in.Role != domain.RoleCustomer && *in.Role != domain.RoleAdmin {
		return nil, domain.Invalid("role", "must be customer or admin")
	}
	if in.PersonalVolume != nil && *in.PersonalVolume < 0 {
		return nil, domain.Invalid("personalVolume", "must not be negative")
	}
	if in.GroupVolume != nil && *in.GroupVolume < 0 {
		return nil, domain.Invalid("groupVolume", "must not be negative")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	if in.RankID != nil {
		if _, err := uuid.Parse(*in.RankID); err != nil {
			return nil, domain.Invalid("rankId", "unknown rank")
		}
	}
	p, err := s.repo.Update(ctx, id, profilerepo.AdminUpdate{
		Role:           in.Role,
		RankID:         in.RankID,
		PersonalVolume: in.PersonalVolume,
		GroupVolume:    in.GroupVolume,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated by admin", zap.String("id", id))
	return p, nil
}

// GrantAdmin promotes the profile with email to the admin role.
func (s *Service) GrantAdmin(ctx context.Context, email string) (*domain.Profile, error) {
	p, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	role := domain.RoleAdmin
	return s.AdminUpdate(ctx, p.ID, AdminUpdateInput{Role: &role})
}

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomReferralCode() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return string(out), nil
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return domain.Invalid("password", fmt.Sprintf("must be at least %d characters", min))
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return domain.Invalid("password", "must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
