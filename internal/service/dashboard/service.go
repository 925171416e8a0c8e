// Package dashboard assembles the signed-in user's performance views.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"directsales/internal/domain"
	"directsales/internal/rankladder"
	salerepo "directsales/internal/repository/sale"
)

// ChartMonths is how many months the sales chart covers, current included.
const ChartMonths = 6

type profileRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	DirectDownline(ctx context.Context, id string) ([]domain.Profile, error)
	DownlineSize(ctx context.Context, id string) (int, error)
}

type rankRepo interface {
	List(ctx context.Context) ([]domain.Rank, error)
}

type saleRepo interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Sale, error)
	TotalsByUser(ctx context.Context, userID string) (salerepo.Totals, error)
	Monthly(ctx context.Context, userID string, since time.Time) ([]salerepo.MonthPoint, error)
}

type commissionRepo interface {
	ListByEarner(ctx context.Context, earnerID string, limit int) ([]domain.Commission, error)
	Earned(ctx context.Context, earnerID string) (decimal.Decimal, error)
}

type balanceRepo interface {
	Available(ctx context.Context, userID string) (decimal.Decimal, error)
}

type Service struct {
	profiles    profileRepo
	ranks       rankRepo
	sales       saleRepo
	commissions commissionRepo
	balances    balanceRepo
	now         func() time.Time
}

func New(profiles profileRepo, ranks rankRepo, sales saleRepo, commissions commissionRepo, balances balanceRepo) *Service {
	return &Service{
		profiles:    profiles,
		ranks:       ranks,
		sales:       sales,
		commissions: commissions,
		balances:    balances,
		now:         time.Now,
	}
}

type ChartPoint struct {
	Label  string `json:"label"`
	Month  string `json:"month"`
	Amount string `json:"amount"`
	Volume int64  `json:"volume"`
}

type Balance struct {
	Earned    string `json:"earned"`
	Available string `json:"available"`
}

type Dashboard struct {
	Profile           *domain.Profile     `json:"profile"`
	Progress          rankladder.Progress `json:"rankProgress"`
	SalesCount        int                 `json:"salesCount"`
	SalesTotal        string              `json:"salesTotal"`
	Chart             []ChartPoint        `json:"chart"`
	Balance           Balance             `json:"balance"`
	TeamSize          int                 `json:"teamSize"`
	RecentSales       []domain.Sale       `json:"recentSales"`
	RecentCommissions []domain.Commission `json:"recentCommissions"`
}

func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ranks, err := s.ranks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ranks: %w", err)
	}
	totals, err := s.sales.TotalsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}
	now := s.now()
	since := monthStart(now).AddDate(0, -(ChartMonths - 1), 0)
	points, err := s.sales.Monthly(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	recent, err := s.sales.ListByUser(ctx, userID, 5)
	if err != nil {
		return nil, fmt.Errorf("recent sales: %w", err)
	}
	commissions, err := s.commissions.ListByEarner(ctx, userID, 5)
	if err != nil {
		return nil, fmt.Errorf("recent commissions: %w", err)
	}
	earned, err := s.commissions.Earned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("earned commissions: %w", err)
	}
	available, err := s.balances.Available(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("available balance: %w", err)
	}

	if recent == nil {
		recent = []domain.Sale{}
	}
	if commissions == nil {
		commissions = []domain.Commission{}
	}
	return &Dashboard{
		Profile:           profile,
		Progress:          rankladder.New(ranks).Progress(profile.Rank, profile.PersonalVolume),
		SalesCount:        totals.Count,
		SalesTotal:        totals.Amount.StringFixed(2),
		Chart:             ChartSeries(points, now, ChartMonths),
		Balance:           Balance{Earned: earned.StringFixed(2), Available: available.StringFixed(2)},
		TeamSize:          profile.TeamSize,
		RecentSales:       recent,
		RecentCommissions: commissions,
	}, nil
}

// ChartSeries lays points onto the last n calendar months ending with now's
// month, oldest first. Months without sales are zero.
func ChartSeries(points []salerepo.MonthPoint, now time.Time, n int) []ChartPoint {
	byMonth := make(map[string]salerepo.MonthPoint, len(points))
	for _, p := range points {
		byMonth[p.Month.UTC().Format("2006-01")] = p
	}
	start := monthStart(now).AddDate(0, -(n - 1), 0)
	out := make([]ChartPoint, 0, n)
	for i := 0; i < n; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		cp := ChartPoint{Label: m.Format("Jan"), Month: key, Amount: "0.00"}
		if p, ok := byMonth[key]; ok {
			cp.Amount = p.Amount.StringFixed(2)
			cp.Volume = p.Volume
		}
		out = append(out, cp)
	}
	return out
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

type Member struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PersonalVolume int64     `json:"personalVolume"`
	RankName       string    `json:"rankName,omitempty"`
	TeamSize       int       `json:"teamSize"`
	JoinedAt       time.Time `json:"joinedAt"`
}

type Referrals struct {
	ReferralCode  string   `json:"referralCode"`
	Direct        []Member `json:"direct"`
	TotalDownline int      `json:"totalDownline"`
}

func (s *Service) Referrals(ctx context.Context, userID string) (*Referrals, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	direct, err := s.profiles.DirectDownline(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("direct downline: %w", err)
	}
	total, err := s.profiles.DownlineSize(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("downline size: %w", err)
	}

	members := make([]Member, 0, len(direct))
	for _, p := range direct {
		m := Member{
			ID:             p.ID,
			Name:           strings.TrimSpace(p.FirstName + " " + p.LastName),
			Email:          p.Email,
			PersonalVolume: p.PersonalVolume,
			TeamSize:       p.TeamSize,
			JoinedAt:       p.CreatedAt,
		}
		if p.Rank != nil {
			m.RankName = p.Rank.Name
		}
		members = append(members, m)
	}
	return &Referrals{ReferralCode: profile.ReferralCode, Direct: members, TotalDownline: total}, nil
}
