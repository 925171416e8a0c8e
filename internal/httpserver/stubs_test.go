package httpserver

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"directsales/internal/domain"
	paymentrepo "directsales/internal/repository/payment"
	withdrawalrepo "directsales/internal/repository/withdrawal"
	"directsales/internal/session"
	accountsvc "directsales/internal/service/account"
	cartsvc "directsales/internal/service/cart"
	catalogsvc "directsales/internal/service/catalog"
	checkoutsvc "directsales/internal/service/checkout"
	dashboardsvc "directsales/internal/service/dashboard"
	ranksvc "directsales/internal/service/rank"
	withdrawalsvc "directsales/internal/service/withdrawal"
)

func logDiscard() *zap.Logger { return zap.NewNop() }

type stubAccounts struct {
	profile  *domain.Profile
	identity session.Identity
	signErr  error
	loginErr error
	authErr  error

	loggedOut string
}

func (s *stubAccounts) Signup(_ context.Context, _ accountsvc.SignupInput) (*domain.Profile, error) {
	return s.profile, s.signErr
}

func (s *stubAccounts) Login(_ context.Context, _, _ string) (*domain.Profile, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.profile, "access", nil
}

func (s *stubAccounts) Authenticate(_ context.Context, token string) (session.Identity, error) {
	if s.authErr != nil {
		return session.Identity{}, s.authErr
	}
	return s.identity, nil
}

func (s *stubAccounts) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return nil
}

func (s *stubAccounts) Me(_ context.Context, _ string) (*domain.Profile, error) {
	return s.profile, nil
}

func (s *stubAccounts) AccessTTLSeconds() int { return 3600 }

func (s *stubAccounts) List(_ context.Context, _, _ int) ([]domain.Profile, int, error) {
	return nil, 0, nil
}

func (s *stubAccounts) AdminUpdate(_ context.Context, _ string, _ accountsvc.AdminUpdateInput) (*domain.Profile, error) {
	return s.profile, nil
}

type stubCatalog struct{}

func (stubCatalog) List(context.Context, string, string) ([]domain.Product, error) { return nil, nil }
func (stubCatalog) Get(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (stubCatalog) Categories(context.Context) ([]string, error) { return nil, nil }
func (stubCatalog) Create(_ context.Context, in catalogsvc.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: "p-1", Name: in.Name, PriceCents: in.PriceCents}, nil
}
func (stubCatalog) Update(context.Context, string, catalogsvc.ProductInput) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (stubCatalog) Delete(context.Context, string) error { return nil }
func (stubCatalog) AdjustStock(context.Context, string, int) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

type stubCart struct{}

func (stubCart) Get(context.Context, string) (*cartsvc.View, error) { return &cartsvc.View{}, nil }
func (stubCart) Add(context.Context, string, cartsvc.AddInput) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}
func (stubCart) ChangeQuantity(context.Context, string, string, int) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}
func (stubCart) Remove(context.Context, string, string) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}
func (stubCart) Clear(context.Context, string) (*cartsvc.View, error) { return &cartsvc.View{}, nil }

type stubCheckout struct {
	err error
}

func (s stubCheckout) Checkout(context.Context, string) (*checkoutsvc.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &checkoutsvc.Result{Order: &domain.Order{ID: "o-1"}}, nil
}

type stubPayments struct {
	calls  int
	form   url.Values
	result *paymentrepo.Result
	err    error
}

func (s *stubPayments) HandleNotification(_ context.Context, form url.Values) (*paymentrepo.Result, error) {
	s.calls++
	s.form = form
	return s.result, s.err
}

func (s *stubPayments) Get(context.Context, string, string) (*domain.PaymentTransaction, error) {
	return nil, domain.ErrNotFound
}

func (s *stubPayments) List(context.Context, paymentrepo.Filter) ([]domain.PaymentTransaction, int, error) {
	return nil, 0, nil
}

type stubOrders struct{}

func (stubOrders) List(context.Context, string, int, int) ([]domain.Order, int, error) {
	return nil, 0, nil
}
func (stubOrders) ListMine(context.Context, string, int, int) ([]domain.Order, int, error) {
	return nil, 0, nil
}
func (stubOrders) Get(context.Context, string) (*domain.Order, error) { return nil, domain.ErrNotFound }
func (stubOrders) GetMine(context.Context, string, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

type stubRanks struct {
	reordered ranksvc.Direction
}

func (s *stubRanks) List(context.Context) ([]domain.Rank, error) { return nil, nil }
func (s *stubRanks) Get(context.Context, string) (*domain.Rank, error) {
	return nil, domain.ErrNotFound
}
func (s *stubRanks) Create(context.Context, ranksvc.Input) (*domain.Rank, error) {
	return &domain.Rank{ID: "r-1"}, nil
}
func (s *stubRanks) Update(context.Context, string, ranksvc.Input) (*domain.Rank, error) {
	return &domain.Rank{ID: "r-1"}, nil
}
func (s *stubRanks) Delete(context.Context, string) error { return domain.ErrConflict }
func (s *stubRanks) Reorder(_ context.Context, _ string, dir ranksvc.Direction) ([]domain.Rank, error) {
	s.reordered = dir
	return []domain.Rank{{ID: "r-1"}}, nil
}

type stubDashboard struct{}

func (stubDashboard) Dashboard(context.Context, string) (*dashboardsvc.Dashboard, error) {
	return &dashboardsvc.Dashboard{}, nil
}
func (stubDashboard) Referrals(context.Context, string) (*dashboardsvc.Referrals, error) {
	return &dashboardsvc.Referrals{}, nil
}

type stubWithdrawals struct {
	requestErr error
}

func (s stubWithdrawals) Request(context.Context, string, withdrawalsvc.RequestInput) (*domain.Withdrawal, error) {
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	return &domain.Withdrawal{ID: "w-1", Status: domain.WithdrawalPending}, nil
}
func (stubWithdrawals) ListMine(context.Context, string) ([]domain.Withdrawal, error) { return nil, nil }
func (stubWithdrawals) List(context.Context, withdrawalrepo.Filter) ([]domain.Withdrawal, int, error) {
	return nil, 0, nil
}
func (stubWithdrawals) Approve(_ context.Context, id, _ string) (*domain.Withdrawal, error) {
	return &domain.Withdrawal{ID: id, Status: domain.WithdrawalApproved}, nil
}
func (stubWithdrawals) Reject(context.Context, string, string) (*domain.Withdrawal, error) {
	return nil, domain.ErrConflict
}

// stubDeps returns a complete Deps whose account service is accounts.
func stubDeps(accounts *stubAccounts) Deps {
	return Deps{
		Accounts:    accounts,
		Catalog:     stubCatalog{},
		Cart:        stubCart{},
		Checkout:    stubCheckout{},
		Payments:    &stubPayments{result: &paymentrepo.Result{Applied: true}},
		Orders:      stubOrders{},
		Ranks:       &stubRanks{},
		Dashboard:   stubDashboard{},
		Withdrawals: stubWithdrawals{},
	}
}
