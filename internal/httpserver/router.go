package httpserver

import (
	"context"
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/metrics"
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

const notifyPath = "/payments/notify"

type AccountService interface {
	Signup(ctx context.Context, in accountsvc.SignupInput) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*domain.Profile, string, error)
	Authenticate(ctx context.Context, token string) (session.Identity, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID string) (*domain.Profile, error)
	AccessTTLSeconds() int
	List(ctx context.Context, limit, offset int) ([]domain.Profile, int, error)
	AdminUpdate(ctx context.Context, id string, in accountsvc.AdminUpdateInput) (*domain.Profile, error)
}

type CatalogService interface {
	List(ctx context.Context, category, search string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, in catalogsvc.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in catalogsvc.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
}

type CartService interface {
	Get(ctx context.Context, userID string) (*cartsvc.View, error)
	Add(ctx context.Context, userID string, in cartsvc.AddInput) (*cartsvc.View, error)
	ChangeQuantity(ctx context.Context, userID, itemID string, quantity int) (*cartsvc.View, error)
	Remove(ctx context.Context, userID, itemID string) (*cartsvc.View, error)
	Clear(ctx context.Context, userID string) (*cartsvc.View, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*checkoutsvc.Result, error)
}

type PaymentService interface {
	HandleNotification(ctx context.Context, form url.Values) (*paymentrepo.Result, error)
	Get(ctx context.Context, userID, id string) (*domain.PaymentTransaction, error)
	List(ctx context.Context, f paymentrepo.Filter) ([]domain.PaymentTransaction, int, error)
}

type OrderService interface {
	List(ctx context.Context, status string, limit, offset int) ([]domain.Order, int, error)
	ListMine(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	GetMine(ctx context.Context, userID, id string) (*domain.Order, error)
}

type RankService interface {
	List(ctx context.Context) ([]domain.Rank, error)
	Get(ctx context.Context, id string) (*domain.Rank, error)
	Create(ctx context.Context, in ranksvc.Input) (*domain.Rank, error)
	Update(ctx context.Context, id string, in ranksvc.Input) (*domain.Rank, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, id string, dir ranksvc.Direction) ([]domain.Rank, error)
}

type DashboardService interface {
	Dashboard(ctx context.Context, userID string) (*dashboardsvc.Dashboard, error)
	Referrals(ctx context.Context, userID string) (*dashboardsvc.Referrals, error)
}

type WithdrawalService interface {
	Request(ctx context.Context, userID string, in withdrawalsvc.RequestInput) (*domain.Withdrawal, error)
	ListMine(ctx context.Context, userID string) ([]domain.Withdrawal, error)
	List(ctx context.Context, f withdrawalrepo.Filter) ([]domain.Withdrawal, int, error)
	Approve(ctx context.Context, id, note string) (*domain.Withdrawal, error)
	Reject(ctx context.Context, id, note string) (*domain.Withdrawal, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Accounts    AccountService
	Catalog     CatalogService
	Cart        CartService
	Checkout    CheckoutService
	Payments    PaymentService
	Orders      OrderService
	Ranks       RankService
	Dashboard   DashboardService
	Withdrawals WithdrawalService

	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.Accounts == nil:
		return errors.New("accounts service required")
	case d.Catalog == nil:
		return errors.New("catalog service required")
	case d.Cart == nil:
		return errors.New("cart service required")
	case d.Checkout == nil:
		return errors.New("checkout service required")
	case d.Payments == nil:
		return errors.New("payments service required")
	case d.Orders == nil:
		return errors.New("orders service required")
	case d.Ranks == nil:
		return errors.New("ranks service required")
	case d.Dashboard == nil:
		return errors.New("dashboard service required")
	case d.Withdrawals == nil:
		return errors.New("withdrawals service required")
	}
	return nil
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	h := &handlers{deps: deps, logger: logger}

	router := gin.New()
	router.Use(accessLog(logger), gin.Recovery(), corsByPath(deps.AllowedOrigins))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", deps.Metrics.Handler())
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.Any(notifyPath, h.paymentNotify)

	router.POST("/auth/signup", h.signup)
	router.POST("/auth/login", h.login)

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)
	router.GET("/ranks", h.listRanks)

	authed := router.Group("/", authMiddleware(deps.Accounts))
	authed.POST("/auth/logout", h.logout)
	authed.GET("/me", h.me)
	authed.GET("/me/dashboard", h.dashboard)
	authed.GET("/me/referrals", h.referrals)

	authed.GET("/cart", h.getCart)
	authed.POST("/cart/items", h.addCartItem)
	authed.PATCH("/cart/items/:id", h.changeCartItem)
	authed.DELETE("/cart/items/:id", h.removeCartItem)
	authed.DELETE("/cart", h.clearCart)

	authed.POST("/checkout", h.checkout)
	authed.GET("/orders", h.listMyOrders)
	authed.GET("/orders/:id", h.getMyOrder)
	authed.GET("/payments/:id", h.getMyPayment)

	authed.GET("/withdrawals", h.listMyWithdrawals)
	authed.POST("/withdrawals", h.requestWithdrawal)

	admin := authed.Group("/admin", requireAdmin())
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/:id/stock", h.adjustStock)

	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/:id", h.adminGetOrder)

	admin.GET("/customers", h.adminListCustomers)
	admin.PATCH("/customers/:id", h.adminUpdateCustomer)

	admin.GET("/payments", h.adminListPayments)

	admin.GET("/withdrawals", h.adminListWithdrawals)
	admin.POST("/withdrawals/:id/approve", h.approveWithdrawal)
	admin.POST("/withdrawals/:id/reject", h.rejectWithdrawal)

	admin.GET("/ranks", h.listRanks)
	admin.POST("/ranks", h.createRank)
	admin.GET("/ranks/:id", h.getRank)
	admin.PUT("/ranks/:id", h.updateRank)
	admin.DELETE("/ranks/:id", h.deleteRank)
	admin.POST("/ranks/:id/reorder", h.reorderRank)

	return router, nil
}
