// Package checkout turns a cart into an order and starts its payment.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/logging"
	"directsales/internal/pricing"
	paymentsvc "directsales/internal/service/payment"
)

type cartRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

type profileRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

type payments interface {
	Initiate(ctx context.Context, in paymentsvc.InitiateInput) (*paymentsvc.Redirect, error)
}

type Service struct {
	carts    cartRepo
	orders   orderRepo
	profiles profileRepo
	payments payments
	logger   *zap.Logger
	now      func() time.Time
}

func New(carts cartRepo, orders orderRepo, profiles profileRepo, payments payments, logger *zap.Logger) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		profiles: profiles,
		payments: payments,
		logger:   logging.OrNop(logger).Named("checkout"),
		now:      time.Now,
	}
}

// Result is the placed order and where to send the payer.
type Result struct {
	Order    *domain.Order        `json:"order"`
	Summary  pricing.Summary      `json:"summary"`
	Redirect *paymentsvc.Redirect `json:"payment"`
}

// Checkout prices the user's cart at the VAT rate, records a pending order
// and initiates its payment. If initiation fails the order is cancelled.
func (s *Service) Checkout(ctx context.Context, userID string) (*Result, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.Invalid("cart", "is empty")
	}

	totals := pricing.Calculate(pricing.LinesFromCart(items), pricing.VATRate)
	if !totals.Total.IsPositive() {
		return nil, domain.Invalid("cart", "total must be greater than zero")
	}

	order, err := s.orders.Create(ctx, domain.Order{
		OrderNumber: s.orderNumber(),
		UserID:      userID,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		Total:       totals.Total,
		TaxRate:     totals.Rate,
		Status:      domain.OrderPending,
		Items:       orderItems(items),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	redirect, err := s.payments.Initiate(ctx, paymentsvc.InitiateInput{
		UserID:    userID,
		OrderID:   order.ID,
		Amount:    totals.Total,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		ItemName:  "Order " + order.OrderNumber,
	})
	if err != nil {
		if _, cerr := s.orders.UpdateStatus(ctx, order.ID, domain.OrderCancelled); cerr != nil {
			s.logger.Error("cancel order after failed initiation", zap.String("order_id", order.ID), zap.Error(cerr))
		}
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", totals.Total.StringFixed(2)),
	)
	return &Result{Order: order, Summary: totals.Display(), Redirect: redirect}, nil
}

func (s *Service) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

func orderItems(items []domain.CartItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		var price int64
		if it.Snapshot.PriceCents != nil {
			price = *it.Snapshot.PriceCents
		}
		out = append(out, domain.OrderItem{
			ProductID:  it.ProductID,
			Name:       it.Snapshot.Name,
			PriceCents: price,
			VPPoints:   it.Snapshot.VPPoints,
			Quantity:   it.Quantity,
		})
	}
	return out
}
