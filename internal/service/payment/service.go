// Package payment records payment intents and reconciles gateway
// notifications against them.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/gateway"
	"directsales/internal/logging"
	"directsales/internal/metrics"
	paymentrepo "directsales/internal/repository/payment"
)

type Service struct {
	repo    paymentrepo.Repository
	gateway gateway.Gateway
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func New(repo paymentrepo.Repository, gw gateway.Gateway, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gw,
		metrics: m,
		logger:  logging.OrNop(logger).Named("payment"),
		now:     time.Now,
	}
}

type InitiateInput struct {
	UserID    string
	OrderID   string
	Amount    decimal.Decimal
	Email     string
	FirstName string
	LastName  string
	ItemName  string
}

// Redirect is what the payer's browser posts to the hosted payment page.
type Redirect struct {
	Transaction *domain.PaymentTransaction `json:"transaction"`
	ProcessURL  string                     `json:"processUrl"`
	Fields      []gateway.Field            `json:"fields"`
}

// Initiate records an initiated transaction with the merchant credentials in
// force and returns the gateway payload. Nothing is returned unless the
// transaction was stored.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (*Redirect, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount", "must be greater than zero")
	}
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, domain.Invalid("orderId", "required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domain.Invalid("email", "required")
	}

	tx, err := s.repo.Create(ctx, domain.PaymentTransaction{
		UserID:        in.UserID,
		OrderID:       in.OrderID,
		Amount:        in.Amount,
		PaymentMethod: gateway.PaymentMethod,
		MerchantID:    s.gateway.MerchantID,
		MerchantKey:   s.gateway.MerchantKey,
		Status:        domain.PaymentInitiated,
	})
	if err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	s.metrics.PaymentInitiated()

	itemName := strings.TrimSpace(in.ItemName)
	if itemName == "" {
		itemName = "Order " + in.OrderID
	}
	return &Redirect{
		Transaction: tx,
		ProcessURL:  s.gateway.ProcessURL(),
		Fields: s.gateway.Form(*tx, gateway.Payer{
			Email:     email,
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
		}, itemName),
	}, nil
}

// HandleNotification applies a gateway callback. Malformed notifications
// wrap domain.ErrInvalidInput, an unknown correlator is domain.ErrNotFound.
// Redelivery of a resolved transaction returns a result with Applied false.
func (s *Service) HandleNotification(ctx context.Context, form url.Values) (*paymentrepo.Result, error) {
	n, err := gateway.ParseNotification(form)
	if err != nil {
		s.metrics.Callback(metrics.OutcomeRejected)
		s.logger.Warn("notification rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if _, err := uuid.Parse(n.PaymentID); err != nil {
		s.metrics.Callback(metrics.OutcomeNotFound)
		return nil, fmt.Errorf("transaction %q: %w", n.PaymentID, domain.ErrNotFound)
	}

	res, err := s.repo.ApplyResolution(ctx, paymentrepo.Resolution{
		TransactionID:    n.PaymentID,
		Status:           n.Status,
		GatewayPaymentID: n.GatewayPaymentID,
		AmountGross:      n.AmountGross,
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.Callback(metrics.OutcomeNotFound)
		return nil, fmt.Errorf("transaction %q: %w", n.PaymentID, err)
	case errors.Is(err, domain.ErrInvalidInput):
		s.metrics.Callback(metrics.OutcomeRejected)
		s.logger.Warn("notification rejected", zap.String("transaction_id", n.PaymentID), zap.Error(err))
		return nil, err
	case err != nil:
		s.metrics.Callback(metrics.OutcomeError)
		return nil, fmt.Errorf("apply notification: %w", err)
	}

	if !res.Applied && n.Succeeded() && res.Transaction.Status == domain.PaymentCancelled {
		// Money was captured for a transaction with no sale; needs manual follow-up.
		s.metrics.Callback(metrics.OutcomeLateCapture)
		s.logger.Warn("gateway completed a cancelled transaction",
			zap.String("transaction_id", n.PaymentID),
			zap.String("order_id", res.Transaction.OrderID),
			zap.String("gateway_payment_id", n.GatewayPaymentID),
		)
		return res, nil
	}
	if !res.Applied {
		s.metrics.Callback(metrics.OutcomeDuplicate)
		s.logger.Info("notification for resolved transaction",
			zap.String("transaction_id", n.PaymentID),
			zap.String("status", res.Transaction.Status),
			zap.String("received", n.RawStatus),
		)
		return res, nil
	}

	s.metrics.Callback(metrics.OutcomeApplied)
	fields := []zap.Field{
		zap.String("transaction_id", n.PaymentID),
		zap.String("status", n.Status),
	}
	if res.Sale != nil {
		s.metrics.SaleRecorded()
		fields = append(fields, zap.String("sale_id", res.Sale.ID), zap.Int64("pv", res.Sale.PersonalVolume))
	}
	if res.Promoted != nil {
		fields = append(fields, zap.String("promoted_to", res.Promoted.Name))
	}
	if len(res.UplinePromotions) > 0 {
		fields = append(fields, zap.Int("upline_promotions", len(res.UplinePromotions)))
	}
	s.logger.Info("notification applied", fields...)
	return res, nil
}

// Get returns a transaction owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.PaymentTransaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return tx, nil
}

func (s *Service) List(ctx context.Context, f paymentrepo.Filter) ([]domain.PaymentTransaction, int, error) {
	return s.repo.List(ctx, f)
}

// ExpireStale cancels transactions left initiated for longer than maxAge.
func (s *Service) ExpireStale(ctx context.Context, maxAge time.Duration) ([]string, error) {
	if maxAge <= 0 {
		return nil, domain.Invalid("olderThan", "must be positive")
	}
	return s.repo.ExpireStale(ctx, s.now().Add(-maxAge))
}
