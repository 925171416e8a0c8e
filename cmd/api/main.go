package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"directsales/internal/config"
	"directsales/internal/db"
	"directsales/internal/gateway"
	"directsales/internal/httpserver"
	"directsales/internal/logging"
	"directsales/internal/metrics"
	cartrepo "directsales/internal/repository/cart"
	commissionrepo "directsales/internal/repository/commission"
	orderrepo "directsales/internal/repository/order"
	paymentrepo "directsales/internal/repository/payment"
	productrepo "directsales/internal/repository/product"
	profilerepo "directsales/internal/repository/profile"
	rankrepo "directsales/internal/repository/rank"
	salerepo "directsales/internal/repository/sale"
	tokenrepo "directsales/internal/repository/token"
	withdrawalrepo "directsales/internal/repository/withdrawal"
	accountsvc "directsales/internal/service/account"
	cartsvc "directsales/internal/service/cart"
	catalogsvc "directsales/internal/service/catalog"
	checkoutsvc "directsales/internal/service/checkout"
	dashboardsvc "directsales/internal/service/dashboard"
	ordersvc "directsales/internal/service/order"
	paymentsvc "directsales/internal/service/payment"
	ranksvc "directsales/internal/service/rank"
	withdrawalsvc "directsales/internal/service/withdrawal"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	m := metrics.New()
	gw := gateway.Gateway{
		MerchantID:  cfg.Gateway.MerchantID,
		MerchantKey: cfg.Gateway.MerchantKey,
		TestMode:    cfg.Gateway.TestMode,
		ReturnURL:   cfg.Gateway.ReturnURL,
		CancelURL:   cfg.Gateway.CancelURL,
		NotifyURL:   cfg.Gateway.NotifyURL,
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	profileRepo := profilerepo.NewPostgres(dbpool, logger)
	rankRepo := rankrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	paymentRepo := paymentrepo.NewPostgres(dbpool, logger)
	saleRepo := salerepo.NewPostgres(dbpool, logger)
	commissionRepo := commissionrepo.NewPostgres(dbpool, logger)
	withdrawalRepo := withdrawalrepo.NewPostgres(dbpool, logger)

	paymentService := paymentsvc.New(paymentRepo, gw, m, logger)
	accountService := accountsvc.New(profileRepo, cfg.Auth.Secret, cfg.Auth.AccessTTL, logger).
		WithRevocations(tokenrepo.NewPostgres(dbpool, logger))

	srv, err := httpserver.New(cfg.HTTPAddr, httpserver.Timeouts{
		Read:  cfg.ReadTimeout,
		Write: cfg.WriteTimeout,
		Idle:  cfg.IdleTimeout,
	}, logger, dbpool, httpserver.Deps{
		Accounts:       accountService,
		Catalog:        catalogsvc.New(productRepo, logger),
		Cart:           cartsvc.New(cartRepo, productRepo),
		Checkout:       checkoutsvc.New(cartRepo, orderRepo, profileRepo, paymentService, logger),
		Payments:       paymentService,
		Orders:         ordersvc.New(orderRepo),
		Ranks:          ranksvc.New(rankRepo, logger),
		Dashboard:      dashboardsvc.New(profileRepo, rankRepo, saleRepo, commissionRepo, withdrawalRepo),
		Withdrawals:    withdrawalsvc.New(withdrawalRepo, logger),
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepExpiredPayments(sweepCtx, logger, paymentService, cfg.PaymentExpiry)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// sweepExpiredPayments cancels abandoned payments once an hour. A zero
// maxAge disables the sweep; the backoffice command can still run it.
func sweepExpiredPayments(ctx context.Context, logger *zap.Logger, payments *paymentsvc.Service, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := payments.ExpireStale(ctx, maxAge)
			if err != nil {
				logger.Error("payment expiry sweep", zap.Error(err))
				continue
			}
			if len(ids) > 0 {
				logger.Info("expired stale payments", zap.Int("count", len(ids)))
			}
		}
	}
}
