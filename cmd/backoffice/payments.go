package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"directsales/internal/gateway"
	"directsales/internal/metrics"
	paymentrepo "directsales/internal/repository/payment"
	paymentsvc "directsales/internal/service/payment"
)

func paymentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Payment maintenance",
	}
	cmd.AddCommand(paymentsExpireCmd(a))
	return cmd
}

func paymentsExpireCmd(a *app) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Cancel payments still open after --older-than, with their orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("older-than") {
				olderThan = a.cfg.PaymentExpiry
			}
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			svc := paymentsvc.New(paymentrepo.NewPostgres(a.pool, a.logger), gateway.Gateway{}, metrics.New(), a.logger)
			ids, err := svc.ExpireStale(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			a.logger.Info("expired payments", zap.Int("count", len(ids)), zap.Duration("older_than", olderThan))
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 72*time.Hour, "Age after which an open payment is cancelled (defaults to PAYMENT_EXPIRY)")
	return cmd
}
