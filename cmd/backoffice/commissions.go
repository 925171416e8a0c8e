package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	commissionrepo "directsales/internal/repository/commission"
)

func commissionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commissions",
		Short: "Commission reporting",
	}
	cmd.AddCommand(commissionsReportCmd(a))
	return cmd
}

func commissionsReportCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Total commissions per earner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var since time.Time
			if days > 0 {
				since = time.Now().AddDate(0, 0, -days)
			}
			totals, err := commissionrepo.NewPostgres(a.pool, a.logger).Report(cmd.Context(), since)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EARNER\tEMAIL\tCOUNT\tAMOUNT")
			sum := decimal.Zero
			for _, t := range totals {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.EarnerID, t.Email, t.Count, t.Amount.StringFixed(2))
				sum = sum.Add(t.Amount)
			}
			fmt.Fprintf(w, "\t\t\t%s\n", sum.StringFixed(2))
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Only count commissions from the last N days (0 for all time)")
	return cmd
}
