package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"directsales/internal/domain"
	rankrepo "directsales/internal/repository/rank"
	ranksvc "directsales/internal/service/rank"
)

func ranksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "Inspect and reorder the rank ladder",
	}
	cmd.AddCommand(ranksListCmd(a))
	cmd.AddCommand(ranksReorderCmd(a))
	return cmd
}

func ranksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the ladder from lowest to highest rung",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := ranksvc.New(rankrepo.NewPostgres(a.pool, a.logger), a.logger)
			ranks, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			printRanks(cmd, ranks)
			return nil
		},
	}
}

func ranksReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <rank-id> up|down",
		Short: "Swap a rank's thresholds with its neighbour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ranksvc.ParseDirection(args[1])
			if err != nil {
				return err
			}
			svc := ranksvc.New(rankrepo.NewPostgres(a.pool, a.logger), a.logger)
			ranks, err := svc.Reorder(cmd.Context(), args[0], dir)
			if err != nil {
				return err
			}
			printRanks(cmd, ranks)
			return nil
		},
	}
}

func printRanks(cmd *cobra.Command, ranks []domain.Rank) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tRATE\tPV\tGV")
	for i, r := range ranks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f%%\t%d\t%d\n", i+1, r.ID, r.Name, r.CommissionRate, r.ThresholdPV, r.ThresholdGV)
	}
	_ = w.Flush()
}
