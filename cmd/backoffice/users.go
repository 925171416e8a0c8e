package main

import (
	"fmt"

	"github.com/spf13/cobra"

	profilerepo "directsales/internal/repository/profile"
	tokenrepo "directsales/internal/repository/token"
	accountsvc "directsales/internal/service/account"
)

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User administration",
	}
	cmd.AddCommand(usersGrantAdminCmd(a))
	cmd.AddCommand(usersPruneTokensCmd(a))
	return cmd
}

func (a *app) accounts() *accountsvc.Service {
	return accountsvc.New(profilerepo.NewPostgres(a.pool, a.logger), a.cfg.Auth.Secret, a.cfg.Auth.AccessTTL, a.logger).
		WithRevocations(tokenrepo.NewPostgres(a.pool, a.logger))
}

func usersGrantAdminCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give an existing user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.accounts().GrantAdmin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", p.Email, p.ID, p.Role)
			return nil
		},
	}
}

func usersPruneTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Forget logged-out tokens that have since expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.accounts().PruneRevocations(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d revoked tokens\n", n)
			return nil
		},
	}
}
