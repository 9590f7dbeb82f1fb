package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage monitored accounts",
	}

	cmd.AddCommand(newAccountsAddCmd(), newAccountsListCmd())
	return cmd
}

func newAccountsAddCmd() *cobra.Command {
	var (
		id     string
		name   string
		domain string
		owner  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" || name == "" {
				return fmt.Errorf("both --id and --name are required")
			}

			return withDeps(func(d *Deps) error {
				account := &entities.Account{
					ID:          id,
					TenantID:    d.TenantID,
					Name:        name,
					Domain:      domain,
					OwnerUserID: owner,
					CreatedAt:   time.Now().UTC(),
				}
				if err := d.Store.SaveAccount(cmd.Context(), account); err != nil {
					return fmt.Errorf("saving account: %w", err)
				}
				fmt.Printf("Account %s (%s) saved\n", account.ID, account.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Account identifier")
	cmd.Flags().StringVar(&name, "name", "", "Account display name")
	cmd.Flags().StringVar(&domain, "domain", "", "Account web domain")
	cmd.Flags().StringVar(&owner, "owner", "", "Owning account manager's user id")

	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				accounts, err := d.Store.ListAccounts(cmd.Context(), d.TenantID)
				if err != nil {
					return fmt.Errorf("listing accounts: %w", err)
				}

				if len(accounts) == 0 {
					fmt.Println("No accounts found. Add one with 'pulse accounts add'.")
					return nil
				}

				for _, account := range accounts {
					fmt.Printf("%s  %s", account.ID, account.Name)
					if account.Domain != "" {
						fmt.Printf("  (%s)", account.Domain)
					}
					if account.OwnerUserID != "" {
						fmt.Printf("  owner=%s", account.OwnerUserID)
					}
					fmt.Println()
				}
				return nil
			})
		},
	}
}
