package main

import (
	"encoding/json"

	"github.com/zllovesuki/unaique/customer"

	"github.com/spf13/cobra"
)

func syncUserCmd(a *app) *cobra.Command {
	var in customer.SyncInput
	var asNew bool

	cmd := &cobra.Command{
		Use:   "sync-user",
		Short: "Reconcile one identity provider user into the customer table",
		Long: `Runs the same find-or-create-or-update the webhook runs for user.updated.
With --new it runs the user.created path, which refuses a phone number that
already belongs to another customer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStores()
			if err != nil {
				return err
			}
			locker, err := a.openLocker()
			if err != nil {
				return err
			}
			m, err := a.customerManager(s, locker)
			if err != nil {
				return err
			}

			run := m.Sync
			if asNew {
				run = m.SyncNew
			}
			res, err := run(cmd.Context(), in)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "Primary email address")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVarP(&in.Phone, "phone", "p", "", "Phone number")
	cmd.Flags().BoolVar(&asNew, "new", false, "Treat the user as newly created")
	cmd.MarkFlagRequired("email")

	return cmd
}
