package main

import (
	"fmt"

	"github.com/zllovesuki/unaique/template"

	"github.com/spf13/cobra"
)

func seedTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-templates",
		Short: "Write the default video templates to the record store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStores()
			if err != nil {
				return err
			}
			locker, err := a.openLocker()
			if err != nil {
				return err
			}
			m, err := template.NewManager(template.ManagerOptions{
				Repository: s.templates,
				Locker:     locker,
				Logger:     a.logger,
			})
			if err != nil {
				return err
			}
			added, err := m.Seed(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d templates\n", len(added))
			return err
		},
	}
}
