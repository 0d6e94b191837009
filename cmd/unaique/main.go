package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time injected variables
var (
	Version = "dev"
)

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "unaique",
		Short:        "Unaique customer sync service and operator tools",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Name())
		},
	}

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(syncUserCmd(a))
	rootCmd.AddCommand(checkCmd(a))
	rootCmd.AddCommand(sendTestWebhookCmd(a))
	rootCmd.AddCommand(sessionCmd(a))
	rootCmd.AddCommand(seedTemplatesCmd(a))

	err := rootCmd.Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
