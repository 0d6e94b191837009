package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/zllovesuki/unaique/session"

	"github.com/spf13/cobra"
)

func sessionCmd(a *app) *cobra.Command {
	var (
		server  string
		token   string
		dir     string
		refresh bool
		signOut bool
	)

	cmd := &cobra.Command{
		Use:   "session [email]",
		Short: "Materialize the signed in customer into the local session cache",
		Long: `Fetches the customer for email from a running server and caches it for a day
under the user cache directory. A fresh cached record is printed without a
request. The session token is read from --token or CLERK_SESSION_TOKEN.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = "http://localhost" + a.cfg.Addr
			}
			if token == "" {
				token = os.Getenv("CLERK_SESSION_TOKEN")
			}

			m, err := session.NewMaterializer(session.MaterializerOptions{
				Fetcher: &session.HTTPFetcher{
					BaseURL: server,
					Token: func(ctx context.Context) (string, error) {
						if token == "" {
							return "", fmt.Errorf("no session token, pass --token or set CLERK_SESSION_TOKEN")
						}
						return token, nil
					},
				},
				Cache:  session.NewCache(session.NewFileStorage(dir), session.SystemClock{}),
				Logger: a.logger,
			})
			if err != nil {
				return err
			}

			if signOut {
				if err := m.SignOut(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("email is required")
			}

			materialize := m.SignIn
			if refresh {
				materialize = m.Refresh
			}
			rec, err := materialize(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server base URL, defaults to the local server")
	cmd.Flags().StringVar(&token, "token", "", "Clerk session token")
	cmd.Flags().StringVar(&dir, "dir", "", "Cache directory, defaults to the user cache directory")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached record and fetch again")
	cmd.Flags().BoolVar(&signOut, "sign-out", false, "Clear the cached record")

	return cmd
}
