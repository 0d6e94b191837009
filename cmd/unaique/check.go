package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zllovesuki/unaique/auth"

	"github.com/spf13/cobra"
)

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check configuration and connectivity of every dependency",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*30)
			defer cancel()
			return a.check(ctx, cmd.OutOrStdout())
		},
	}
}

func status(w io.Writer, name string, err error) {
	if err != nil {
		fmt.Fprintf(w, "  %-16s FAILED (%s)\n", name, err)
		return
	}
	fmt.Fprintf(w, "  %-16s OK\n", name)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func (a *app) check(ctx context.Context, w io.Writer) error {
	fmt.Fprintln(w, "Unaique "+Version)
	fmt.Fprintln(w, strings.Repeat("=", 40))

	fmt.Fprintln(w, "\nConfiguration:")
	fmt.Fprintf(w, "  %-16s %s\n", "Environment", a.cfg.Environment)
	fmt.Fprintf(w, "  %-16s %s\n", "Store", a.cfg.StoreBackend)
	fmt.Fprintf(w, "  %-16s %s\n", "Webhook secret", configured(a.cfg.WebhookSecretConfigured()))
	fmt.Fprintf(w, "  %-16s %s\n", "n8n webhook", configured(a.cfg.N8NWebhookURL != ""))
	fmt.Fprintf(w, "  %-16s %s\n", "Sentry", configured(a.cfg.SentryDSN != ""))

	fmt.Fprintln(w, "\nDependencies:")

	var storeErr error
	s, err := a.openStores()
	if err == nil {
		storeErr = s.customers.Ping(ctx)
	} else {
		storeErr = err
	}
	status(w, "Record store", storeErr)

	if a.cfg.ClerkJWTKey != "" {
		_, err := auth.New(auth.Options{Logger: a.logger, PublicKeyPEM: a.cfg.ClerkJWTKey})
		status(w, "Clerk JWT key", err)
	}
	if a.cfg.RedisURI != "" {
		_, err := a.openLocker()
		status(w, "Redis", err)
	}
	if a.cfg.AMQPURI != "" {
		_, err := a.openPublisher()
		status(w, "AMQP", err)
	}

	return storeErr
}
