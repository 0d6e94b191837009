package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zllovesuki/unaique/webhook"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func sendTestWebhookCmd(a *app) *cobra.Command {
	var (
		target    string
		eventType string
		user      webhook.User
		email     string
		phone     string
	)

	cmd := &cobra.Command{
		Use:   "send-test-webhook",
		Short: "Sign a Clerk user event with CLERK_WEBHOOK_SECRET and post it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.WebhookSecretConfigured() {
				return fmt.Errorf("CLERK_WEBHOOK_SECRET is not set")
			}
			if target == "" {
				target = "http://localhost" + a.cfg.Addr + "/api/webhooks/clerk"
			}
			if user.ID == "" {
				user.ID = "user_" + strings.ReplaceAll(uuid.New().String(), "-", "")
			}
			if email != "" {
				user.PrimaryEmailAddressID = "idn_primary"
				user.EmailAddresses = []webhook.EmailAddress{{ID: "idn_primary", EmailAddress: email}}
			}
			if phone != "" {
				user.PhoneNumbers = []webhook.PhoneNumber{{ID: "idn_phone", PhoneNumber: phone}}
			}

			payload, err := webhook.EncodeUserEvent(eventType, user)
			if err != nil {
				return err
			}
			headers, err := webhook.Sign(a.cfg.ClerkWebhookSecret, "msg_"+uuid.New().String(), time.Now(), payload)
			if err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, target, bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header = headers
			req.Header.Set("Content-Type", "application/json")

			client := &http.Client{Timeout: time.Second * 30}
			res, err := client.Do(req)
			if err != nil {
				return err
			}
			defer res.Body.Close()
			body, _ := io.ReadAll(res.Body)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", eventType, user.ID)
			fmt.Fprintf(out, "HTTP %d: %s\n", res.StatusCode, body)
			for _, h := range []string{"X-Customer-ID", "X-Customer-Email", "X-Clerk-User-ID"} {
				if v := res.Header.Get(h); v != "" {
					fmt.Fprintf(out, "%s: %s\n", h, v)
				}
			}
			if res.StatusCode >= 300 {
				return fmt.Errorf("webhook rejected with HTTP %d", res.StatusCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "url", "", "Webhook endpoint, defaults to the local server")
	cmd.Flags().StringVarP(&eventType, "type", "t", webhook.EventUserCreated, "Event type")
	cmd.Flags().StringVar(&user.ID, "id", "", "Clerk user id, random when empty")
	cmd.Flags().StringVar(&user.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&user.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Primary email address")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "Phone number")

	return cmd
}
