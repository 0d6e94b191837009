package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zllovesuki/unaique/auth"
	"github.com/zllovesuki/unaique/customer"
	"github.com/zllovesuki/unaique/idea"
	"github.com/zllovesuki/unaique/order"
	"github.com/zllovesuki/unaique/pipeline"
	"github.com/zllovesuki/unaique/session"
	"github.com/zllovesuki/unaique/template"
	"github.com/zllovesuki/unaique/webhook"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook and dashboard APIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			handler, err := a.router()
			if err != nil {
				return err
			}
			return a.listen(handler)
		},
	}
}

func (a *app) router() (http.Handler, error) {
	logger := a.logger

	if !a.cfg.WebhookSecretConfigured() {
		logger.Warn("CLERK_WEBHOOK_SECRET is not set, webhooks will be rejected")
	}
	if a.cfg.N8NWebhookURL == "" {
		logger.Warn("N8N_WEBHOOK_URL is not set, pipeline triggers will be rejected")
	}

	s, err := a.openStores()
	if err != nil {
		return nil, err
	}
	locker, err := a.openLocker()
	if err != nil {
		return nil, err
	}
	publisher, err := a.openPublisher()
	if err != nil {
		return nil, err
	}

	authenticator, err := auth.New(auth.Options{
		Logger:       logger,
		PublicKeyPEM: a.cfg.ClerkJWTKey,
	})
	if err != nil {
		return nil, err
	}

	customerManager, err := a.customerManager(s, locker)
	if err != nil {
		return nil, err
	}
	templateManager, err := template.NewManager(template.ManagerOptions{
		Repository: s.templates,
		Locker:     locker,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	ideaManager, err := idea.NewManager(idea.ManagerOptions{
		Repository: s.ideas,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	orderManager, err := order.NewManager(order.ManagerOptions{
		Repository: s.orders,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	webhookRouter, err := webhook.NewService(webhook.Options{
		Verifier:        webhook.NewVerifier(a.cfg.ClerkWebhookSecret),
		CustomerManager: customerManager,
		Publisher:       publisher,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	sessionRouter, err := session.NewService(session.Options{
		Auth:            authenticator,
		CustomerManager: customerManager,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	pipelineRouter, err := pipeline.NewService(pipeline.Options{
		Auth: authenticator,
		Trigger: pipeline.NewTrigger(pipeline.TriggerOptions{
			URL:    a.cfg.N8NWebhookURL,
			APIKey: a.cfg.N8NAPIKey,
		}),
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	templateRouter, err := template.NewService(template.Options{
		Auth:            authenticator,
		TemplateManager: templateManager,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	ideaRouter, err := idea.NewService(idea.Options{
		Auth:        authenticator,
		IdeaManager: ideaManager,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	orderRouter, err := order.NewService(order.Options{
		Auth:         authenticator,
		OrderManager: orderManager,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	healthRouter, err := customer.NewService(customer.Options{
		CustomerManager: customerManager,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	rootRouter := chi.NewRouter()
	rootRouter.Use(middleware.RequestID)
	rootRouter.Use(middleware.RealIP)
	rootRouter.Use(middleware.Recoverer)
	rootRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization",
			"Content-Type",
			webhook.HeaderID,
			webhook.HeaderTimestamp,
			webhook.HeaderSignature,
		},
		ExposedHeaders:   []string{"X-Customer-ID", "X-Customer-Email", "X-Clerk-User-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rootRouter.Route("/api", func(r chi.Router) {
		r.Mount("/webhooks", webhookRouter.Router())
		r.Mount("/auth", sessionRouter.Router())
		r.Mount("/n8n", pipelineRouter.Router())
		r.Mount("/templates", templateRouter.Router())
		r.Mount("/content-ideas", ideaRouter.Router())
		r.Mount("/orders", orderRouter.OrdersRouter())
		r.Mount("/projects", orderRouter.ProjectsRouter())
		r.Mount("/health", healthRouter.Router())
	})

	return rootRouter, nil
}

func (a *app) listen(handler http.Handler) error {
	srv := &http.Server{
		Handler:      handler,
		Addr:         a.cfg.Addr,
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 120,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Listening",
			zap.String("Addr", a.cfg.Addr),
			zap.String("Backend", string(a.cfg.StoreBackend)),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
