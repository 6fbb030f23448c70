// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/domain/ports/adapter"
	pg "course-marketplace/internal/infra/db/postgres"
	"course-marketplace/internal/infra/logging"
	mailinfra "course-marketplace/internal/infra/mail"
	"course-marketplace/internal/infra/metrics"
	payinfra "course-marketplace/internal/infra/payment"
	red "course-marketplace/internal/infra/redis"
	"course-marketplace/internal/infra/sched"
	"course-marketplace/internal/infra/security"
	supportinfra "course-marketplace/internal/infra/support"
	"course-marketplace/internal/infra/web"
	"course-marketplace/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption service init failed")
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	orderRepo := pg.NewOrderRepo(pool)
	txnRepo := pg.NewTransactionRepo(pool)
	invoiceRepo := pg.NewInvoiceRepo(pool)
	enrollRepo := pg.NewEnrollmentRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	profileRepo := pg.NewCustomerProfileRepo(pool)
	courseRepo := pg.NewCourseRepoCacheDecorator(pg.NewCourseRepo(pool), redisClient, cfg.Redis.TTL)

	// ---- Payment providers ----
	providers := map[string]adapter.PaymentProvider{}
	if cfg.Payment.Stripe.SecretKey != "" {
		stripeGW := payinfra.NewStripeGateway(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.WebhookSecret, cfg.Payment.Currency)
		providers[stripeGW.Name()] = stripeGW
	}
	if cfg.Payment.PayPal.ClientID != "" {
		paypalGW := payinfra.NewPayPalGateway(
			cfg.Payment.PayPal.ClientID, cfg.Payment.PayPal.ClientSecret,
			cfg.Payment.PayPal.WebhookID, cfg.Payment.Currency, cfg.Payment.PayPal.Sandbox)
		providers[paypalGW.Name()] = paypalGW
	}
	if len(providers) == 0 {
		logger.Fatal().Msg("no payment provider configured")
	}

	// ---- Mailer ----
	var mailer adapter.Mailer
	if cfg.Mail.Host != "" {
		mailer, err = mailinfra.NewSMTPMailer(&cfg.Mail, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("mailer init failed")
		}
	} else {
		mailer = mailinfra.NewNoopMailer(logger)
	}

	// ---- Support assistant (optional) ----
	var assistant adapter.Assistant
	if cfg.Support.OpenAIKey != "" {
		assistant, err = supportinfra.NewOpenAIAssistant(cfg.Support.OpenAIKey, cfg.Support.Model, cfg.Support.TokenBudget)
		if err != nil {
			logger.Fatal().Err(err).Msg("assistant init failed")
		}
		answerCache := red.NewContentCache(redisClient, cfg.Redis.TTL, logger)
		assistant = supportinfra.NewCachedAssistant(assistant, answerCache)
	}

	// ---- Use cases ----
	couponUC := usecase.NewCouponUseCase(couponRepo, logger)
	enrollUC := usecase.NewEnrollmentUseCase(enrollRepo, courseRepo, logger)
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, courseRepo, logger)
	paymentUC := usecase.NewPaymentUseCase(orderRepo, txnRepo, userRepo, invoiceUC, enrollUC, providers, mailer, tm, cfg.Payment.Currency, logger)
	checkoutUC := usecase.NewCheckoutUseCase(orderRepo, userRepo, courseRepo, couponUC, paymentUC, providers, tm, cfg.HTTP.SuccessURL, cfg.HTTP.CancelURL, logger)
	refundUC := usecase.NewRefundUseCase(orderRepo, txnRepo, enrollUC, providers, tm, cfg.Payment.Currency, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, invoiceRepo)
	statsUC := usecase.NewStatsUseCase(userRepo, enrollRepo, txnRepo)
	supportUC := usecase.NewSupportUseCase(usecase.DefaultIntentRules(), assistant, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo, encSvc, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.HTTP.JWTSecret, cfg.HTTP.SessionTTL)
	srv := web.NewServer(checkoutUC, paymentUC, refundUC, orderUC, statsUC, supportUC, profileUC, providers, auth, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Order reconciler ----
	reconciler := sched.NewOrderReconciler(paymentUC, orderRepo, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
