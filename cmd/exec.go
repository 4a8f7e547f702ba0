package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"event-ticketing/config"
	"event-ticketing/internal/handlers"
	"event-ticketing/internal/services"
	"event-ticketing/internal/services/bank"
	"event-ticketing/internal/services/bank/paystack"
	"event-ticketing/internal/status"
	"event-ticketing/internal/store"
	"event-ticketing/monitoring"
	"event-ticketing/security"
	"event-ticketing/utils"

	_ "event-ticketing/migrations"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize Redis
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := utils.NewRedisClient(ctx, cfg.RedisURL, utils.RedisPool{
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
		MaxRetries:   cfg.RedisMaxRetries,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var monitor *monitoring.Monitor
	if cfg.EnableMetrics {
		monitor = monitoring.NewMonitor(redisClient, cfg.MetricsInterval)
		go monitor.Run(ctx)
	}

	geo, err := services.NewGeoIPLocator(cfg.GeoIPDatabase)
	if err != nil {
		// sessions still work, locations are reported as Unknown
		slog.Warn("geoip database unavailable", "path", cfg.GeoIPDatabase, "error", err)
		geo, _ = services.NewGeoIPLocator("")
	}
	defer geo.Close()

	gateway, err := newGateway(cfg, monitor)
	if err != nil {
		return err
	}

	// Initialize services
	db := store.New(app)
	mailService := services.NewMailService(app.NewMailClient, cfg.MailFromAddress, cfg.MailFromName, int(cfg.OtpTTL.Minutes()))
	activityService := services.NewActivityService(
		db.Activities(),
		services.NewPubNubPublisher(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubUserID),
		cfg.ActivityChannel,
	)
	credentialService := services.NewCredentialService(db.Admins(), mailService, monitor, cfg.OtpTTL, cfg.OtpLength)
	sessionService := services.NewSessionService(redisClient, geo, cfg.SessionTTL)
	authService := services.NewAuthService(sessionService, services.AuthSettings{
		Secret:        cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		TokenTTL:      cfg.TokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		CacheTTL:      cfg.VerifiedCacheTTL,
	}, monitor)
	dashboardService := services.NewDashboardService(redisClient, db, activityService, cfg.DashboardCacheTTL, cfg.DefaultCurrency)
	inventoryService := services.NewInventoryService(db, activityService, cfg.DefaultCurrency)
	paymentService := services.NewPaymentService(
		db,
		gateway,
		services.NewDeliveryService(mailService, monitor),
		activityService,
		dashboardService,
		monitor,
		services.PaymentSettings{AppURL: cfg.AppURL, CallbackURL: cfg.PaystackCallbackURL},
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(credentialService, authService, activityService)
	sessionHandler := handlers.NewSessionHandler(authService)
	eventHandler := handlers.NewEventHandler(inventoryService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	limiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})
	app.RootCmd.AddCommand(newCreateAdminCmd(credentialService))

	// Setup graceful shutdown
	go handleShutdown(cancel)

	setupEventHooks(app, dashboardService)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		requireAuth := handlers.RequireAuth(authService)
		limit := func(scope string) func(*core.RequestEvent) error {
			return limiter.Limit(scope, cfg.AuthRateLimit, cfg.AuthRateWindow)
		}

		v1 := e.Router.Group("/api/v1")

		// Auth endpoints
		auth := v1.Group("/auth")
		auth.POST("/create-account", authHandler.CreateAccount).BindFunc(requireAuth)
		auth.POST("/login", authHandler.Login).BindFunc(limit("login"))
		auth.POST("/verify-otp", authHandler.VerifyOtp).BindFunc(limit("verify-otp"))
		auth.POST("/resend-otp", authHandler.ResendOtp).BindFunc(limit("resend-otp"))
		auth.POST("/logout", authHandler.Logout).BindFunc(requireAuth)
		auth.GET("/me", authHandler.Me).BindFunc(requireAuth)

		// Session endpoints
		auth.GET("/sessions", sessionHandler.List).BindFunc(requireAuth)
		auth.DELETE("/sessions", sessionHandler.Revoke).BindFunc(requireAuth)
		auth.DELETE("/sessions/others", sessionHandler.RevokeOthers).BindFunc(requireAuth)

		// Event endpoints
		v1.GET("/events/{eventId}", eventHandler.GetEvent)
		v1.POST("/events/{eventId}/tickets", eventHandler.AddTier).BindFunc(requireAuth)
		v1.PATCH("/events/{eventId}/tickets/{ticketId}", eventHandler.UpdateTier).BindFunc(requireAuth)

		// Payment endpoints
		v1.POST("/payment/purchase", paymentHandler.Purchase)
		v1.GET("/payment/verify/{reference}", paymentHandler.Verify)
		v1.GET("/payment/check-in", paymentHandler.CheckIn).BindFunc(requireAuth)

		// Admin endpoints
		v1.GET("/dashboard", dashboardHandler.Stats).BindFunc(requireAuth)

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(e.Request.Context(), redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		slog.Info("Server routes registered", "environment", cfg.Environment, "gateway", gateway.Provider())

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// newGateway builds the configured payment gateway. Development falls back
// to the sandbox when no Paystack key is set.
func newGateway(cfg *config.Config, monitor *monitoring.Monitor) (bank.Gateway, error) {
	provider := bank.Provider(cfg.GatewayProvider)
	if cfg.IsDevelopment() && provider == bank.ProviderPaystack && cfg.PaystackSecretKey == "" {
		slog.Warn("PAYSTACK_SECRET_KEY is not set, using the sandbox gateway")
		provider = bank.ProviderSandbox
	}

	return bank.NewFactory(monitor).CreateGateway(bank.Config{
		Provider: provider,
		Paystack: paystack.Config{
			BaseURL:   cfg.PaystackBaseURL,
			SecretKey: cfg.PaystackSecretKey,
			Timeout:   cfg.GatewayTimeout,
		},
		CallbackURL: cfg.PaystackCallbackURL,
	})
}

// setupEventHooks guards tier bounds on events written through the
// PocketBase record API and drops the cached dashboard on any change.
func setupEventHooks(app *pocketbase.PocketBase, dashboard *services.DashboardService) {
	validate := func(e *core.RecordRequestEvent) error {
		event, err := store.EventFromRecord(e.Record)
		if err != nil {
			return apis.NewBadRequestError("Invalid tickets payload", nil)
		}
		if err := event.ValidateTiers(); err != nil {
			return apis.NewBadRequestError(status.Message(err), nil)
		}
		return nil
	}

	invalidate := func(ctx context.Context, eventID, hook string) {
		if err := dashboard.Invalidate(ctx); err != nil {
			slog.Error("Failed to invalidate dashboard cache", "eventID", eventID, "hook", hook, "error", err)
		}
	}

	app.OnRecordCreateRequest("events").BindFunc(func(e *core.RecordRequestEvent) error {
		if err := validate(e); err != nil {
			return err
		}
		if err := e.Next(); err != nil {
			return err
		}
		invalidate(e.Request.Context(), e.Record.Id, "OnRecordCreateRequest")
		return nil
	})

	app.OnRecordUpdateRequest("events").BindFunc(func(e *core.RecordRequestEvent) error {
		if err := validate(e); err != nil {
			return err
		}
		if err := e.Next(); err != nil {
			return err
		}
		invalidate(e.Request.Context(), e.Record.Id, "OnRecordUpdateRequest")
		return nil
	})

	app.OnRecordDeleteRequest("events").BindFunc(func(e *core.RecordRequestEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		invalidate(e.Request.Context(), e.Record.Id, "OnRecordDeleteRequest")
		return nil
	})
}

// handleShutdown cancels background work on SIGINT or SIGTERM.
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Shutdown signal received, cleaning up...")
	cancel()
}
