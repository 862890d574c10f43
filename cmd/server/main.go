package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
	shippingapp "github.com/vesti/backend/internal/application/shipping"
	"github.com/vesti/backend/internal/domain/payment"
	"github.com/vesti/backend/internal/domain/shared"
	domainshipping "github.com/vesti/backend/internal/domain/shipping"
	"github.com/vesti/backend/internal/infrastructure/auth"
	"github.com/vesti/backend/internal/infrastructure/cache"
	"github.com/vesti/backend/internal/infrastructure/config"
	"github.com/vesti/backend/internal/infrastructure/email"
	"github.com/vesti/backend/internal/infrastructure/logger"
	mercadopago "github.com/vesti/backend/internal/infrastructure/payment"
	"github.com/vesti/backend/internal/infrastructure/persistence"
	"github.com/vesti/backend/internal/infrastructure/receipt"
	correios "github.com/vesti/backend/internal/infrastructure/shipping"
	"github.com/vesti/backend/internal/infrastructure/storage"
	"github.com/vesti/backend/internal/infrastructure/telemetry"
	"github.com/vesti/backend/internal/interfaces/http/handler"
	"github.com/vesti/backend/internal/interfaces/http/middleware"
	"github.com/vesti/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    "vesti-backend",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Vesti Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(startupCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// Initialize database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{Enabled: true}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Payment gateway
	gateway, err := mercadopago.NewMercadoPagoAdapter(&mercadopago.MercadoPagoConfig{
		BaseURL:               cfg.Payment.BaseURL,
		AccessToken:           cfg.Payment.AccessToken,
		WebhookSecret:         cfg.Payment.WebhookSecret,
		AllowUnsignedWebhooks: cfg.Payment.AllowUnsignedWebhooks,
		Timeout:               cfg.Payment.RequestTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}
	paymentSettings := payment.Settings{
		MaxInstallments:     cfg.Payment.MaxInstallments,
		StatementDescriptor: cfg.Payment.StatementDescriptor,
		BinaryMode:          cfg.Payment.BinaryMode,
		ExpirationWindow:    cfg.Payment.PreferenceExpiration,
		BackURLBase:         cfg.App.FrontendURL,
		NotificationURL:     cfg.Payment.NotificationURL,
	}

	// Shipping carrier with a quote cache in front of it
	carrier := correios.NewCorreiosClient(correios.CorreiosConfig{
		BaseURL:   cfg.Shipping.BaseURL,
		APIKey:    cfg.Shipping.APIKey,
		APISecret: cfg.Shipping.APISecret,
		TokenTTL:  cfg.Shipping.TokenTTL,
		Timeout:   cfg.Shipping.RequestTimeout,
	}, log)

	var quoteCache domainshipping.QuoteCache
	if cfg.Redis.Enabled {
		redisQuoteCache, err := cache.NewRedisQuoteCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory quote cache", zap.Error(err))
			quoteCache = cache.NewInMemoryQuoteCache()
		} else {
			quoteCache = redisQuoteCache
		}
	} else {
		quoteCache = cache.NewInMemoryQuoteCache()
	}
	defer func() {
		_ = quoteCache.Close()
	}()

	// Webhook idempotency store
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		idempotencyStore, err = idempotencyFactory.CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
	} else {
		idempotencyStore = idempotencyFactory.CreateInMemoryStore()
	}

	// Transactional email
	var emailSender checkoutapp.EmailSender
	if cfg.Email.Enabled {
		emailSender = email.NewResendClient(email.Config{
			BaseURL:     cfg.Email.BaseURL,
			APIKey:      cfg.Email.APIKey,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			StoreName:   cfg.App.StoreName,
			Timeout:     cfg.Email.RequestTimeout,
		})
	}

	// PDF receipt rendering and archival
	var receiptRenderer checkoutapp.ReceiptRenderer
	if cfg.Receipt.Enabled {
		pdfRenderer, err := receipt.NewChromedpRenderer(&receipt.ChromedpConfig{
			DefaultTimeout: cfg.Receipt.RenderTimeout,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			_ = pdfRenderer.Close()
		}()
		receiptRenderer = receipt.NewGenerator(pdfRenderer, cfg.App.StoreName)
	}

	var receiptArchive checkoutapp.ReceiptArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3ReceiptArchive(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize receipt archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(startupCtx); err != nil {
			log.Warn("Failed to ensure receipt bucket", zap.Error(err))
		}
		receiptArchive = s3Archive
	}

	// Application services
	checkoutService := checkoutapp.NewCheckoutService(orderRepo, gateway, paymentSettings, log)
	webhookService := checkoutapp.NewWebhookService(orderRepo, gateway, idempotencyStore, emailSender, log)
	adminService := checkoutapp.NewAdminOrderService(orderRepo, log)
	estimateService := shippingapp.NewEstimateService(carrier, quoteCache, shippingapp.Settings{
		OriginCEP:     cfg.Shipping.OriginCEP,
		Services:      cfg.Shipping.Services,
		FallbackRate:  decimal.NewFromFloat(cfg.Shipping.FallbackRate),
		FallbackDays:  cfg.Shipping.FallbackDays,
		ExtraDays:     cfg.Shipping.ExtraDays,
		FreeThreshold: decimal.NewFromFloat(cfg.Shipping.FreeThreshold),
	}, log)

	var receiptService *checkoutapp.ReceiptService
	if receiptRenderer != nil {
		receiptService = checkoutapp.NewReceiptService(orderRepo, receiptRenderer, receiptArchive, log)
	}

	// Admin authentication
	jwtService := auth.NewJWTService(cfg.JWT)
	credentials := auth.NewCredentialVerifier(cfg.Admin)
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
			tokenBlacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			tokenBlacklist = redisBlacklist
		}
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	// HTTP engine and middleware chain
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxy configuration", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	if cfg.HTTP.RateLimitEnabled {
		globalLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(globalLimiter))
	}

	// Order creation and login get tighter limits than the rest of the API
	var checkoutLimiter, authLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled && cfg.HTTP.CheckoutRateRequests > 0 {
		checkoutLimiter = middleware.NewRateLimiter(cfg.HTTP.CheckoutRateRequests, cfg.HTTP.CheckoutRateWindow)
	}
	if cfg.HTTP.RateLimitEnabled && cfg.HTTP.AuthRateRequests > 0 {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateRequests, cfg.HTTP.AuthRateWindow)
	}

	deps := router.Dependencies{
		System:   handler.NewSystemHandler(),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Shipping: handler.NewShippingHandler(estimateService),
		Tracking: handler.NewTrackingHandler(checkoutService),
		Webhook:  handler.NewWebhookHandler(webhookService, cfg.Email.WebhookSecret, log),
		Auth:     handler.NewAuthHandler(credentials, jwtService, tokenBlacklist, log),
		Admin:    handler.NewAdminOrderHandler(adminService),
		JWTConfig: middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: tokenBlacklist,
			Logger:         log,
		},
		CheckoutLimiter: checkoutLimiter,
		AuthLimiter:     authLimiter,
	}
	if receiptService != nil {
		deps.Receipt = handler.NewReceiptHandler(receiptService)
	}
	router.Setup(engine, deps)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
