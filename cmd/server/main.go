// Command server runs the EBD back office HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	commissionapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/commission"
	integrationapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/integration"
	messagingapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/messaging"
	pricingapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/auth"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/cache"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/config"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/ecommerce"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/erp"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/logger"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/notify"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/payment"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/provider"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/scheduler"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/storage"
	pricingstrategy "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/strategy/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/telemetry"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/interfaces/http/handler"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/interfaces/http/middleware"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var version = "dev"

//	@title			EBD Back Office API
//	@version		1.0
//	@description	Discounts, commissions and royalties, payouts, Bling/Shopify/Mercado Pago reconciliation and messaging for the EBD store.

//	@contact.name	API Support
//	@contact.url	https://github.com/associacaosimplesatitude-debug/projetoananias-sub008

//	@host		localhost:8080
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting EBD back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceVersion:    version,
		Profiling:         cfg.Telemetry.ProfilingEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() { _ = meters.Shutdown(context.Background()) }()
	metrics, err := telemetry.NewBackofficeMetrics(meters.Meter(telemetry.TracerName))
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	logExport, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if logExport.IsEnabled() {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		log = telemetry.TeeOTEL(log, telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, logExport.Provider(), level))
	}
	defer func() { _ = logExport.Shutdown(context.Background()) }()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
		Environment:     cfg.App.Env,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracing(telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		LogFullSQL:         cfg.Database.LogSQL,
		SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	profileRepo := persistence.NewGormClientProfileRepository(db.DB)
	configRepo := persistence.NewGormCommissionConfigRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	messageRepo := persistence.NewGormMessageLogRepository(db.DB)
	tokenRepo := persistence.NewGormProviderTokenRepository(db.DB)
	orderRepo := persistence.NewGormERPOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	tokens := provider.NewTokenManager(tokenRepo, log)

	// Provider gateways. Interface-typed so a disabled provider stays a nil
	// interface and the services answer ErrProviderNotConfigured.
	var (
		erpGateway     integration.ERPGateway
		commerce       integration.CommerceGateway
		storefront     integration.Storefront
		paymentGateway integration.PaymentGateway
	)

	if cfg.Bling.Enabled {
		tokens.Register(integration.ProviderBling, provider.OAuthConfig{
			ClientID:     cfg.Bling.ClientID,
			ClientSecret: cfg.Bling.ClientSecret,
			TokenURL:     cfg.Bling.TokenURL,
		})
		erpGateway = erp.NewBlingAdapter(provider.NewClient(provider.ClientConfig{
			Provider:            integration.ProviderBling,
			BaseURL:             cfg.Bling.BaseURL,
			Timeout:             cfg.Bling.Timeout,
			MaxRetries:          cfg.Bling.MaxRetries,
			RetryDelay:          cfg.Bling.RetryDelay,
			MaxRateLimitRetries: cfg.Bling.MaxRetries,
			RateLimitDelay:      cfg.Bling.RateLimitDelay,
			RequestsPerSecond:   cfg.Bling.RequestsPerSec,
		}, log, provider.WithTokenSource(tokens)))
		log.Info("Bling integration enabled", zap.String("base_url", cfg.Bling.BaseURL))
	}

	shopifyTenant := parseTenant(log, "shopify.tenant_id", cfg.Shopify.TenantID)
	if cfg.Shopify.Enabled {
		var admin, front *provider.Client
		if cfg.Shopify.AdminToken != "" {
			admin = provider.NewClient(provider.ClientConfig{
				Provider:    integration.ProviderShopify,
				BaseURL:     ecommerce.AdminBaseURL(cfg.Shopify.ShopDomain, cfg.Shopify.APIVersion),
				Timeout:     cfg.Shopify.Timeout,
				StaticToken: cfg.Shopify.AdminToken,
				TokenHeader: "X-Shopify-Access-Token",
			}, log)
		}
		if cfg.Shopify.StorefrontToken != "" {
			front = provider.NewClient(provider.ClientConfig{
				Provider:    integration.ProviderShopify,
				BaseURL:     ecommerce.StorefrontURL(cfg.Shopify.ShopDomain, cfg.Shopify.APIVersion),
				Timeout:     cfg.Shopify.Timeout,
				StaticToken: cfg.Shopify.StorefrontToken,
				TokenHeader: "X-Shopify-Storefront-Access-Token",
			}, log)
		}
		adapter := ecommerce.NewShopifyAdapter(admin, front)
		commerce, storefront = adapter, adapter
		log.Info("Shopify integration enabled", zap.String("shop", cfg.Shopify.ShopDomain))
	}

	mercadoPagoTenant := parseTenant(log, "mercadopago.tenant_id", cfg.MercadoPago.TenantID)
	if cfg.MercadoPago.Enabled {
		paymentGateway = payment.NewMercadoPagoAdapter(provider.NewClient(provider.ClientConfig{
			Provider:    integration.ProviderMercadoPago,
			BaseURL:     cfg.MercadoPago.BaseURL,
			Timeout:     cfg.MercadoPago.Timeout,
			StaticToken: cfg.MercadoPago.AccessToken,
		}, log), cfg.MercadoPago.NotifyURL)
		log.Info("Mercado Pago integration enabled")
	}

	// NF-e archive
	var (
		archive integration.ObjectStorage
		signer  integrationapp.URLSigner
	)
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Object storage bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		archive, signer = s3, s3
	}

	// Webhook de-duplication
	dedup, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := dedup.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Messaging
	var (
		emailSender    messaging.EmailSender
		fallbackSender messaging.EmailSender
		whatsappSender messaging.WhatsAppSender
		from           = cfg.SMTP.From
	)
	if cfg.Resend.Enabled {
		emailSender = notify.NewResendSender(provider.NewClient(provider.ClientConfig{
			Provider:    integration.ProviderResend,
			BaseURL:     cfg.Resend.BaseURL,
			Timeout:     cfg.Resend.Timeout,
			StaticToken: cfg.Resend.APIKey,
		}, log), cfg.Resend.From)
		from = cfg.Resend.From
	}
	if cfg.SMTP.Enabled {
		smtp := notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		if emailSender == nil {
			emailSender = smtp
		} else {
			fallbackSender = smtp
		}
	}
	if cfg.WhatsApp.Enabled {
		whatsappSender = notify.NewWhatsAppSender(provider.NewClient(provider.ClientConfig{
			Provider:    integration.ProviderWhatsApp,
			BaseURL:     cfg.WhatsApp.BaseURL,
			Timeout:     cfg.WhatsApp.Timeout,
			StaticToken: cfg.WhatsApp.AccessToken,
		}, log), cfg.WhatsApp.APIVersion, cfg.WhatsApp.PhoneNumberID)
	}
	templates, err := notify.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to load message templates", zap.Error(err))
	}

	// Application services
	resolver := pricingstrategy.NewDefaultResolver(pricingstrategy.ResolverOptions{
		RepresentativePct: decimal.NewFromFloat(cfg.Pricing.RepresentativeDiscountPct),
	})
	quoteService := pricingapp.NewQuoteService(profileRepo, resolver, log)
	commissionService := commissionapp.NewService(commissionapp.ServiceConfig{
		Configs:   configRepo,
		Sales:     saleRepo,
		Payouts:   payoutRepo,
		Payments:  paymentGateway,
		NotifyURL: cfg.MercadoPago.NotifyURL,
		Metrics:   metrics,
		Logger:    log,
	})
	reconcileService := integrationapp.NewReconcileService(integrationapp.ReconcileConfig{
		ERP:         erpGateway,
		Payments:    paymentGateway,
		Orders:      orderRepo,
		Invoices:    invoiceRepo,
		PaymentRepo: paymentRepo,
		Archive:     archive,
		Signer:      signer,
		DownloadTTL: cfg.Storage.PresignExpiration,
		Logger:      log,
	})
	shopifyService := integrationapp.NewShopifyService(integrationapp.ShopifyServiceConfig{
		WebhookSecret: cfg.Shopify.WebhookSecret,
		TenantID:      shopifyTenant,
		Commerce:      commerce,
		ERP:           erpGateway,
		Orders:        orderRepo,
		Idempotency:   dedup,
		Logger:        log,
	})
	storefrontService := integrationapp.NewStorefrontService(storefront)
	connectionService := integrationapp.NewConnectionService(tokens, log)
	messageService := messagingapp.NewService(messagingapp.ServiceConfig{
		Logs:            messageRepo,
		Email:           emailSender,
		Fallback:        fallbackSender,
		WhatsApp:        whatsappSender,
		Renderer:        templates,
		TrackingBaseURL: cfg.Tracking.BaseURL,
		TrackingKey:     cfg.Tracking.SigningKey,
		From:            from,
		Metrics:         metrics,
		Logger:          log,
	})

	// Background re-sync
	var jobs handler.JobScheduler
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewReconcileExecutor(reconcileService, cfg.Scheduler.MaxPagesPerTick, integration.DefaultPageSize, log).
			WithMetrics(metrics)
		reconcileScheduler, err := scheduler.NewReconcileScheduler(scheduler.ReconcileSchedulerConfig{
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, executor, log)
		if err != nil {
			log.Fatal("Failed to create reconcile scheduler", zap.Error(err))
		}
		if err := reconcileScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start reconcile scheduler", zap.Error(err))
		}
		defer func() {
			if err := reconcileScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping reconcile scheduler", zap.Error(err))
			}
		}()

		trigger := scheduler.NewReconcileTrigger(scheduler.ReconcileTriggerConfig{
			Interval:      cfg.Scheduler.Interval,
			Kinds:         enabledKinds(cfg),
			StaticTenants: staticTenants(mercadoPagoTenant),
		}, reconcileScheduler, tokenRepo, log)
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start reconcile trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping reconcile trigger", zap.Error(err))
			}
		}()

		jobs = reconcileScheduler
		log.Info("Reconcile scheduler started",
			zap.Duration("interval", cfg.Scheduler.Interval),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Int("max_pages_per_tick", cfg.Scheduler.MaxPagesPerTick),
		)
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = cfg.Telemetry.Enabled

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.App.IsProduction()

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(tracingConfig))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.SecureWithConfig(securityConfig))
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	publicLimiter := middleware.NewRateLimiter(cfg.HTTP.PublicRateLimit, cfg.HTTP.PublicRateWindow)
	go cleanupLimiter(ctx, publicLimiter, cfg.HTTP.PublicRateWindow)
	byIP := func(c *gin.Context) string { return c.ClientIP() }

	if cfg.Swagger.Enabled {
		docs.SwaggerInfo.Version = version
		docs.SwaggerInfo.Host = ""
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.Timeout(cfg.HTTP.RequestTimeout),
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.TracingAttributeInjector(),
	)
	router.RegisterAll(r, router.Handlers{
		Pricing:     handler.NewPricingHandler(quoteService),
		Commission:  handler.NewCommissionHandler(commissionService),
		Integration: handler.NewIntegrationHandler(reconcileService, shopifyService, connectionService),
		Storefront:  handler.NewStorefrontHandler(storefrontService),
		Message:     handler.NewMessageHandler(messageService),
		Webhook:     handler.NewWebhookHandler(shopifyService, reconcileService, mercadoPagoTenant).WithMetrics(metrics),
		Tracking:    handler.NewTrackingHandler(messageService),
		System: handler.NewSystemHandler(handler.SystemHandlerConfig{
			Name:    cfg.App.Name,
			Version: version,
			DB:      db,
			Jobs:    jobs,
		}),
	}, router.Guards{
		Finance:  middleware.RequireRole(auth.RoleFinance),
		Admin:    middleware.RequireRole(auth.RoleAdmin),
		Webhooks: middleware.RateLimitByKey(publicLimiter, byIP),
		Tracking: middleware.RateLimitByKey(publicLimiter, byIP),
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// parseTenant reads an optional tenant id from config. A malformed value is
// logged and treated as unset.
func parseTenant(log *zap.Logger, key, raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("Ignoring invalid tenant id", zap.String("key", key), zap.Error(err))
		return uuid.Nil
	}
	return id
}

func enabledKinds(cfg *config.Config) []scheduler.SyncKind {
	var kinds []scheduler.SyncKind
	if cfg.Bling.Enabled {
		kinds = append(kinds, scheduler.SyncKindOrders, scheduler.SyncKindInvoices)
	}
	if cfg.MercadoPago.Enabled {
		kinds = append(kinds, scheduler.SyncKindPayments)
	}
	return kinds
}

func staticTenants(mercadoPagoTenant uuid.UUID) map[integration.Provider][]uuid.UUID {
	if mercadoPagoTenant == uuid.Nil {
		return nil
	}
	return map[integration.Provider][]uuid.UUID{
		integration.ProviderMercadoPago: {mercadoPagoTenant},
	}
}

func cleanupLimiter(ctx context.Context, limiter *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup()
		}
	}
}
