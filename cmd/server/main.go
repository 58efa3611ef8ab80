package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	identityapp "github.com/greenshop/backend/internal/application/identity"
	reportapp "github.com/greenshop/backend/internal/application/report"
	settingsapp "github.com/greenshop/backend/internal/application/settings"
	storefrontapp "github.com/greenshop/backend/internal/application/storefront"
	tradeapp "github.com/greenshop/backend/internal/application/trade"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/greenshop/backend/internal/infrastructure/auth"
	"github.com/greenshop/backend/internal/infrastructure/cache"
	"github.com/greenshop/backend/internal/infrastructure/config"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/greenshop/backend/internal/infrastructure/migration"
	"github.com/greenshop/backend/internal/infrastructure/persistence"
	"github.com/greenshop/backend/internal/infrastructure/storage"
	"github.com/greenshop/backend/internal/infrastructure/telemetry"
	"github.com/greenshop/backend/internal/interfaces/http/handler"
	"github.com/greenshop/backend/internal/interfaces/http/middleware"
	"github.com/greenshop/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/greenshop/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Green Shop API
//	@version		1.0
//	@description	Storefront and admin API of the Green Shop plant store: catalog, cart, checkout and order management.

//	@contact.name	API Support
//	@contact.url	https://github.com/greenshop/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin bearer token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	tel := setupTelemetry(ctx, cfg, log)
	if tel.logs.IsEnabled() {
		// Same local output, plus every entry exported over OTLP
		bridged, err := logger.New(logCfg, logger.WithCore(tel.logs.ZapCore(logger.ParseLevel(cfg.Log.Level))))
		if err != nil {
			log.Warn("Failed to bridge logs to OpenTelemetry", zap.Error(err))
		} else {
			log = bridged
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Green Shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db := setupDatabase(cfg, tel, log)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	cacheFactory := cache.NewFactory(cfg.Redis, cfg.Cache,
		cache.WithLogger(log),
		cache.WithFactoryMeter(tel.meter.Meter("greenshop/cache")),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	if err := cacheFactory.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Error("Error closing caches", zap.Error(err))
		}
	}()

	imageStorage, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	var blacklist auth.TokenBlacklist
	if cacheFactory.UsesRedis() {
		blacklist = auth.NewRedisTokenBlacklist(cacheFactory.RedisClient())
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	loginLimiter := identityapp.NewLoginLimiter(cfg.Admin.LoginRatePerMin, cfg.Admin.LoginBurst)
	defer loginLimiter.Close()

	// Repositories and services
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)

	productService := catalogapp.NewProductService(productRepo,
		cache.NewCollectionCache[catalog.Product](cacheFactory, "products"),
		catalogapp.WithProductLogger(log),
	)
	imageService := catalogapp.NewImageService(imageStorage, catalogapp.WithImageLogger(log))
	orderService := tradeapp.NewOrderService(orderRepo,
		cache.NewCollectionCache[trade.Order](cacheFactory, "orders"),
		tradeapp.WithOrderLogger(log),
	)
	authService := identityapp.NewAuthService(settingsRepo, jwtService, blacklist, loginLimiter,
		identityapp.AuthServiceConfig{
			Login:             cfg.Admin.Login,
			BootstrapPassword: cfg.Admin.Password,
		}, log)
	settingsService := settingsapp.NewSettingsService(settingsRepo, authService, log)
	dashboardService := reportapp.NewDashboardService(productService, orderService, log)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:         tel.meter.Meter("greenshop/business"),
		Logger:        log,
		StatsProvider: dashboardService,
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	defer businessMetrics.Stop()

	sessionService := storefrontapp.NewSessionService(cacheFactory.SessionStore(), productService, log,
		storefrontapp.WithCartActionRecorder(businessMetrics))
	checkoutService := storefrontapp.NewCheckoutService(sessionService, orderService, log,
		storefrontapp.WithCheckoutRecorder(businessMetrics))
	bootstrapService := storefrontapp.NewBootstrapService(settingsService, log)

	readiness := []handler.ReadinessCheck{{Name: "database", Check: db.Ping}}
	if cacheFactory.UsesRedis() {
		redisClient := cacheFactory.RedisClient()
		readiness = append(readiness, handler.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	systemHandler := handler.NewSystemHandler(telemetry.ServiceVersion, readiness...)
	handlers := router.Handlers{
		System:     systemHandler,
		Catalog:    handler.NewCatalogHandler(productService),
		Storefront: handler.NewStorefrontHandler(bootstrapService),
		Session:    handler.NewSessionHandler(sessionService),
		Checkout:   handler.NewCheckoutHandler(checkoutService),
		Auth:       handler.NewAuthHandler(authService),
		Product:    handler.NewProductHandler(productService),
		Upload:     handler.NewUploadHandler(imageService),
		Order:      handler.NewOrderHandler(orderService),
		Settings:   handler.NewSettingsHandler(settingsService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
	}

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

	// Recovery first so panics in later middleware are caught
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanAnnotator())
	engine.Use(middleware.HTTPMetrics(tel.meter))
	engine.Use(logger.AccessLog(log, "/health", "/ready"))
	engine.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	engine.Use(middleware.Profiling(middleware.ProfilingConfig{
		Enabled:          cfg.Telemetry.ProfilingEnabled,
		SkipPaths:        []string{"/health", "/ready", "/api/v1/ping"},
		SkipPathPrefixes: []string{"/swagger"},
	}))

	adminCfg := middleware.NewAdminAuthConfig(jwtService)
	adminCfg.Revocations = blacklist
	adminCfg.Logger = log
	adminAuth := middleware.AdminAuth(adminCfg)

	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)
	engine.GET("/swagger/*any",
		middleware.DocsGuard(middleware.DocsConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, adminAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.ShopRoutes(handlers, router.Guards{
		Session: middleware.Session(middleware.SessionConfig{
			CookieName:   cfg.HTTP.SessionCookie,
			CookieSecure: cfg.HTTP.CookieSecure,
			MaxAge:       cfg.Cache.SessionTTL,
		}),
		AdminAuth: adminAuth,
	})...).Setup()

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
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	tel.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}

// telemetryStack holds the OpenTelemetry providers and the profiler
type telemetryStack struct {
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
	db       *telemetry.DBMetrics
}

// setupTelemetry creates every provider. Providers that fail to start are
// replaced by no-op ones so the shop keeps serving.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryStack {
	t := &telemetryStack{}
	tc := cfg.Telemetry

	var err error
	t.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Tracing unavailable", zap.Error(err))
		t.tracer, _ = telemetry.NewTracerProvider(ctx, telemetry.Config{}, log)
	}

	t.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled && tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Metrics unavailable", zap.Error(err))
		t.meter, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, log)
	}

	t.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled && tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Log export unavailable", zap.Error(err))
		t.logs = nil
	}

	t.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.PyroscopeURL,
		ApplicationName: tc.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
		t.profiler = nil
	} else if tc.ProfilingEnabled && tc.Enabled {
		if err := t.tracer.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	return t
}

func (t *telemetryStack) shutdown(ctx context.Context, log *zap.Logger) {
	if t.db != nil {
		t.db.Stop()
	}
	if t.profiler != nil {
		if err := t.profiler.Stop(); err != nil {
			log.Warn("Profiler shutdown failed", zap.Error(err))
		}
	}
	if err := t.meter.Shutdown(ctx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := t.tracer.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := t.logs.Shutdown(ctx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}
}

// setupDatabase connects, instruments and optionally migrates the database.
// PostgreSQL runs the embedded SQL migrations; SQLite uses GORM auto-migration.
func setupDatabase(cfg *config.Config, tel *telemetryStack, log *zap.Logger) *persistence.Database {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if db.Driver() == persistence.DriverSQLite {
			dbSystem = "sqlite"
		}
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      !cfg.App.IsProduction(),
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        dbSystem,
		}, log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, tel.meter, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else if dbMetrics != nil {
		tel.db = dbMetrics
	}

	if !cfg.Database.AutoMigrate {
		return db
	}
	if db.Driver() == persistence.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		return db
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access database handle", zap.Error(err))
	}
	// The migrator is not closed: its driver owns sqlDB and would close the shared pool.
	m, err := migration.New(sqlDB, migration.Source(""), log)
	if err != nil {
		log.Fatal("Failed to prepare migrations", zap.Error(err))
	}
	if err := m.Up(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	return db
}
