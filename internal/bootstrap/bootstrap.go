package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/uniportal/internal/app/controllers"
	"github.com/yigit/uniportal/internal/app/jobs"
	appMigrations "github.com/yigit/uniportal/internal/app/migrations"
	appRepos "github.com/yigit/uniportal/internal/app/repositories"
	appRoutes "github.com/yigit/uniportal/internal/app/routes"
	appServices "github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/config"
	"github.com/yigit/uniportal/internal/db"
	appMiddleware "github.com/yigit/uniportal/internal/middleware"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/email"
	"github.com/yigit/uniportal/internal/pkg/logger"
	"github.com/yigit/uniportal/internal/pkg/metrics"
	"github.com/yigit/uniportal/internal/pkg/ratelimit"
	"github.com/yigit/uniportal/internal/seed"
	"github.com/yigit/uniportal/internal/store"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	Health         *appControllers.HealthController
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Limiter        ratelimit.Limiter
	Metrics        *metrics.Metrics
	Sweeper        *jobs.Sweeper
	Logger         zerolog.Logger
}

// Infrastructure is what the application is wired on top of: persistence, mail,
// rate limiting and the dependencies /healthz probes.
type Infrastructure struct {
	Stores   appServices.Stores
	Expirers map[string]jobs.Expirer
	Mailer   appServices.Mailer
	Limiter  ratelimit.Limiter
	Checks   map[string]appControllers.Pinger
}

// LoadConfigAndSetupLogger loads configuration and builds the root logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Strs("envOverrides", cfg.EnvOverrides).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres, applies pending migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, migrationsDir string, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, logger.Component(lgr, "db"))
	if err != nil {
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component(lgr, "migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		seedLog := logger.Component(lgr, "seed")
		admin := seed.Admin{Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}
		err := seed.CreateDefaultData(ctx,
			appRepos.NewProgramRepository(database.Pool, seedLog),
			appRepos.NewUserRepository(database.Pool, seedLog),
			admin, seedLog)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// PostgresInfrastructure builds the production infrastructure on Postgres and,
// when configured, Redis.
func PostgresInfrastructure(cfg *config.Config, database *db.PostgresDB, rdb *store.Redis, lgr zerolog.Logger) Infrastructure {
	repos := appRepos.NewRepositories(database, logger.Component(lgr, "repositories"))

	limit := cfg.RateLimit.RequestsPerWindow
	window := config.MustDuration(cfg.RateLimit.Window)

	infra := Infrastructure{
		Stores: appServices.Stores{
			Users:          repos.UserRepository,
			Tokens:         repos.TokenRepository,
			Students:       repos.StudentRepository,
			Programs:       repos.ProgramRepository,
			Payments:       repos.PaymentRepository,
			PasswordResets: repos.PasswordResetRepository,
			Notifications:  repos.NotificationRepository,
			Audit:          repos.AuditRepository,
			Units:          repos.UnitRepository,
		},
		Expirers: map[string]jobs.Expirer{
			"password_resets": repos.PasswordResetRepository,
			"notifications":   repos.NotificationRepository,
			"refresh_tokens":  repos.TokenRepository,
		},
		Mailer: email.NewMailer(email.NewSender(cfg, logger.Component(lgr, "email")), cfg.Email.FromName, cfg.Email.BaseURL),
		Checks: map[string]appControllers.Pinger{"database": database},
	}

	if rdb != nil {
		infra.Limiter = ratelimit.NewRedisLimiter(rdb.Client, "uniportal:ratelimit", limit, window)
		infra.Checks["redis"] = rdb
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis rate limiter")
	} else {
		memory := ratelimit.NewMemoryLimiter(limit, window)
		infra.Limiter = memory
		infra.Expirers["rate_limit_buckets"] = pruneExpirer(memory)
		lgr.Info().Msg("Redis not configured, using in-memory rate limiter")
	}
	return infra
}

func pruneExpirer(l *ratelimit.MemoryLimiter) jobs.Expirer {
	return jobs.ExpirerFunc(func(context.Context, time.Time) (int64, error) {
		return int64(l.Prune()), nil
	})
}

// BuildDependencies initializes services, middleware, controllers and the sweeper.
func BuildDependencies(cfg *config.Config, infra Infrastructure, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Logger:  lgr,
		Metrics: metrics.New(),
		Limiter: infra.Limiter,
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.MustDuration(cfg.JWT.AccessTokenExpiration),
		RefreshTokenExp: config.MustDuration(cfg.JWT.RefreshTokenExpiration),
		ResetGrantExp:   config.MustDuration(cfg.JWT.ResetGrantExpiration),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Services = appServices.New(infra.Stores, deps.JWTService, infra.Mailer, deps.Metrics, appServices.Config{
		OTP: appServices.OTPConfig{
			CodeLength:  cfg.OTP.CodeLength,
			CodeTTL:     config.MustDuration(cfg.OTP.CodeTTL),
			TokenTTL:    config.MustDuration(cfg.OTP.TokenTTL),
			GrantTTL:    config.MustDuration(cfg.JWT.ResetGrantExpiration),
			MaxAttempts: cfg.OTP.MaxAttempts,
		},
		RegistrationThreshold: cfg.Fees.RegistrationThreshold,
	}, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	svc := deps.Services
	ctlLog := logger.Component(lgr, "http")
	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(svc.Auth, ctlLog),
		Password:      appControllers.NewPasswordController(svc.Auth, ctlLog),
		Students:      appControllers.NewStudentController(svc.Students, ctlLog),
		Programs:      appControllers.NewProgramController(svc.Programs, ctlLog),
		Finance:       appControllers.NewFinanceController(svc.Payments, svc.Eligibility, ctlLog),
		Units:         appControllers.NewUnitController(svc.Units, ctlLog),
		Notifications: appControllers.NewNotificationController(svc.Notifications, ctlLog),
		Audit:         appControllers.NewAuditController(svc.Audit),
	}
	deps.Health = appControllers.NewHealthController(infra.Checks, ctlLog)

	deps.Sweeper = jobs.NewSweeper(infra.Expirers, config.MustDuration(cfg.Sweeper.Interval), deps.Metrics, logger.Component(lgr, "jobs"))
	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production", "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("ginMode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	// admission numbers contain '/', clients send them percent-encoded
	router.UseRawPath = true
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		lgr.Warn().Err(err).Msg("Invalid trusted proxies, ignoring forwarding headers")
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			appMiddleware.HandleAPIError(c, fmt.Errorf("panic: %v", recovered))
		}),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.SecurityHeaders(),
		cors.New(corsConfig(cfg)),
		deps.Metrics.GinMiddleware(),
	)

	router.GET("/ping", deps.Health.Ping)
	router.GET("/healthz", deps.Health.Healthz)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Limiter)
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.DefaultConfig()
	origins := cfg.CORSOriginList()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "X-Request-ID")
	cc.ExposeHeaders = []string{"X-Request-ID"}
	return cc
}
