package router

import (
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/config"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/handler"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/middleware"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// The idempotency store is injected: main owns the single instance shared by
// the guard and the background sweeper.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, idemStore repository.IdempotencyStore) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	ledgerSvc := service.NewLedgerService(movementRepo)
	guard := service.NewGuard(idemStore, time.Duration(cfg.IdempotencyTTLHours)*time.Hour)
	sessionSvc := service.NewSessionService(sessionRepo, ledgerSvc, guard, authSvc, cfg.Ceiling())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cashdeskH := handler.NewCashdeskHandler(sessionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyStaff := middleware.RequireRole("operator", "manager", "admin")
		managers := middleware.RequireRole("manager", "admin")

		desk := v1.Group("/cashdesk")
		{
			desk.POST("/open", anyStaff, cashdeskH.Open)
			desk.POST("/sales", anyStaff, cashdeskH.RegisterSale)
			desk.POST("/withdrawals", anyStaff, cashdeskH.RecordWithdrawal)
			desk.POST("/reinforcements", anyStaff, cashdeskH.RecordReinforcement)
			desk.POST("/close", anyStaff, cashdeskH.Close)
			desk.GET("/current", anyStaff, cashdeskH.Current)
			desk.GET("/sessions/:id/report", anyStaff, cashdeskH.Report)
			desk.GET("/sessions/:id/movements", anyStaff, cashdeskH.Movements)
			desk.GET("/history", managers, cashdeskH.History)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// NewIdempotencyStore selects the guard's record store per configuration.
// Redis is the default (native TTL expiry); postgres keeps everything on the
// primary database for deployments without Redis.
func NewIdempotencyStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) repository.IdempotencyStore {
	if cfg.IdempotencyBackend == "postgres" || rdb == nil {
		return repository.NewGormIdempotencyStore(db)
	}
	return repository.NewRedisIdempotencyStore(rdb)
}
