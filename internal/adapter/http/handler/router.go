package handler

import (
	"bitslow-market/internal/adapter/http/middleware"
	redisStore "bitslow-market/internal/adapter/storage/redis"
	"bitslow-market/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	MarketSvc      ports.MarketService
	ReportingSvc   ports.ReportingService
	ClientSvc      ports.ClientService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	marketHandler := NewMarketHandler(deps.MarketSvc, deps.LedgerSvc)
	coinHandler := NewCoinHandler(deps.LedgerSvc)
	profileHandler := NewProfileHandler(deps.ReportingSvc, deps.ClientSvc)
	txnHandler := NewTransactionHandler(deps.ReportingSvc)

	market := v1.Group("/market", jwtAuth)
	{
		market.GET("", rl("market"), marketHandler.List)
		market.POST("/coins", rl("mint"), marketHandler.Mint)
	}

	coins := v1.Group("/coins", jwtAuth)
	{
		coins.PATCH("/:id/listing", rl("market"), coinHandler.SetListing)
		coins.POST("/:id/purchase", rl("purchase"), coinHandler.Purchase)
		coins.GET("/:id/history", rl("market"), coinHandler.History)
	}

	profile := v1.Group("/profile", jwtAuth)
	{
		profile.GET("", rl("profile"), profileHandler.Get)
		profile.PATCH("", rl("profile"), profileHandler.Update)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("market"), txnHandler.List)
	}

	return r
}
