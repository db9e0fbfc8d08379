// Package router assembles the gin engine: middleware, public and
// authenticated API routes, and the internal pipeline routes.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hearth/internal/handlers"
	"hearth/internal/middleware"
	"hearth/internal/services"
)

// Services are the business services the HTTP layer depends on.
type Services struct {
	Users        services.UserServicer
	Households   services.HouseholdServicer
	Transactions services.TransactionServicer
	Balances     services.BalanceServicer
}

// NewServices builds the GORM-backed services.
func NewServices(db *gorm.DB, refreshTimeout time.Duration) Services {
	households := services.NewHouseholdService(db)
	return Services{
		Users:        services.NewUserService(db),
		Households:   households,
		Transactions: services.NewTransactionService(db, households),
		Balances:     services.NewBalanceService(services.NewBalanceStore(db), refreshTimeout),
	}
}

// Options tune route behaviour.
type Options struct {
	PipelineAPIKey      string
	BalancePreviewLimit int
}

// New returns an engine with every route registered.
func New(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users)
	householdHandler := handlers.NewHouseholdHandler(svc.Households)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	balanceHandler := handlers.NewBalanceHandler(svc.Households, svc.Balances, opts.BalancePreviewLimit)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	households := protected.Group("/households")
	households.POST("", householdHandler.CreateHousehold)
	households.GET("/:id", householdHandler.GetHousehold)
	households.GET("/:id/members", householdHandler.ListMembers)
	households.POST("/:id/members", householdHandler.AddMember)
	households.POST("/:id/members/:memberId/approve", householdHandler.ApproveMember)
	households.POST("/:id/transactions", transactionHandler.CreateTransaction)
	households.GET("/:id/transactions", transactionHandler.ListTransactions)
	households.GET("/:id/balances", balanceHandler.GetBalances)
	households.GET("/:id/balance-transactions", balanceHandler.GetImpactingTransactions)

	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.GET("/:id/impact", transactionHandler.GetImpactBreakdown)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Internal routes for scheduled jobs
	internal := v1.Group("/internal")
	internal.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	internal.POST("/households/:id/reconcile", balanceHandler.Reconcile)

	return router
}
