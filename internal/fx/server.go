package fx

import (
	"context"
	"errors"
	"net/http"

	"MyFinance/config"
	"MyFinance/internal/logger"
	"MyFinance/internal/middleware"
	"MyFinance/internal/routes"

	docs "MyFinance/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"go.uber.org/fx"
)

var ServerModule = fx.Module("server",
	fx.Provide(
		newRouter,
	),
	fx.Invoke(
		setupRoutes,
		startServer,
	),
)

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware())
	return router
}

func setupRoutes(
	router *gin.Engine,
	handler *routes.Handler,
	jwtSvc *middleware.JwtService,
	limiters rateLimiters,
	idempotency middleware.IdempotencyStore,
) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := router.Group("/api")
	public.Use(middleware.RateLimit(limiters.Auth))
	{
		public.POST("/auth/login", handler.Authenticate)
		public.POST("/auth/register", handler.Registration)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(jwtSvc))
	private.Use(middleware.RateLimitByUser(limiters.User))
	private.Use(middleware.Idempotency(idempotency))
	{
		accounts := private.Group("/accounts")
		{
			accounts.GET("/me", handler.GetMyAccount)
			accounts.POST("", handler.CreateAccount)
		}

		categories := private.Group("/categories")
		{
			categories.POST("", handler.CreateCategory)
			categories.GET("", handler.ListCategories)
			categories.GET("/:id", handler.GetCategory)
			categories.PATCH("/:id", handler.UpdateCategory)
			categories.DELETE("/:id", handler.DeleteCategory)
			categories.GET("/:id/transactions", handler.ListCategoryTransactions)
		}

		budgets := private.Group("/budgets")
		{
			budgets.POST("", handler.CreateBudget)
			budgets.GET("", handler.ListBudgets)
			budgets.GET("/summary", handler.GetBudgetSummary)
			budgets.GET("/:id", handler.GetBudget)
			budgets.PATCH("/:id", handler.UpdateBudget)
			budgets.DELETE("/:id", handler.DeleteBudget)
			budgets.GET("/:id/transactions", handler.ListBudgetTransactions)
		}

		pots := private.Group("/pots")
		{
			pots.POST("", handler.CreatePot)
			pots.GET("", handler.ListPots)
			pots.GET("/summary", handler.GetPotSummary)
			pots.GET("/:id", handler.GetPot)
			pots.PATCH("/:id", handler.UpdatePot)
			pots.DELETE("/:id", handler.DeletePot)
			pots.PATCH("/:id/saved-amount", handler.AdjustPotSavedAmount)
			pots.GET("/:id/transactions", handler.ListPotTransactions)
		}

		transactions := private.Group("/transactions")
		{
			transactions.POST("", handler.CreateTransaction)
			transactions.GET("", handler.ListTransactions)
			transactions.GET("/summary", handler.GetTransactionSummary)
			transactions.GET("/export", handler.ExportTransactions)
			transactions.GET("/:id", handler.GetTransaction)
			transactions.PATCH("/:id", handler.UpdateTransaction)
			transactions.DELETE("/:id", handler.DeleteTransaction)
		}
	}
}

func startServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine) {
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().
				Str("address", srv.Addr).
				Str("environment", cfg.App.Environment).
				Msg("server_starting")
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server_failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("server_stopping")
			return srv.Shutdown(ctx)
		},
	})
}
