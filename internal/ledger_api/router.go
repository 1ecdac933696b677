package ledger_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/flowi-ledger/internal/config"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/ledger_api/handler"
	"github.com/flowi-ledger/internal/ledger_api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// routeHandlers groups everything setupRouter mounts
type routeHandlers struct {
	rate        *handler.RateHandler
	receivables *handler.ObligationHandler
	payables    *handler.ObligationHandler
	dashboard   *handler.DashboardHandler
	health      gin.HandlerFunc
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, corsCfg config.CORSConfig, h routeHandlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	if len(corsCfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     corsCfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.CorrelationIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	v1 := r.Group("/api/v1")
	{
		// Exchange rate
		v1.GET("/exchange-rate", h.rate.Current)
		v1.PUT("/exchange-rate", h.rate.Set)
		v1.GET("/exchange-rate/history", h.rate.History)
		v1.POST("/convert", h.rate.Convert)

		// Receivables and payables share one route shape
		mountObligations(v1.Group("/"+obligation.KindReceivable.Collection()), h.receivables)
		mountObligations(v1.Group("/"+obligation.KindPayable.Collection()), h.payables)

		// Derived metrics
		v1.GET("/dashboard", h.dashboard.Snapshot)
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/top-products", h.dashboard.TopProducts)
			analytics.GET("/trend", h.dashboard.Trend)
			analytics.GET("/inventory", h.dashboard.Inventory)
		}
	}

	r.GET("/health", h.health)
}

func mountObligations(g *gin.RouterGroup, h *handler.ObligationHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/summary", h.Summary)
	g.GET("/next-reference", h.NextReference)
	g.POST("/reconcile", h.Reconcile)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/pay", h.MarkPaid)
	g.POST("/:id/cancel", h.Cancel)
}
