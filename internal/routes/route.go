package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sgazz/SuperMoment/internal/container"
	"github.com/sgazz/SuperMoment/internal/handlers"
	"github.com/sgazz/SuperMoment/internal/middleware"
	"golang.org/x/time/rate"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/", handlers.Root())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handlers.Health())

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(container.TokenVerifier, container.Logger))

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(container.EventService))
		eventRoutes.GET("", handlers.ListEvents(container.EventService))
		eventRoutes.GET("/joined", handlers.ListJoinedEvents(container.EventService))
		eventRoutes.GET("/:id", handlers.GetEvent(container.EventService))
		eventRoutes.PATCH("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))
		eventRoutes.GET("/:id/participants", handlers.ListParticipants(container.EventService))
		eventRoutes.GET("/:id/vouchers", handlers.ListEventVouchers(container.VoucherService))
	}

	redeemLimit := middleware.RateLimit(
		rate.Limit(container.Config.Server.RedeemRate),
		container.Config.Server.RedeemBurst,
	)

	voucherRoutes := protected.Group("/vouchers")
	{
		voucherRoutes.POST("", handlers.CreateVoucher(container.VoucherService))
		voucherRoutes.POST("/redeem", redeemLimit, handlers.RedeemVoucher(container.RedemptionService))
		voucherRoutes.GET("/:code", handlers.GetVoucher(container.VoucherService))
		voucherRoutes.PATCH("/:code", handlers.UpdateVoucher(container.VoucherService))
		voucherRoutes.POST("/:code/cancel", handlers.CancelVoucher(container.VoucherService))
	}

	return r
}
