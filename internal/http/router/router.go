package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/petmeet-backend/internal/config"
	"github.com/ignatzorin/petmeet-backend/internal/http/handlers"
	"github.com/ignatzorin/petmeet-backend/internal/http/middleware"
	"github.com/ignatzorin/petmeet-backend/internal/interface/http/handler"
	"github.com/ignatzorin/petmeet-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	appointmentHandler *handler.AppointmentHandler,
	locationHandler *handler.LocationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
	rateLimitStore limiter.Store,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.GET("/ws", wsHandler.Handle)

	v1 := api.Group("/v1")
	v1.Use(middleware.AuthMiddleware(tokenManager))

	// Лимит только на изменяющие запросы.
	mutations := middleware.RateLimitMiddleware(rateLimitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod)

	matches := v1.Group("/matches/:id", middleware.UUIDValidator("id"))
	{
		matches.GET("/appointment-eligibility", appointmentHandler.CheckEligibility)
		matches.GET("/appointments", appointmentHandler.ListByMatch)
		matches.POST("/appointments", mutations, appointmentHandler.Create)
	}

	v1.GET("/appointments", appointmentHandler.ListMine)
	appointments := v1.Group("/appointments/:id", middleware.UUIDValidator("id"))
	{
		appointments.GET("", appointmentHandler.Get)
		appointments.POST("/respond", mutations, appointmentHandler.Respond)
		appointments.POST("/counter-offer", mutations, appointmentHandler.CounterOffer)
		appointments.POST("/cancel", mutations, appointmentHandler.Cancel)
		appointments.POST("/check-in", mutations, appointmentHandler.CheckIn)
		appointments.POST("/complete", mutations, appointmentHandler.Complete)
	}

	locations := v1.Group("/locations")
	{
		locations.POST("", mutations, locationHandler.Create)
		locations.GET("/recent", locationHandler.Recent)
		locations.GET("/:id", middleware.UUIDValidator("id"), locationHandler.Get)
	}

	return r
}
