package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
	"dispatch/internal/ws"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler   *handler.BookingHandler
	OTPHandler       *handler.OTPHandler
	AmbulanceHandler *handler.AmbulanceHandler
	AnalyticsHandler *handler.AnalyticsHandler
	UserHandler      *handler.UserHandler
	DriverHandler    *handler.DriverHandler
	WSHandler        *ws.Handler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Location broadcast channel.
	router.GET("/ws", deps.WSHandler.Serve)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.List)
			bookings.POST("/fare-estimate", deps.BookingHandler.FareEstimate)
			bookings.GET("/stats", deps.BookingHandler.Stats)
			bookings.GET("/user/:userId", deps.BookingHandler.GetUserBookings)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.GET("/:id/summary", deps.BookingHandler.Summary)
			bookings.PATCH("/:id/admin", deps.BookingHandler.AdminUpdate)
			bookings.POST("/:id/cancel", deps.BookingHandler.Cancel)
			bookings.PATCH("/:id/feedback", deps.BookingHandler.AddFeedback)
			bookings.PATCH("/:id/details", deps.BookingHandler.UpdateDetails)
		}

		// OTP routes.
		otp := v1.Group("/otp")
		{
			otp.POST("/generate", deps.OTPHandler.Generate)
			otp.POST("/verify", deps.OTPHandler.Verify)
			otp.POST("/regenerate", deps.OTPHandler.Generate)
			otp.POST("/resend", deps.OTPHandler.Resend)
			otp.POST("/cleanup", deps.OTPHandler.Cleanup)
			otp.GET("/stats/overview", deps.OTPHandler.Stats)
			otp.GET("/list", deps.OTPHandler.List)
			otp.GET("/:bookingId", deps.OTPHandler.Get)
		}

		// Ambulance routes.
		ambulances := v1.Group("/ambulances")
		{
			ambulances.POST("", deps.AmbulanceHandler.Register)
			ambulances.GET("", deps.AmbulanceHandler.List)
			ambulances.GET("/nearest", deps.AmbulanceHandler.Nearest)
			ambulances.GET("/:id", deps.AmbulanceHandler.Get)
			ambulances.PATCH("/:id/status", deps.AmbulanceHandler.UpdateStatus)
		}

		// Analytics routes.
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/bookings", deps.AnalyticsHandler.Bookings)
			analytics.GET("/revenue", deps.AnalyticsHandler.Revenue)
			analytics.GET("/drivers", deps.AnalyticsHandler.Drivers)
			analytics.GET("/emergency", deps.AnalyticsHandler.Emergency)
			analytics.GET("/heatmap", deps.AnalyticsHandler.Heatmap)
		}
	}

	return router
}
