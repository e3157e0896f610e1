package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/app"
	"dispatch/internal/config"
	"dispatch/internal/geocode"
	"dispatch/internal/handler"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/repository/postgres"
	"dispatch/internal/service"
	"dispatch/internal/ws"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, sweeper := wireServer(db, redisClient, nrApp, cfg)

	// Background OTP sweep.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweeper.Run(sweepCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// background OTP sweeper.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.OTPSweeper) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	otpRepo := postgres.NewOTPRepository(db)
	fareHistoryRepo := postgres.NewFareHistoryRepository(db)
	ambulanceRepo := postgres.NewAmbulanceRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)

	// Initialize geocoder, falling back to a disabled one without an API key.
	var baseGeocoder geocode.Geocoder = geocode.DisabledGeocoder{}
	if cfg.Geocode.GoogleMapsKey != "" {
		g, err := geocode.NewGoogleGeocoder(cfg.Geocode.GoogleMapsKey)
		if err != nil {
			log.Fatalf("failed to initialize geocoder: %v", err)
		}
		baseGeocoder = g
	} else {
		log.Println("GOOGLE_MAPS_API_KEY not set, bookings by address will fail")
	}
	geocoder := geocode.NewCachedGeocoder(baseGeocoder, cacheStore)

	// Initialize services.
	mailer := service.NewLogMailer()
	fareService := service.NewFareService(fareHistoryRepo)
	otpService := service.NewOTPService(otpRepo, bookingRepo, userRepo, mailer)
	bookingService := service.NewBookingService(bookingRepo, ambulanceRepo, driverRepo, fareService, otpService, geocoder)
	ambulanceService := service.NewAmbulanceService(ambulanceRepo, locationStore)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	sweeper := service.NewOTPSweeper(otpService, lockStore, cfg.OTP.SweepInterval)

	// Location broadcast channel.
	hub := ws.NewHub()
	wsHandler := ws.NewHandler(hub, ambulanceService)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userRepo)
	driverHandler := handler.NewDriverHandler(driverRepo)
	bookingHandler := handler.NewBookingHandler(bookingService, otpService)
	otpHandler := handler.NewOTPHandler(otpService)
	ambulanceHandler := handler.NewAmbulanceHandler(ambulanceService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		BookingHandler:   bookingHandler,
		OTPHandler:       otpHandler,
		AmbulanceHandler: ambulanceHandler,
		AnalyticsHandler: analyticsHandler,
		UserHandler:      userHandler,
		DriverHandler:    driverHandler,
		WSHandler:        wsHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, sweeper
}
