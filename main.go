package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feetracker-go/client"
	"feetracker-go/config"
	"feetracker-go/db"
	"feetracker-go/handlers"
	"feetracker-go/middleware"
	"feetracker-go/utils"
	"feetracker-go/view"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger().Sugar()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Redis Client
	redisClient, err := db.InitializeRedisClient(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword, config.AppConfig.RedisDB)
	if err != nil {
		logger.Fatalf("main: could not connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Create Redis Service
	redisService := db.NewRedisService(redisClient)

	if config.AppConfig.SeedSampleData {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := redisService.SeedIfEmpty(seedCtx); err != nil {
			logger.Warnf("main: sample data not seeded: %v", err)
		}
		cancel()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(config.Origins()))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	router.MaxMultipartMemory = int64(config.AppConfig.MaxUploadMB) << 20

	// Fee API
	apiHandler := handlers.NewAPIHandler(redisService)
	apiHandler.Register(router.Group("/api"))

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}

	// Page and its fragments, driven through the fee API
	apiURL := config.AppConfig.FeeAPIURL
	if apiURL == "" {
		apiURL = "http://127.0.0.1:" + port
	}
	sessions, err := view.NewSessions(client.New(apiURL, 30*time.Second), view.Options{
		SearchDelay: time.Duration(config.AppConfig.SearchDebounceMS) * time.Millisecond,
	}, time.Duration(config.AppConfig.SessionIdleMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("main: failed to parse page templates: %v", err)
	}
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx)
	defer sessions.Close()
	view.NewUIHandler(sessions).Register(router)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Infof("Starting server on %s (fee API at %s)...", srv.Addr, apiURL)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("main: server forced to shutdown: %v", err)
		return
	}

	logger.Info("main: server stopped gracefully")
}
