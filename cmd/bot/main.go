package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"gastobot/internal/bot"
	"gastobot/internal/config"
	"gastobot/internal/database"
	"gastobot/internal/handlers"
	"gastobot/internal/logger"
	"gastobot/internal/middleware"
	"gastobot/internal/ratelimit"
	"gastobot/internal/validator"
	"gastobot/internal/whatsapp"
	"gastobot/internal/worker"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	if err := database.SeedSystemCategories(db); err != nil {
		return fmt.Errorf("failed to seed system categories: %w", err)
	}

	validator.Register()

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Limit:  appConfig.RateLimitMessages,
		Window: appConfig.RateLimitWindow,
	})
	defer limiter.Stop()

	sender := whatsapp.NewClient(appConfig.WhatsAppToken, appConfig.WhatsAppPhoneID)
	gate := bot.NewGate(db, limiter, sender, bot.NewRouter())

	sweeper := worker.NewSweeper(db, appConfig.DraftMaxAge)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start draft sweeper: %w", err)
	}
	defer sweeper.Stop()

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())

	webhookHandler := handlers.NewWebhookHandler(gate, appConfig.VerifyToken, appConfig.Provider)
	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Receive)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "port", appConfig.Port, "env", appConfig.Env)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
		return srv.Close()
	}
}
