// File: aftervisit/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aftervisit/config"
	"aftervisit/handlers"
	"aftervisit/middleware"
	"aftervisit/routes"
	"aftervisit/services/intelligence"
	"aftervisit/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Identity provider key set, refreshed in the background for the process lifetime.
	jwks, err := middleware.NewJWKS(config.AppConfig.ClerkJWKSURL)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load identity provider key set: %v", err)
	}
	defer jwks.EndBackground()

	summarySvc, err := newSummaryService()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize summary service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	consultationHandler := handlers.NewConsultationHandler(summarySvc)

	handlerBundle := &handlers.HandlerBundle{
		AuthMiddleware:       middleware.BearerAuthMiddleware(jwks),
		StreamSummaryHandler: consultationHandler.StreamSummaryHandler,
		StaticDir:            config.AppConfig.StaticDir,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newSummaryService selects the upstream generation provider from configuration.
func newSummaryService() (intelligence.SummaryService, error) {
	switch config.AppConfig.AIProvider {
	case "gemini":
		return intelligence.NewGeminiClient(
			context.Background(),
			config.AppConfig.GeminiAPIKey,
			config.AppConfig.GeminiModel,
		)
	default:
		return intelligence.NewOpenAIClient(
			config.AppConfig.OpenAIAPIKey,
			config.AppConfig.OpenAIBaseURL,
			config.AppConfig.OpenAIModel,
		), nil
	}
}
