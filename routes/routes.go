package routes

import (
	"time"

	"aftervisit/config"
	"aftervisit/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterConsultationRoutes registers the authenticated summary relay endpoint.
func RegisterConsultationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		// Protected routes (Require Authentication)
		api.Use(hb.AuthMiddleware)
		api.POST("", hb.StreamSummaryHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterStaticRoutes serves the exported front end for everything else.
func RegisterStaticRoutes(r *gin.Engine, staticDir string) {
	r.NoRoute(handlers.StaticHandler(staticDir))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here. Preflight OPTIONS requests are
	// answered by the CORS middleware itself.
	r.Use(cors.New(corsConfig()))

	RegisterConsultationRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterStaticRoutes(r, hb.StaticDir)
}

func corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	origins := config.AppConfig.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// The deployed front end may live on any host; credentials cannot be
		// combined with a wildcard origin.
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
