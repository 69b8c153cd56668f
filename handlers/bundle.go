package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates the handlers and middleware wired in main so route
// registration does not depend on service construction order.
type HandlerBundle struct {
	AuthMiddleware       gin.HandlerFunc
	StreamSummaryHandler gin.HandlerFunc
	StaticDir            string
}
