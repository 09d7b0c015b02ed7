// api/router.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/devadigapratham/zpl2pdf/api/handlers"
)

// SetupRouter sets up the API routes
func SetupRouter(handler *handlers.Handler) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(gin.Recovery(), handler.RequestIDMiddleware(), handler.LoggerMiddleware())

	// Browser front end
	router.GET("/", handler.Index)

	// API group
	api := router.Group("/api")
	{
		api.POST("/convert", handler.Convert)
		api.GET("/pdf-proxy", handler.PDFProxy)
	}

	router.GET("/healthz", handler.Health)

	return router
}
