package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/haiphan0412/invoice-gate/api/handlers"
	"github.com/haiphan0412/invoice-gate/api/middleware"
)

// SetupRoutes wires all routes.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")

	docs := v1.Group("/documents")
	{
		docs.POST("/process", h.Document.ProcessDocument)
		docs.POST("/batch", h.Document.ProcessBatch)
		docs.POST("/enqueue", h.Document.EnqueueDocument)
		docs.GET("/result/:docId", h.Document.GetResult)
		docs.GET("/status/:docId", h.Document.GetStatus)
	}
}
