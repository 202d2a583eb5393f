package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether one backing store is reachable.
type HealthChecker func(ctx context.Context) error

// SetupRouter builds the gin engine: a public health endpoint and the
// authenticated v1 API.
func SetupRouter(h *Handler, jwtSecret string, health map[string]HealthChecker) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{}
		for name, check := range health {
			if err := check(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				checks[name] = err.Error()
			} else {
				checks[name] = "ok"
			}
		}
		c.JSON(status, checks)
	})

	authMiddleware := AuthMiddleware(jwtSecret)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(authMiddleware)
	{
		documents := apiV1.Group("/documents")
		{
			documents.POST("/upload", h.UploadDocument)
			documents.GET("", h.ListDocuments)
			documents.GET("/:id", h.GetDocument)
			documents.DELETE("/:id", h.DeleteDocument)
		}

		chat := apiV1.Group("/chat")
		{
			chat.POST("", h.Chat)
			chat.GET("/conversations", h.ListConversations)
			chat.GET("/conversations/:id", h.GetConversation)
			chat.DELETE("/conversations/:id", h.DeleteConversation)
		}
	}

	return r
}
