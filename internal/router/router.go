package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yazelin/jaba-ai/internal/config"
	"github.com/yazelin/jaba-ai/internal/middleware"
	"github.com/yazelin/jaba-ai/internal/session"
)

func NewRouter(handler *session.Handler, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	admin := r.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg.Auth.JWTSecret),
		middleware.RequireRole("ADMIN"),
	)
	{
		sessions := admin.Group("/menu-sessions")
		{
			sessions.POST("", handler.Open)
			sessions.GET("/:id", handler.Get)
			sessions.DELETE("/:id", handler.Close)

			sessions.POST("/:id/image", handler.UploadImage)
			sessions.DELETE("/:id/image", handler.ClearImage)
			sessions.POST("/:id/target", handler.SelectTarget)

			sessions.POST("/:id/recognize", handler.Recognize)
			sessions.POST("/:id/save", handler.Save)
			sessions.POST("/:id/back", handler.BackToUpload)
		}

		admin.GET("/stores", handler.ListStores)
		admin.GET("/stores/:id/menu", handler.EditExisting)
	}

	return r
}
