package server

import (
	"net/http"
	"time"

	"user-crud-service/cmd/api/di"
	ginrouter "user-crud-service/internal/adapter/gin/router"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, ginAddr string) *http.Server {
	if c.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := ginrouter.SetupRouter(ginrouter.Config{
		UserHandler:    c.GinHandler,
		HealthHandler:  c.HealthHandler,
		Metrics:        c.Metrics,
		Logger:         c.Logger,
		BasePath:       c.Config.App.BasePath,
		AllowedOrigins: c.Config.App.CORSAllowedOrigins,
	})

	c.Logger.Info("Gin REST API configured",
		zap.String("address", ginAddr),
		zap.String("base_path", c.Config.App.BasePath),
	)

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
