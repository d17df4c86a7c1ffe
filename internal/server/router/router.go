package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shrinktrack/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(shrinkHandler *handlers.ShrinkHandler, catalogHandler *handlers.CatalogHandler, publicDir string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/api/departments", shrinkHandler.Departments)
	r.GET("/api/item/:code", catalogHandler.Item)

	r.GET("/api/shrink/export-all", shrinkHandler.ExportAll)
	r.POST("/api/shrink/:list", shrinkHandler.Append)
	r.GET("/api/shrink/:list", shrinkHandler.Query)
	r.DELETE("/api/shrink/:list", shrinkHandler.DeleteRange)
	r.GET("/api/shrink/:list/export", shrinkHandler.Export)
	r.DELETE("/api/shrink/:list/:id", shrinkHandler.DeleteOne)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if publicDir != "" {
		fileServer := http.FileServer(http.Dir(publicDir))
		r.NoRoute(gin.WrapH(fileServer))
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
