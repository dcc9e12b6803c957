package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.InventoryHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/kinds", handler.Kinds)

	inv := api.Group("/inventories/:kind")
	inv.GET("", handler.View)
	inv.GET("/stats", handler.Stats)
	inv.POST("/rows", handler.AppendRow)
	inv.PUT("/rows/:index", handler.UpdateRow)
	inv.DELETE("/rows/:index", handler.DeleteRow)
	inv.POST("/rows/:index/take", handler.Take)
	inv.POST("/quick-add", handler.QuickAdd)
	inv.POST("/uploads/inspect", handler.Inspect)
	inv.POST("/intake", handler.Intake)
	inv.POST("/bom/validate", handler.ValidateBOM)
	inv.POST("/bom/deduct", handler.DeductBOM)

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
