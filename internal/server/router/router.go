package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/plastimar/rolltrack/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(rolls *handlers.RollHandler, waste *handlers.WasteHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	// Roll ids embed slashes (joborder/sequence/date); match on the raw path
	// so percent-escaped ids stay a single segment.
	r.UseRawPath = true

	r.POST("/rolls", rolls.Create)
	r.GET("/rolls/:id", rolls.Get)
	r.POST("/rolls/:id/stage/:stage", rolls.RecordStage)
	r.POST("/rolls/:id/receive", rolls.Receive)
	r.GET("/joborders/:id/balance", rolls.Balance)
	r.GET("/waste/summary", waste.Summary)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

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
