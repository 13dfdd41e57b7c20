package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyviewer/nightlydigest-stats/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// Every route sits behind the bearer auth gate, including the health probe
// and the bad-route fallback.
func NewRouter(cfg *config.Config, handler *StatsHandler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		authMiddleware(func() string {
			return config.LoadDigest(cfg.Digest).AuthToken
		}),
	)

	router.GET("/", handler.Liveness)
	router.GET("/nightly-digest-stats", handler.Stats)
	router.GET("/accumulated-exposure-count", handler.Stats)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "reason": "bad request"})
	})

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
