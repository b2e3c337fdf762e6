// Package api serves the HTTP ingest endpoint for events arriving from
// outside the tailed log files (CI hooks, ad-hoc scripts, other hosts).
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the ingest server.
type StartOpts struct {
	DB     *gorm.DB
	Port   int
	APIKey string
	Out    io.Writer
}

// Start launches the ingest HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("api: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8090
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts.DB, opts.APIKey)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Ingest API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// NewRouter builds the gin router with all ingest routes registered.
// Split out from Start so tests can drive it with httptest.
func NewRouter(db *gorm.DB, apiKey string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/api/health", handleHealth(db))
	router.POST("/api/ingest", requireBearer(apiKey), handleIngest(db))

	return router
}

// requireBearer rejects requests whose Authorization header does not carry
// the configured API key. An empty configured key rejects everything: the
// ingest endpoint is never open.
func requireBearer(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
		if apiKey == "" || token != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
