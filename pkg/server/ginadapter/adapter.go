// Package ginadapter mounts the API server inside a Gin engine, for
// applications that already route through Gin.
package ginadapter

import (
	"github.com/gin-gonic/gin"

	"github.com/labops/go-sdk/pkg/server"
)

// Adapter provides a Gin adapter for the API server
type Adapter struct {
	srv *server.Server
}

// New creates a new Gin adapter
func New(srv *server.Server) *Adapter {
	return &Adapter{srv: srv}
}

// Handler returns a Gin handler function serving the full API
func (a *Adapter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.srv.Handler().ServeHTTP(c.Writer, c.Request)
	}
}

// RegisterRoutes registers the API routes with a Gin engine
func (a *Adapter) RegisterRoutes(r *gin.Engine) {
	handler := a.Handler()

	r.GET("/health", handler)
	r.GET("/metrics", handler)

	v1 := r.Group("/v1")
	v1.POST("/dq/validate", handler)
	v1.GET("/dq/templates", handler)
	v1.POST("/dq/rules/lint", handler)
	v1.POST("/datasets", handler)
	v1.GET("/metrics/tat", handler)
	v1.GET("/metrics/throughput", handler)
	v1.GET("/metrics/errors", handler)
	v1.GET("/metrics/sla", handler)
}
