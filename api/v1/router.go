package v1

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vhostmgr/api/v1/auth"
	"vhostmgr/api/v1/domains"
	"vhostmgr/api/v1/middleware"
	"vhostmgr/internal/httpx"
)

// TokenService signs and verifies session tokens
type TokenService interface {
	auth.TokenIssuer
	middleware.TokenParser
}

// Deps holds everything the v1 routes need
type Deps struct {
	Domains      domains.Service
	Admin        auth.Verifier
	Tokens       TokenService
	LoginLimiter *middleware.RateLimiter
	CORSOrigins  []string
	Metrics      http.Handler // nil disables /metrics
	Socket       http.Handler // nil disables /socket.io/
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps Deps) {
	r.Use(gincors.New(corsConfig(deps.CORSOrigins)))

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}
	if deps.Socket != nil {
		r.Any("/socket.io/*any", gin.WrapH(deps.Socket))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", pingHandler)

		authGroup := v1.Group("/auth")
		if deps.LoginLimiter != nil {
			authGroup.Use(deps.LoginLimiter.Middleware())
		}
		{
			authGroup.POST("/login", auth.LoginHandler(deps.Admin, deps.Tokens))
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(deps.Tokens))
		{
			protected.GET("/me", meHandler)

			domainsHandler := domains.NewHandler(deps.Domains)
			domainsGroup := protected.Group("/domains")
			{
				domainsGroup.GET("", domainsHandler.List)
				domainsGroup.GET("/stats", domainsHandler.Stats)
				domainsGroup.POST("", domainsHandler.Create)
				domainsGroup.DELETE("/:name", domainsHandler.Delete)
				domainsGroup.POST("/:name/ssl", domainsHandler.InstallSSL)
				domainsGroup.POST("/:name/prepare-ssl", domainsHandler.PrepareSSL)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		httpx.FailErr(c, httpx.ErrNotFound("route not found"))
	})
}

func corsConfig(origins []string) gincors.Config {
	cfg := gincors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// Wildcard origins cannot be combined with credentials.
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowOrigins = nil
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			break
		}
	}
	return cfg
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns the authenticated username
func meHandler(c *gin.Context) {
	username, _ := c.Get("username")
	httpx.OK(c, gin.H{
		"username": username,
	})
}
