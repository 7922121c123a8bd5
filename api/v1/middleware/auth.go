package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"vhostmgr/internal/auth"
	"vhostmgr/internal/httpx"
)

// TokenParser validates a session token
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthRequired is a middleware that validates the bearer JWT
func AuthRequired(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.FailErr(c, httpx.ErrUnauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.FailErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				httpx.FailErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}
